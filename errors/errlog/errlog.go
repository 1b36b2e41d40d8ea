// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package errlog provides functions to log extendgen errors nicely and
// in a consistent manner.
package errlog

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/terramate-io/extendgen/errors"
)

// Warn logs the error as a warning if the error is not nil.
// If the error is nil this is a no-op.
func Warn(logger zerolog.Logger, err error, args ...any) {
	if err == nil {
		return
	}
	logerrs(logger, zerolog.WarnLevel, err, args)
}

// Error logs the error as an error if the error is not nil.
// If the error is nil this is a no-op.
func Error(logger zerolog.Logger, err error, args ...any) {
	if err == nil {
		return
	}
	logerrs(logger, zerolog.ErrorLevel, err, args)
}

func logerrs(logger zerolog.Logger, level zerolog.Level, err error, args []any) {
	var list *errors.List
	if errors.As(err, &list) {
		for _, err := range list.Errors() {
			logerr(logger, level, err, args)
		}
		return
	}
	logerr(logger, level, err, args)
}

func logerr(logger zerolog.Logger, level zerolog.Level, err error, args []any) {
	var e *errors.Error
	if !errors.As(err, &e) {
		logger.WithLevel(level).Err(err).Msg(msg(args))
		return
	}

	ctx := logger.With()
	if !e.FileRange.Empty() {
		ctx = ctx.Stringer("file", e.FileRange)
	}
	if e.Bundle != "" {
		ctx = ctx.Str("bundle", string(e.Bundle))
	}

	parts := []string{}
	if m := msg(args); m != "" {
		parts = append(parts, m)
	}
	if e.Kind != "" {
		parts = append(parts, string(e.Kind))
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	logger = ctx.Logger()
	logger.WithLevel(level).Msg(strings.Join(parts, errors.Separator))
}

func msg(args []any) string {
	if len(args) == 0 {
		return ""
	}
	format, ok := args[0].(string)
	if !ok {
		return ""
	}
	if len(args) == 1 {
		return format
	}
	return fmt.Sprintf(format, args[1:]...)
}
