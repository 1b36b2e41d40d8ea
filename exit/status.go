// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package exit provides standard exit codes for extendgen.
package exit

// Status represents the exit status of a command.
type Status int

// Standard exit codes of extendgen
const (
	OK Status = iota
	Failed
)
