// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package extendgen

import (
	_ "embed"
	"strings"

	hclversion "github.com/hashicorp/go-version"
	"github.com/rs/zerolog/log"
	"github.com/terramate-io/extendgen/errors"
)

//go:embed VERSION
var version string

// ErrVersion indicates failure when checking the extendgen version.
const ErrVersion errors.Kind = "version check error"

// Version of extendgen.
func Version() string {
	return strings.TrimSpace(version)
}

// CheckVersion checks the extendgen version against the given constraint.
func CheckVersion(vconstraint string) error {
	return CheckVersionFor(Version(), vconstraint)
}

// CheckVersionFor checks if version matches the provided constraint.
func CheckVersionFor(version string, vconstraint string) error {
	logger := log.With().
		Str("action", "extendgen.CheckVersionFor()").
		Str("version", version).
		Str("constraint", vconstraint).
		Logger()

	logger.Trace().Msg("parsing version constraint")

	constraint, err := hclversion.NewConstraint(vconstraint)
	if err != nil {
		return errors.E(ErrVersion, err, "invalid constraint")
	}

	logger.Trace().Msg("parsing extendgen version")

	semver, err := hclversion.NewSemver(version)
	if err != nil {
		return errors.E(ErrVersion, err, "extendgen built with invalid version")
	}

	if !constraint.Check(semver) {
		return errors.E(
			ErrVersion,
			"version constraint %q not satisfied by extendgen version %q",
			vconstraint,
			version,
		)
	}
	return nil
}
