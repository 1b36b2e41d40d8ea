// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package extendgen_test

import (
	"fmt"
	"testing"

	"github.com/madlambda/spells/assert"
	"github.com/terramate-io/extendgen"
	"github.com/terramate-io/extendgen/errors"
)

func TestVersionIsValidSemver(t *testing.T) {
	t.Parallel()

	assert.NoError(t, extendgen.CheckVersion(">= 0"))
	assert.IsTrue(t, extendgen.Version() != "")
}

func TestVersionConstraints(t *testing.T) {
	t.Parallel()

	type testcase struct {
		version    string
		constraint string
		want       error
	}

	for _, tc := range []testcase{
		{
			version:    "0.0.0",
			constraint: "0.0.0",
		},
		{
			version:    "1.2.3",
			constraint: "~> 1.2.3",
		},
		{
			version:    "1.2.3",
			constraint: "~> 1.2",
		},
		{
			version:    "1.2.3",
			constraint: "> 1.2.2",
		},
		{
			version:    "1.2.3",
			constraint: "> 1.2.3",
			want:       errors.E(extendgen.ErrVersion),
		},
		{
			version:    "1.2.3",
			constraint: "= 1.2.3",
		},
		{
			version:    "1.2.3",
			constraint: "< 1.2.3",
			want:       errors.E(extendgen.ErrVersion),
		},
		{
			version:    "1.2.3",
			constraint: "<= 1.2.3",
		},
		// pre-release are not selected if not present in the constraint
		{
			version:    "1.2.3-dev",
			constraint: ">= 1",
			want:       errors.E(extendgen.ErrVersion),
		},
		{
			version:    "1.2.3-aaa",
			constraint: "~> 1.2.3-aaa",
		},
		{
			version:    "1.2.3",
			constraint: "not a constraint",
			want:       errors.E(extendgen.ErrVersion),
		},
		{
			version:    "invalid",
			constraint: ">= 1",
			want:       errors.E(extendgen.ErrVersion),
		},
	} {
		tc := tc
		name := fmt.Sprintf("CheckVersionFor(%q,%q)", tc.version, tc.constraint)
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := extendgen.CheckVersionFor(tc.version, tc.constraint)
			errors.AssertKind(t, err, tc.want)
		})
	}
}
