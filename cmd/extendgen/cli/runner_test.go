// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package cli_test

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/madlambda/spells/assert"
	"github.com/terramate-io/extendgen/cmd/extendgen/cli"
	"github.com/terramate-io/extendgen/cmd/extendgen/cli/cliconfig"
)

type (
	// runResult specify the result of executing the cli.
	runResult struct {
		Cmd    string
		Stdout string
		Stderr string
		Status int
	}

	// runExpected specifies the expected result for the CLI execution.
	runExpected struct {
		Stdout      string
		StdoutRegex string
		StderrRegex string

		IgnoreStdout bool
		IgnoreStderr bool

		Status int
	}
)

// runCLI runs the cli in-process from the wd directory.
// Colors are always disabled and the user cli config is isolated, so tests
// using it must not be parallel.
func runCLI(t *testing.T, wd string, args ...string) runResult {
	t.Helper()

	t.Setenv(cliconfig.PathEnv, filepath.Join(t.TempDir(), cliconfig.Filename))

	var stdin, stdout, stderr bytes.Buffer
	allargs := append([]string{"--no-color"}, args...)

	status := 0
	if err := cli.Run(wd, allargs, &stdin, &stdout, &stderr); err != nil {
		status = 1
	}
	return runResult{
		Cmd:    strings.Join(args, " "),
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Status: status,
	}
}

func assertRunResult(t *testing.T, got runResult, want runExpected) {
	t.Helper()

	if !want.IgnoreStdout {
		if want.StdoutRegex != "" {
			matched, err := regexp.MatchString(want.StdoutRegex, got.Stdout)
			assert.NoError(t, err, "failed to compile regex %q", want.StdoutRegex)

			if !matched {
				t.Errorf("%q stdout=\"%s\" does not match regex %q", got.Cmd,
					got.Stdout,
					want.StdoutRegex,
				)
			}
		} else if diff := cmp.Diff(want.Stdout, got.Stdout); diff != "" {
			t.Errorf("%q stdout mismatch (-want +got): %s", got.Cmd, diff)
		}
	}

	if !want.IgnoreStderr {
		if want.StderrRegex != "" {
			matched, err := regexp.MatchString(want.StderrRegex, got.Stderr)
			assert.NoError(t, err, "failed to compile regex %q", want.StderrRegex)

			if !matched {
				t.Errorf("%q stderr=\"%s\" does not match regex %q", got.Cmd,
					got.Stderr,
					want.StderrRegex,
				)
			}
		} else if got.Stderr != "" {
			t.Errorf("%q unexpected stderr: %s", got.Cmd, got.Stderr)
		}
	}

	assert.EqualInts(t, want.Status, got.Status, "exit status mismatch, stderr: %s", got.Stderr)
}
