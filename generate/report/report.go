// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package report provides a report of the code generation process.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/terramate-io/extendgen/errors"
	"github.com/terramate-io/extendgen/printer"
)

// Markers used on reports and progress output.
const (
	MarkCreated = printer.MarkCreated
	MarkSkipped = printer.MarkSkipped
	MarkMissing = printer.MarkMissing
)

// Result represents the code generation result of a destination directory.
type Result struct {
	// Dir is the destination directory.
	Dir string
	// Created contains the names of all created files inside the dir.
	Created []string
	// Skipped contains the names of files that already existed and
	// were left untouched.
	Skipped []string
	// Missing contains the names of sources that were not found, so no
	// file was generated for them.
	Missing []string
}

// FailureResult represents a failure on code generation.
type FailureResult struct {
	Result
	Error error
}

// Report has the results of the code generation process.
type Report struct {
	// BootstrapErr is an error that happened before code generation
	// could be started, indicating that no changes were made.
	BootstrapErr error

	// Successes are the success results.
	Successes []Result

	// Failures are directories where at least one file failed.
	Failures []FailureResult
}

// HasFailures returns true if this report includes any failures.
func (r Report) HasFailures() bool {
	return r.BootstrapErr != nil || len(r.Failures) > 0
}

// Created returns the total number of created files.
func (r Report) Created() int {
	n := 0
	for _, res := range r.results() {
		n += len(res.Created)
	}
	return n
}

// Full provides a full report of the generated code, including information
// per directory.
func (r Report) Full() string {
	if r.BootstrapErr != nil {
		return fmt.Sprintf(
			"Fatal failure preparing for code generation.\nError details: %v",
			r.BootstrapErr,
		)
	}
	if r.empty() {
		return "Nothing to do, generated code is up to date"
	}

	report := []string{"Code generation report", ""}
	addLine := func(msg string, args ...interface{}) {
		report = append(report, fmt.Sprintf(msg, args...))
	}
	newline := func() {
		addLine("")
	}
	addResultChangeset := func(res Result) {
		for _, created := range res.Created {
			addLine("\t[%s] %s", MarkCreated, created)
		}
		for _, skipped := range res.Skipped {
			addLine("\t[%s] %s", MarkSkipped, skipped)
		}
		for _, missing := range res.Missing {
			addLine("\t[%s] %s", MarkMissing, missing)
		}
	}

	if len(r.Successes) > 0 {
		addLine("Successes:")
		newline()
		for _, success := range r.Successes {
			addLine("- %s", success.Dir)
			addResultChangeset(success)
			newline()
		}
	}

	if len(r.Failures) > 0 {
		addLine("Failures:")
		newline()
		for _, failure := range r.Failures {
			addLine("- %s", failure.Dir)
			for _, err := range errors.L(failure.Error).Errors() {
				addLine("\terror: %s", err)
			}
			addResultChangeset(failure.Result)
			newline()
		}
	}

	addLine("Hint: '%s', '%s' and '%s' mean the file was created, already existed and had no source, respectively.",
		MarkCreated, MarkSkipped, MarkMissing)

	return strings.Join(report, "\n")
}

// Minimal provides a minimal report of the generated code.
// It only lists created files and errors in a per file manner.
func (r Report) Minimal() string {
	if r.BootstrapErr != nil {
		return fmt.Sprintf(
			"Fatal failure preparing for code generation.\nError details: %v",
			r.BootstrapErr,
		)
	}
	if r.empty() {
		return ""
	}
	report := []string{}
	addLine := func(msg string, args ...interface{}) {
		report = append(report, fmt.Sprintf(msg, args...))
	}
	addResult := func(res Result) {
		for _, c := range res.Created {
			addLine("Created file %s/%s", res.Dir, c)
		}
	}

	for _, success := range r.Successes {
		addResult(success)
	}

	for _, failure := range r.Failures {
		for _, err := range errors.L(failure.Error).Errors() {
			addLine("Error on %s: %v", failure.Dir, err)
		}
		addResult(failure.Result)
	}

	return strings.Join(report, "\n")
}

func (r Report) empty() bool {
	return r.BootstrapErr == nil &&
		len(r.Failures) == 0 &&
		len(r.Successes) == 0
}

func (r Report) results() []Result {
	res := make([]Result, 0, len(r.Successes)+len(r.Failures))
	res = append(res, r.Successes...)
	for _, failure := range r.Failures {
		res = append(res, failure.Result)
	}
	return res
}

// Sort sorts the report by directory and then by filename.
func (r *Report) Sort() {
	sort.SliceStable(r.Successes, func(i, j int) bool {
		return r.Successes[i].Dir < r.Successes[j].Dir
	})
	sort.SliceStable(r.Failures, func(i, j int) bool {
		return r.Failures[i].Dir < r.Failures[j].Dir
	})
	for i := range r.Successes {
		r.Successes[i].sortFilenames()
	}
	for i := range r.Failures {
		r.Failures[i].sortFilenames()
	}
}

// AddFailure adds a failure to the report.
func (r *Report) AddFailure(dir string, err error) {
	r.AddDirReport(dir, Dir{Err: err})
}

// AddDirReport adds a directory report to the report.
// Reports of the same directory are merged.
func (r *Report) AddDirReport(dir string, dr Dir) {
	if dr.empty() {
		return
	}

	if dr.isSuccess() {
		for i, other := range r.Failures {
			if other.Dir == dir {
				r.Failures[i].Result = other.merge(dr)
				return
			}
		}
		for i, other := range r.Successes {
			if other.Dir == dir {
				r.Successes[i] = other.merge(dr)
				return
			}
		}
		r.Successes = append(r.Successes, Result{Dir: dir}.merge(dr))
		return
	}

	for i, other := range r.Failures {
		if other.Dir == dir {
			r.Failures[i].Result = other.merge(dr)
			r.Failures[i].Error = errors.L(other.Error, dr.Err)
			return
		}
	}

	res := Result{Dir: dir}
	for i, other := range r.Successes {
		if other.Dir == dir {
			res = other
			r.Successes = append(r.Successes[:i], r.Successes[i+1:]...)
			break
		}
	}
	r.Failures = append(r.Failures, FailureResult{
		Result: res.merge(dr),
		Error:  dr.Err,
	})
}

// Merge merges other into r.
func (r *Report) Merge(other Report) {
	if r.BootstrapErr == nil {
		r.BootstrapErr = other.BootstrapErr
	} else if other.BootstrapErr != nil {
		r.BootstrapErr = errors.L(r.BootstrapErr, other.BootstrapErr)
	}
	for _, success := range other.Successes {
		r.AddDirReport(success.Dir, Dir{
			Created: success.Created,
			Skipped: success.Skipped,
			Missing: success.Missing,
		})
	}
	for _, failure := range other.Failures {
		r.AddDirReport(failure.Dir, Dir{
			Created: failure.Created,
			Skipped: failure.Skipped,
			Missing: failure.Missing,
			Err:     failure.Error,
		})
	}
}

func (r Result) merge(dr Dir) Result {
	r.Created = append(r.Created, dr.Created...)
	r.Skipped = append(r.Skipped, dr.Skipped...)
	r.Missing = append(r.Missing, dr.Missing...)
	return r
}

func (r *Result) sortFilenames() {
	sort.Strings(r.Created)
	sort.Strings(r.Skipped)
	sort.Strings(r.Missing)
}

// Dir represents a directory report.
type Dir struct {
	Created []string
	Skipped []string
	Missing []string
	Err     error
}

// AddCreatedFile adds a created file to the report.
func (d *Dir) AddCreatedFile(filename string) {
	d.Created = append(d.Created, filename)
}

// AddSkippedFile adds a skipped (already existent) file to the report.
func (d *Dir) AddSkippedFile(filename string) {
	d.Skipped = append(d.Skipped, filename)
}

// AddMissingSource adds a missing source to the report.
func (d *Dir) AddMissingSource(name string) {
	d.Missing = append(d.Missing, name)
}

// AddError adds an error to the directory report.
func (d *Dir) AddError(err error) {
	if err == nil {
		return
	}
	if d.Err == nil {
		d.Err = err
		return
	}
	d.Err = errors.L(d.Err, err)
}

func (d Dir) empty() bool {
	return len(d.Created) == 0 &&
		len(d.Skipped) == 0 &&
		len(d.Missing) == 0 &&
		d.Err == nil
}

func (d Dir) isSuccess() bool {
	return d.Err == nil
}
