// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/madlambda/spells/assert"
)

var testRootTempdir string

func init() {
	testRootTempdir = os.Getenv("EXTENDGEN_TEST_ROOT_TEMPDIR")
}

// TempDir creates a temporary directory.
func TempDir(t testing.TB) string {
	t.Helper()
	if testRootTempdir == "" {
		// fallback for the slower implementation if env is not set.
		return t.TempDir()
	}
	return tempDir(t, testRootTempdir)
}

// DoesNotExist calls os.Stat and asserts that the entry does not exist
func DoesNotExist(t testing.TB, dir, fname string) {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, fname))
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	assert.NoError(t, err, "stat error")

	t.Fatalf("should not exist: %s", fname)
}

// IsDir calls os.Stat and asserts that the entry is a directory
func IsDir(t testing.TB, dir, fname string) {
	t.Helper()
	isDirOrFile(t, dir, fname, true)
}

// IsFile calls os.Stat and asserts that the entry is a file
func IsFile(t testing.TB, dir, fname string) {
	t.Helper()
	isDirOrFile(t, dir, fname, false)
}

func isDirOrFile(t testing.TB, dir, fname string, isDir bool) {
	t.Helper()
	fi, err := os.Stat(filepath.Join(dir, fname))
	if errors.Is(err, os.ErrNotExist) {
		if isDir {
			t.Fatalf("directory does not exist: %s", fname)
		} else {
			t.Fatalf("file does not exist: %s", fname)
		}
		return
	}
	assert.NoError(t, err, "stat error")

	assert.IsTrue(t, fi.IsDir() == isDir, "want dir=%t, got dir=%t", isDir, fi.IsDir())
}

// ReadDir calls os.Readir asserting the success of the operation.
func ReadDir(t testing.TB, dir string) []os.DirEntry {
	t.Helper()

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	return entries
}

// WriteFile writes content to a filename inside dir directory.
// If dir is empty string then the file is created inside a temporary directory.
func WriteFile(t testing.TB, dir string, filename string, content string) string {
	t.Helper()

	if dir == "" {
		dir = TempDir(t)
	}

	path := filepath.Join(dir, filename)
	pathdir := filepath.Dir(path)
	MkdirAll(t, pathdir)
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NoError(t, err, "writing test file %s", path)

	return path
}

// ReadFile reads the content of fname from dir directory.
func ReadFile(t testing.TB, dir, fname string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, fname))
	assert.NoError(t, err, "reading file")
	return data
}

// MkdirAll creates a temporary directory with default test permission bits.
func MkdirAll(t testing.TB, path string) {
	t.Helper()

	assert.NoError(t, os.MkdirAll(path, 0700), "failed to create temp directory")
}

// RelPath does the same as filepath.Rel but failing the test
// if an error is found.
func RelPath(t testing.TB, basepath, targetpath string) string {
	t.Helper()

	rel, err := filepath.Rel(basepath, targetpath)
	assert.NoError(t, err)
	return rel
}

func tempDir(t testing.TB, base string) string {
	dir, err := os.MkdirTemp(base, "extendgen-test")
	assert.NoError(t, err, "creating temp directory")
	return dir
}
