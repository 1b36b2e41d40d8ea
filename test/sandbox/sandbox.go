// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package sandbox provides an easy way to setup isolated projects with base
// bundles that can be used on testing, acting like sandboxes.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/madlambda/spells/assert"
	"github.com/terramate-io/extendgen/test"
)

// Layout of base bundles created by the sandbox, relative to the bundle dir.
const (
	EntityDir  = "Entity"
	MappingDir = "Resources/config/doctrine"
)

// S is a sandbox with its own base dir for test purposes.
type S struct {
	t       testing.TB
	basedir string
}

// DirEntry represents a directory and can be used to create files inside the
// directory.
type DirEntry struct {
	t       testing.TB
	abspath string
	relpath string
}

// FileEntry represents a file and can be used to manipulate the file contents.
// It is optimized for reading/writing all contents, not stream programming
// (io.Reader/io.Writer).
type FileEntry struct {
	t    testing.TB
	path string
}

// New creates a new test sandbox.
//
// It is a programming error to use a sandbox created with a testing.TB other
// than the one of the test using the sandbox, for a new test/sub-test always
// create a new sandbox for it.
func New(t testing.TB) S {
	t.Helper()

	return S{
		t:       t,
		basedir: test.TempDir(t),
	}
}

// BuildTree builds a tree layout based on the layout specification, defined
// below:
// Each string in the slice represents a filesystem operation, and each
// operation has the format below:
//
//	<kind>:<relative path>[:data]
//
// Where kind is one of the below:
//
//	"d" for directory creation.
//	"f" for file creation.
//	"b" for base bundle creation.
//
// For "f" data is the content of the file to be created.
// For "b" data is a comma separated list of entity specs, where each spec is
// the entity name optionally followed by flags:
//
//	<name>[+own][-base][-repo][-mapping]
//
// By default an entity gets a Base<name> class, a Base<name>Repository class
// and a <name>.orm.xml.skeleton mapping. "+own" adds a <name> class, "-base",
// "-repo" and "-mapping" remove the corresponding file.
//
// Example:
//
//	b:vendor/user:User,Group-repo,Tag-base-repo
//
// This is an internal mini-lang used to simplify testcases, so it expects well
// formed layout specification.
func (s S) BuildTree(layout []string) {
	t := s.t
	t.Helper()

	parsePathData := func(spec string) (string, string) {
		tmp := spec[2:]
		if len(tmp) == 0 {
			// relative to s.basedir
			return ".", ""
		}
		index := strings.IndexByte(tmp, ':')
		if index == -1 {
			return tmp, ""
		}
		path := tmp[0:index]
		data := tmp[index+1:]
		return path, data
	}

	for _, spec := range layout {
		path, data := parsePathData(spec)

		switch spec[0] {
		case 'd':
			test.MkdirAll(t, filepath.Join(s.basedir, path))
		case 'f':
			test.WriteFile(t, s.basedir, path, data)
		case 'b':
			var entities []string
			if data != "" {
				entities = strings.Split(data, ",")
			}
			s.CreateBundle(path, entities...)
		default:
			t.Fatalf("unknown tree identifier: %c", spec[0])
		}
	}
}

// BaseDir returns the base dir of the sandbox. All dirs/files created through
// the sandbox will be included inside this dir.
//
// It is a programming error to delete this dir, it will be automatically
// removed when the test finishes.
func (s S) BaseDir() string {
	return s.basedir
}

// DirEntry gets the dir entry for relpath.
// The dir must exist and must be a relative path to the sandbox base dir.
func (s S) DirEntry(relpath string) DirEntry {
	t := s.t
	t.Helper()

	if filepath.IsAbs(relpath) {
		t.Fatalf("DirEntry() needs a relative path but given %q", relpath)
	}

	abspath := filepath.Join(s.basedir, relpath)
	test.IsDir(t, s.basedir, relpath)

	return DirEntry{
		t:       t,
		abspath: abspath,
		relpath: relpath,
	}
}

// CreateBundle creates a base bundle dir with the given relative path, with
// entity and mapping sources for the entity specs. See BuildTree for the
// entity spec format.
func (s S) CreateBundle(relpath string, entities ...string) DirEntry {
	t := s.t
	t.Helper()

	if filepath.IsAbs(relpath) {
		t.Fatalf("CreateBundle() needs a relative path but given %q", relpath)
	}

	bundle := newDirEntry(t, s.basedir, relpath)
	test.MkdirAll(t, filepath.Join(bundle.abspath, EntityDir))
	test.MkdirAll(t, filepath.Join(bundle.abspath, MappingDir))

	for _, spec := range entities {
		name, flags := parseEntitySpec(t, spec)

		if flags["own"] {
			bundle.CreateFile(filepath.Join(EntityDir, name+".php"),
				"<?php\n\nclass %s\n{\n}\n", name)
		}
		if !flags["base"] {
			bundle.CreateFile(filepath.Join(EntityDir, "Base"+name+".php"),
				"<?php\n\nabstract class Base%s\n{\n}\n", name)
		}
		if !flags["repo"] {
			bundle.CreateFile(filepath.Join(EntityDir, "Base"+name+"Repository.php"),
				"<?php\n\nclass Base%sRepository\n{\n}\n", name)
		}
		if !flags["mapping"] {
			bundle.CreateFile(filepath.Join(MappingDir, name+".orm.xml.skeleton"),
				`<entity name="{{ namespace }}\Entity\%s"/>`, name)
		}
	}
	return bundle
}

// CreateFile will create a file inside this dir entry with the given name and
// the given body. The body can be plain text or a format string identical to
// what is defined on Go fmt package.
//
// If the file already exists its contents will be truncated, like os.Create
// behavior: https://pkg.go.dev/os#Create
func (de DirEntry) CreateFile(name, body string, args ...interface{}) *FileEntry {
	de.t.Helper()

	fe := &FileEntry{
		t:    de.t,
		path: filepath.Join(de.abspath, name),
	}
	test.MkdirAll(de.t, filepath.Dir(fe.path))
	fe.Write(body, args...)

	return fe
}

// Path returns the absolute path of the directory entry.
func (de DirEntry) Path() string {
	return de.abspath
}

// RelPath returns the relative path of the directory entry.
func (de DirEntry) RelPath() string {
	return de.relpath
}

// Write writes the given text body on the file, replacing its contents.
// The body can be plain text or a format string identical to what is defined on
// Go fmt package.
//
// It behaves like os.WriteFile: https://pkg.go.dev/os#WriteFile
func (fe FileEntry) Write(body string, args ...interface{}) {
	fe.t.Helper()

	if len(args) > 0 {
		body = fmt.Sprintf(body, args...)
	}

	if err := os.WriteFile(fe.path, []byte(body), 0644); err != nil {
		fe.t.Fatalf("os.WriteFile(%q) = %v", fe.path, err)
	}
}

// Read reads the file contents.
func (fe FileEntry) Read() string {
	fe.t.Helper()

	data, err := os.ReadFile(fe.path)
	assert.NoError(fe.t, err)
	return string(data)
}

// Path returns the absolute path of the file.
func (fe FileEntry) Path() string {
	return fe.path
}

func newDirEntry(t testing.TB, basedir string, relpath string) DirEntry {
	t.Helper()

	abspath := filepath.Join(basedir, relpath)
	test.MkdirAll(t, abspath)

	return DirEntry{
		t:       t,
		abspath: abspath,
		relpath: relpath,
	}
}

func parseEntitySpec(t testing.TB, spec string) (string, map[string]bool) {
	t.Helper()

	flags := map[string]bool{}
	name := spec
	if i := strings.IndexAny(spec, "+-"); i != -1 {
		name = spec[:i]
		rest := spec[i:]
		for len(rest) > 0 {
			op := rest[0]
			rest = rest[1:]
			end := strings.IndexAny(rest, "+-")
			if end == -1 {
				end = len(rest)
			}
			flag := rest[:end]
			rest = rest[end:]

			switch {
			case op == '+' && flag == "own":
				flags[flag] = true
			case op == '-' && (flag == "base" || flag == "repo" || flag == "mapping"):
				flags[flag] = true
			default:
				t.Fatalf("invalid entity flag %c%s on spec %q", op, flag, spec)
			}
		}
	}
	if name == "" {
		t.Fatalf("entity spec %q has no name", spec)
	}
	return name, flags
}
