// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package bundle describes the bundles whose ORM classes are extended.
// A bundle is a base package (namespace plus directories) and the
// application owned extended package that receives the generated files.
package bundle

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/terramate-io/extendgen/errors"
	"github.com/terramate-io/extendgen/fs"
)

// Defaults for optional ORM settings.
const (
	DefaultMappingPattern = "*.orm.xml.skeleton"
	DefaultExtension      = "php"
)

// ErrMapping indicates the mapping files could not be listed.
const ErrMapping errors.Kind = "listing mapping files"

// Metadata is a read-only descriptor of a bundle.
type Metadata struct {
	// Name of the bundle.
	Name string

	// Namespace of the base bundle.
	Namespace string

	// ExtendedNamespace is the namespace of the extended bundle.
	ExtendedNamespace string

	// ORM holds the ORM related metadata.
	ORM ORMMetadata
}

// ORMMetadata holds the directories and entities of a bundle ORM layer.
type ORMMetadata struct {
	// EntityDir is the directory with the base entity classes.
	EntityDir string

	// ExtendedEntityDir is where extended entities and repositories are written.
	ExtendedEntityDir string

	// MappingDir is the directory with the mapping skeletons.
	MappingDir string

	// ExtendedMappingDir is where mapping files are copied to.
	ExtendedMappingDir string

	// MappingPattern selects the mapping skeletons inside MappingDir.
	MappingPattern string

	// Extension of entity sources and generated stubs, without the dot.
	Extension string

	// Entities is the explicit list of entity names.
	// If empty the names are discovered from the mapping files.
	Entities []string

	pattern glob.Glob
}

// NewORM creates the ORM metadata for the given directories.
// Optional settings are initialized with their defaults.
func NewORM(entityDir, extendedEntityDir, mappingDir, extendedMappingDir string) ORMMetadata {
	orm := ORMMetadata{
		EntityDir:          entityDir,
		ExtendedEntityDir:  extendedEntityDir,
		MappingDir:         mappingDir,
		ExtendedMappingDir: extendedMappingDir,
	}
	orm.setDefaults()
	return orm
}

func (o *ORMMetadata) setDefaults() {
	if o.MappingPattern == "" {
		o.MappingPattern = DefaultMappingPattern
	}
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	o.Extension = strings.TrimPrefix(o.Extension, ".")
}

func (o *ORMMetadata) compilePattern() error {
	pattern, err := glob.Compile(o.MappingPattern)
	if err != nil {
		return err
	}
	o.pattern = pattern
	return nil
}

// MappingFiles returns the sorted names of the mapping skeletons found
// inside MappingDir. A missing MappingDir has no mapping files.
func (o ORMMetadata) MappingFiles(afs afero.Fs) ([]string, error) {
	if !fs.IsDir(afs, o.MappingDir) {
		log.Debug().
			Str("action", "bundle.MappingFiles()").
			Str("dir", o.MappingDir).
			Msg("mapping dir not found")
		return nil, nil
	}

	pattern := o.pattern
	if pattern == nil {
		p := o.MappingPattern
		if p == "" {
			p = DefaultMappingPattern
		}
		var err error
		pattern, err = glob.Compile(p)
		if err != nil {
			return nil, errors.E(ErrMapping, err, "invalid pattern %q", p)
		}
	}

	files, err := fs.ListFiles(afs, o.MappingDir, pattern)
	if err != nil {
		return nil, errors.E(ErrMapping, err)
	}
	return files, nil
}

// EntityNames returns the entity names of the bundle.
// Explicit entities are returned in declaration order without duplicates.
// Otherwise the names are discovered from the mapping files, where the
// entity name is the mapping file name up to its first dot.
func (o ORMMetadata) EntityNames(afs afero.Fs) ([]string, error) {
	if len(o.Entities) > 0 {
		return dedup(o.Entities), nil
	}

	files, err := o.MappingFiles(afs)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		name := f
		if i := strings.IndexByte(f, '.'); i > 0 {
			name = f[:i]
		}
		names = append(names, name)
	}
	return dedup(names), nil
}

// EntityFile returns the path of the entity (or repository) class name
// inside the base entity dir.
func (o ORMMetadata) EntityFile(class string) string {
	return filepath.Join(o.EntityDir, o.filename(class))
}

// ExtendedEntityFile returns the path of the class name inside the extended
// entity dir.
func (o ORMMetadata) ExtendedEntityFile(class string) string {
	return filepath.Join(o.ExtendedEntityDir, o.filename(class))
}

func (o ORMMetadata) filename(class string) string {
	ext := o.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return class + "." + ext
}

func dedup(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	res := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		res = append(res, name)
	}
	return res
}
