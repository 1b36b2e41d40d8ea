// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package templates provides the skeleton templates used to render extended
// entities and repositories.
package templates

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/terramate-io/extendgen/errors"
	"github.com/terramate-io/extendgen/mustache"
)

// ErrTemplate indicates a template could not be loaded.
const ErrTemplate errors.Kind = "loading template"

// Template file names, relative to a templates directory.
const (
	EntityFilename     = "skeleton/orm/entity.mustache"
	RepositoryFilename = "skeleton/orm/repository.mustache"
)

//go:embed skeleton/orm/entity.mustache
var defaultEntity string

//go:embed skeleton/orm/repository.mustache
var defaultRepository string

// Set is an immutable set of ORM skeleton templates.
type Set struct {
	entity     string
	repository string
}

// Default returns the embedded templates.
func Default() Set {
	return Set{
		entity:     defaultEntity,
		repository: defaultRepository,
	}
}

// New creates a template set from the given template contents.
func New(entity, repository string) Set {
	return Set{
		entity:     entity,
		repository: repository,
	}
}

// Load loads the templates from dir using the fs filesystem.
// Templates absent on dir fallback to the embedded defaults.
// An empty dir returns the defaults.
func Load(fs afero.Fs, dir string) (Set, error) {
	set := Default()
	if dir == "" {
		return set, nil
	}

	logger := log.With().
		Str("action", "templates.Load()").
		Str("dir", dir).
		Logger()

	load := func(fname string, dst *string) error {
		path := filepath.Join(dir, fname)
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug().
					Str("template", fname).
					Msg("template not found, using default")
				return nil
			}
			return errors.E(ErrTemplate, err, "reading %s", path)
		}
		logger.Trace().
			Str("template", fname).
			Msg("loaded template override")
		*dst = string(data)
		return nil
	}

	if err := load(EntityFilename, &set.entity); err != nil {
		return Set{}, err
	}
	if err := load(RepositoryFilename, &set.repository); err != nil {
		return Set{}, err
	}
	return set, nil
}

// Entity returns the entity template.
func (s Set) Entity() string { return s.entity }

// Repository returns the repository template.
func (s Set) Repository() string { return s.repository }

// RenderEntity renders the entity template with vars.
func (s Set) RenderEntity(vars mustache.Vars) string {
	return mustache.Replace(s.entity, vars)
}

// RenderRepository renders the repository template with vars.
func (s Set) RenderRepository(vars mustache.Vars) string {
	return mustache.Replace(s.repository, vars)
}
