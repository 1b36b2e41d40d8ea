// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/terramate-io/extendgen"
	"github.com/terramate-io/extendgen/errors"
)

// Default bundle config filenames, in lookup order.
const (
	HCLFilename  = "extendgen.hcl"
	TOMLFilename = "extendgen.toml"
)

const (
	// ErrConfig indicates the bundle config is invalid.
	ErrConfig errors.Kind = "invalid bundle config"

	// ErrConfigNotFound indicates no bundle config file was found.
	ErrConfigNotFound errors.Kind = "bundle config not found"

	// ErrUnknownBundle indicates a bundle that is not declared in the config.
	ErrUnknownBundle errors.Kind = "unknown bundle"
)

// Config is the loaded bundle configuration.
type Config struct {
	// Filename is the path of the loaded config file.
	Filename string

	// RequiredVersion is the extendgen version constraint, if any.
	RequiredVersion string

	// Bundles are the declared bundles, in declaration order.
	Bundles []Metadata
}

type fileConfig struct {
	RequiredVersion string         `hcl:"required_version,optional" toml:"required_version"`
	Bundles         []bundleConfig `hcl:"bundle,block" toml:"bundle"`
}

type bundleConfig struct {
	Name              string     `hcl:"name,label" toml:"name"`
	Namespace         string     `hcl:"namespace,optional" toml:"namespace"`
	ExtendedNamespace string     `hcl:"extended_namespace,optional" toml:"extended_namespace"`
	ORM               *ormConfig `hcl:"orm,block" toml:"orm"`
}

type ormConfig struct {
	EntityDir          string   `hcl:"entity_dir,optional" toml:"entity_dir"`
	ExtendedEntityDir  string   `hcl:"extended_entity_dir,optional" toml:"extended_entity_dir"`
	MappingDir         string   `hcl:"mapping_dir,optional" toml:"mapping_dir"`
	ExtendedMappingDir string   `hcl:"extended_mapping_dir,optional" toml:"extended_mapping_dir"`
	MappingPattern     string   `hcl:"mapping_pattern,optional" toml:"mapping_pattern"`
	Extension          string   `hcl:"extension,optional" toml:"extension"`
	Entities           []string `hcl:"entities,optional" toml:"entities"`
}

// Find looks for a default bundle config file inside dir.
// It returns the path of the first one found.
func Find(afs afero.Fs, dir string) (string, error) {
	for _, fname := range []string{HCLFilename, TOMLFilename} {
		path := filepath.Join(dir, fname)
		st, err := afs.Stat(path)
		if err == nil && !st.IsDir() {
			return path, nil
		}
	}
	return "", errors.E(ErrConfigNotFound,
		"no %s or %s found in %s", HCLFilename, TOMLFilename, dir)
}

// LoadFile loads and validates the bundle config at path.
// The format is chosen by the file extension (.hcl or .toml).
// Relative directories are resolved against the config file directory.
func LoadFile(afs afero.Fs, path string) (Config, error) {
	logger := log.With().
		Str("action", "bundle.LoadFile()").
		Str("path", path).
		Logger()

	data, err := afero.ReadFile(afs, path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return Config{}, errors.E(ErrConfigNotFound, err)
		}
		return Config{}, errors.E(ErrConfig, err, "reading %s", path)
	}

	var (
		fc     fileConfig
		ranges map[string]hcl.Range
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		logger.Trace().Msg("decoding HCL bundle config")
		fc, ranges, err = decodeHCL(data, path)
	case ".toml":
		logger.Trace().Msg("decoding TOML bundle config")
		fc, err = decodeTOML(data, path)
	default:
		err = errors.E(ErrConfig, "unsupported config format %q for %s", ext, path)
	}
	if err != nil {
		return Config{}, err
	}

	cfg, err := newConfig(fc, path, ranges)
	if err != nil {
		return Config{}, err
	}

	logger.Debug().
		Int("bundles", len(cfg.Bundles)).
		Msg("loaded bundle config")
	return cfg, nil
}

// Bundle returns the bundle with the given name.
func (c Config) Bundle(name string) (Metadata, bool) {
	for _, b := range c.Bundles {
		if b.Name == name {
			return b, true
		}
	}
	return Metadata{}, false
}

// Select returns the bundles with the given names, in the given order.
// If names is empty all bundles are returned.
func (c Config) Select(names []string) ([]Metadata, error) {
	if len(names) == 0 {
		return c.Bundles, nil
	}

	errs := errors.L()
	selected := make([]Metadata, 0, len(names))
	for _, name := range dedup(names) {
		b, ok := c.Bundle(name)
		if !ok {
			errs.Append(errors.E(ErrUnknownBundle, errors.Bundle(name)))
			continue
		}
		selected = append(selected, b)
	}
	if err := errs.AsError(); err != nil {
		return nil, err
	}
	return selected, nil
}

func decodeHCL(data []byte, path string) (fileConfig, map[string]hcl.Range, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return fileConfig{}, nil, diagsToErr(diags)
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fileConfig{}, nil, diagsToErr(diags)
	}

	ranges := map[string]hcl.Range{}
	if body, ok := file.Body.(*hclsyntax.Body); ok {
		for _, block := range body.Blocks {
			if block.Type != "bundle" || len(block.Labels) == 0 {
				continue
			}
			if _, ok := ranges[block.Labels[0]]; !ok {
				ranges[block.Labels[0]] = block.DefRange()
			}
		}
	}
	return fc, ranges, nil
}

func decodeTOML(data []byte, path string) (fileConfig, error) {
	var fc fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		var derr *toml.DecodeError
		if stderrors.As(err, &derr) {
			row, col := derr.Position()
			return fileConfig{}, errors.E(ErrConfig, hcl.Range{
				Filename: path,
				Start:    hcl.Pos{Line: row, Column: col},
				End:      hcl.Pos{Line: row, Column: col},
			}, derr.Error())
		}
		return fileConfig{}, errors.E(ErrConfig, err, "decoding %s", path)
	}
	return fc, nil
}

func diagsToErr(diags hcl.Diagnostics) error {
	errs := errors.L()
	for _, diag := range diags.Errs() {
		errs.Append(errors.E(ErrConfig, diag))
	}
	return errs.AsError()
}

func newConfig(fc fileConfig, path string, ranges map[string]hcl.Range) (Config, error) {
	cfg := Config{
		Filename:        path,
		RequiredVersion: fc.RequiredVersion,
	}

	errs := errors.L()

	if fc.RequiredVersion != "" {
		if err := extendgen.CheckVersion(fc.RequiredVersion); err != nil {
			errs.Append(errors.E(ErrConfig, err))
		}
	}

	basedir := filepath.Dir(path)
	seen := map[string]struct{}{}

	for _, bc := range fc.Bundles {
		rng := ranges[bc.Name]
		fail := func(format string, args ...any) {
			errs.Append(errors.E(ErrConfig, rng, errors.Bundle(bc.Name), fmt.Sprintf(format, args...)))
		}

		if bc.Name == "" {
			fail("bundle name must be set")
			continue
		}
		if _, ok := seen[bc.Name]; ok {
			fail("duplicated bundle")
			continue
		}
		seen[bc.Name] = struct{}{}

		if bc.Namespace == "" {
			fail(`"namespace" must be set`)
		}
		if bc.ExtendedNamespace == "" {
			fail(`"extended_namespace" must be set`)
		}
		if bc.ORM == nil {
			fail(`"orm" block must be set`)
			continue
		}

		for _, attr := range []struct{ name, value string }{
			{"entity_dir", bc.ORM.EntityDir},
			{"extended_entity_dir", bc.ORM.ExtendedEntityDir},
			{"mapping_dir", bc.ORM.MappingDir},
			{"extended_mapping_dir", bc.ORM.ExtendedMappingDir},
		} {
			if attr.value == "" {
				fail(`"orm.%s" must be set`, attr.name)
			}
		}

		orm := ORMMetadata{
			EntityDir:          resolve(basedir, bc.ORM.EntityDir),
			ExtendedEntityDir:  resolve(basedir, bc.ORM.ExtendedEntityDir),
			MappingDir:         resolve(basedir, bc.ORM.MappingDir),
			ExtendedMappingDir: resolve(basedir, bc.ORM.ExtendedMappingDir),
			MappingPattern:     bc.ORM.MappingPattern,
			Extension:          bc.ORM.Extension,
			Entities:           bc.ORM.Entities,
		}
		orm.setDefaults()
		if err := orm.compilePattern(); err != nil {
			fail(`invalid "orm.mapping_pattern" %q: %v`, orm.MappingPattern, err)
		}
		for _, entity := range orm.Entities {
			if entity == "" || strings.ContainsAny(entity, `/\.`) {
				fail(`invalid entity name %q`, entity)
			}
		}

		cfg.Bundles = append(cfg.Bundles, Metadata{
			Name:              bc.Name,
			Namespace:         bc.Namespace,
			ExtendedNamespace: bc.ExtendedNamespace,
			ORM:               orm,
		})
	}

	if err := errs.AsError(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolve(basedir, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(basedir, dir)
}
