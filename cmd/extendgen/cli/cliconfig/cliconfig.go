// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package cliconfig implements the loading of the user CLI configuration.
package cliconfig

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog/log"
	"github.com/terramate-io/extendgen/errors"
	"github.com/zclconf/go-cty/cty"
)

// Filename is the name of the CLI configuration file.
const Filename = ".extendgenrc"

// PathEnv is the environment variable used to define the config file path.
const PathEnv = "EXTENDGEN_CLI_CONFIG_FILE"

const (
	// ErrSyntax indicates the config file has invalid HCL syntax.
	ErrSyntax errors.Kind = "cli config syntax error"

	// ErrEval indicates an attribute could not be evaluated.
	ErrEval errors.Kind = "cli config eval error"

	// ErrInvalidAttributeType indicates the attribute has an invalid type.
	ErrInvalidAttributeType errors.Kind = "attribute with invalid type"

	// ErrUnrecognizedAttribute indicates the attribute is unrecognized.
	ErrUnrecognizedAttribute errors.Kind = "unrecognized attribute"

	// ErrUnrecognizedBlock indicates a block was found on the config.
	ErrUnrecognizedBlock errors.Kind = "unrecognized block"
)

// Config is the evaluated CLI configuration options.
type Config struct {
	LogLevel     string
	NoColor      bool
	TemplatesDir string
}

// Load loads the CLI configuration file.
// The file path is taken from PathEnv, defaulting to Filename inside the
// user home dir. A missing file is an empty configuration.
func Load() (Config, error) {
	fname := os.Getenv(PathEnv)
	if fname == "" {
		home, err := homedir.Dir()
		if err != nil {
			log.Debug().
				Str("action", "cliconfig.Load()").
				Err(err).
				Msg("unable to find home dir, ignoring cli config")
			return Config{}, nil
		}
		fname = filepath.Join(home, Filename)
	}
	return LoadFrom(fname)
}

// LoadFrom loads the CLI configuration file from fname.
// Relative templates dirs are resolved against the config file dir.
func LoadFrom(fname string) (Config, error) {
	logger := log.With().
		Str("action", "cliconfig.LoadFrom()").
		Str("file", fname).
		Logger()

	content, err := os.ReadFile(fname)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			logger.Trace().Msg("no cli config found")
			return Config{}, nil
		}
		return Config{}, errors.E(err, "reading %s", fname)
	}

	parser := hclparse.NewParser()
	hclfile, diags := parser.ParseHCL(content, fname)
	if diags.HasErrors() {
		return Config{}, errors.E(ErrSyntax, diags)
	}

	body := hclfile.Body.(*hclsyntax.Body)
	if len(body.Blocks) > 0 {
		block := body.Blocks[0]
		return Config{}, errors.E(ErrUnrecognizedBlock, block.DefRange(), block.Type)
	}

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	var cfg Config
	for _, name := range names {
		attr := body.Attributes[name]
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return Config{}, errors.E(ErrEval, diags, `failed to evaluate the "%s" attribute`, name)
		}
		switch name {
		case "log_level":
			if err := checkStrType(val, name); err != nil {
				return Config{}, errors.E(attr.NameRange, err)
			}
			cfg.LogLevel = val.AsString()
		case "no_color":
			if err := checkBoolType(val, name); err != nil {
				return Config{}, errors.E(attr.NameRange, err)
			}
			cfg.NoColor = val.True()
		case "templates_dir":
			if err := checkStrType(val, name); err != nil {
				return Config{}, errors.E(attr.NameRange, err)
			}
			cfg.TemplatesDir = val.AsString()
			if cfg.TemplatesDir != "" && !filepath.IsAbs(cfg.TemplatesDir) {
				cfg.TemplatesDir = filepath.Join(filepath.Dir(fname), cfg.TemplatesDir)
			}
		default:
			return Config{}, errors.E(ErrUnrecognizedAttribute, attr.NameRange, name)
		}
	}

	logger.Debug().Msg("loaded cli config")
	return cfg, nil
}

func checkBoolType(val cty.Value, name string) error {
	if !val.Type().Equals(cty.Bool) || val.IsNull() {
		return errors.E(
			ErrInvalidAttributeType,
			`%q attribute expects a boolean value but a value of type %s was given (value %s)`,
			name, val.Type().FriendlyName(), hclwrite.TokensForValue(val).Bytes(),
		)
	}
	return nil
}

func checkStrType(val cty.Value, name string) error {
	if !val.Type().Equals(cty.String) || val.IsNull() {
		return errors.E(
			ErrInvalidAttributeType,
			`%q attribute expects an string value but a value of type %s was given (value %s)`,
			name, val.Type().FriendlyName(), hclwrite.TokensForValue(val).Bytes(),
		)
	}
	return nil
}
