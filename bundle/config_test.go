// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package bundle_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/madlambda/spells/assert"
	"github.com/spf13/afero"
	"github.com/terramate-io/extendgen"
	"github.com/terramate-io/extendgen/bundle"
	"github.com/terramate-io/extendgen/errors"
)

const userBundleHCL = `
bundle "SonataUserBundle" {
  namespace          = "Sonata\\UserBundle"
  extended_namespace = "Application\\Sonata\\UserBundle"

  orm {
    entity_dir           = "vendor/user/Entity"
    extended_entity_dir  = "src/Application/Sonata/UserBundle/Entity"
    mapping_dir          = "vendor/user/Resources/config/doctrine"
    extended_mapping_dir = "/abs/doctrine"
    entities             = ["User", "Group"]
  }
}
`

func TestLoadHCLConfig(t *testing.T) {
	t.Parallel()

	afs := afero.NewMemMapFs()
	writeFile(t, afs, "/project/extendgen.hcl", userBundleHCL)

	cfg, err := bundle.LoadFile(afs, "/project/extendgen.hcl")
	assert.NoError(t, err)

	want := bundle.Config{
		Filename: "/project/extendgen.hcl",
		Bundles: []bundle.Metadata{
			{
				Name:              "SonataUserBundle",
				Namespace:         `Sonata\UserBundle`,
				ExtendedNamespace: `Application\Sonata\UserBundle`,
				ORM: bundle.ORMMetadata{
					EntityDir:          "/project/vendor/user/Entity",
					ExtendedEntityDir:  "/project/src/Application/Sonata/UserBundle/Entity",
					MappingDir:         "/project/vendor/user/Resources/config/doctrine",
					ExtendedMappingDir: "/abs/doctrine",
					MappingPattern:     bundle.DefaultMappingPattern,
					Extension:          bundle.DefaultExtension,
					Entities:           []string{"User", "Group"},
				},
			},
		},
	}

	if diff := deep.Equal(cfg, want); diff != nil {
		t.Fatalf("config mismatch: %v", diff)
	}
}

func TestLoadTOMLConfig(t *testing.T) {
	t.Parallel()

	afs := afero.NewMemMapFs()
	writeFile(t, afs, "/project/extendgen.toml", `
[[bundle]]
name = "SonataMediaBundle"
namespace = 'Sonata\MediaBundle'
extended_namespace = 'Application\Sonata\MediaBundle'

[bundle.orm]
entity_dir = "media/Entity"
extended_entity_dir = "app/Entity"
mapping_dir = "media/doctrine"
extended_mapping_dir = "app/doctrine"
mapping_pattern = "*.xml.skel"
extension = ".php"
`)

	cfg, err := bundle.LoadFile(afs, "/project/extendgen.toml")
	assert.NoError(t, err)

	want := bundle.Config{
		Filename: "/project/extendgen.toml",
		Bundles: []bundle.Metadata{
			{
				Name:              "SonataMediaBundle",
				Namespace:         `Sonata\MediaBundle`,
				ExtendedNamespace: `Application\Sonata\MediaBundle`,
				ORM: bundle.ORMMetadata{
					EntityDir:          "/project/media/Entity",
					ExtendedEntityDir:  "/project/app/Entity",
					MappingDir:         "/project/media/doctrine",
					ExtendedMappingDir: "/project/app/doctrine",
					MappingPattern:     "*.xml.skel",
					Extension:          "php",
				},
			},
		},
	}

	if diff := deep.Equal(cfg, want); diff != nil {
		t.Fatalf("config mismatch: %v", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	type testcase struct {
		name    string
		file    string
		content string
		want    error
	}

	for _, tc := range []testcase{
		{
			name:    "invalid HCL syntax",
			file:    "extendgen.hcl",
			content: `bundle "A" {`,
			want:    errors.E(bundle.ErrConfig),
		},
		{
			name:    "unknown HCL attribute",
			file:    "extendgen.hcl",
			content: `unknown = true`,
			want:    errors.E(bundle.ErrConfig),
		},
		{
			name: "missing namespaces",
			file: "extendgen.hcl",
			content: `
bundle "A" {
  orm {
    entity_dir           = "a"
    extended_entity_dir  = "b"
    mapping_dir          = "c"
    extended_mapping_dir = "d"
  }
}`,
			want: errors.E(bundle.ErrConfig, errors.Bundle("A")),
		},
		{
			name: "missing orm block",
			file: "extendgen.hcl",
			content: `
bundle "A" {
  namespace          = "A"
  extended_namespace = "B"
}`,
			want: errors.E(bundle.ErrConfig, `"orm" block must be set`),
		},
		{
			name: "missing orm dir",
			file: "extendgen.hcl",
			content: `
bundle "A" {
  namespace          = "A"
  extended_namespace = "B"
  orm {
    entity_dir          = "a"
    extended_entity_dir = "b"
    mapping_dir         = "c"
  }
}`,
			want: errors.E(bundle.ErrConfig, `"orm.extended_mapping_dir" must be set`),
		},
		{
			name: "duplicated bundle",
			file: "extendgen.hcl",
			content: userBundleHCL + `
bundle "SonataUserBundle" {
  namespace          = "A"
  extended_namespace = "B"
}`,
			want: errors.E(bundle.ErrConfig, "duplicated bundle"),
		},
		{
			name: "invalid mapping pattern",
			file: "extendgen.hcl",
			content: `
bundle "A" {
  namespace          = "A"
  extended_namespace = "B"
  orm {
    entity_dir           = "a"
    extended_entity_dir  = "b"
    mapping_dir          = "c"
    extended_mapping_dir = "d"
    mapping_pattern      = "[*.xml"
  }
}`,
			want: errors.E(bundle.ErrConfig, errors.Bundle("A")),
		},
		{
			name: "invalid entity name",
			file: "extendgen.hcl",
			content: `
bundle "A" {
  namespace          = "A"
  extended_namespace = "B"
  orm {
    entity_dir           = "a"
    extended_entity_dir  = "b"
    mapping_dir          = "c"
    extended_mapping_dir = "d"
    entities             = ["../User"]
  }
}`,
			want: errors.E(bundle.ErrConfig, `invalid entity name "../User"`),
		},
		{
			name:    "unsatisfied required version",
			file:    "extendgen.hcl",
			content: `required_version = "> 999.0.0"`,
			want:    errors.E(extendgen.ErrVersion),
		},
		{
			name:    "unknown TOML field",
			file:    "extendgen.toml",
			content: `unknown = 1`,
			want:    errors.E(bundle.ErrConfig),
		},
		{
			name:    "invalid TOML",
			file:    "extendgen.toml",
			content: `[[bundle]`,
			want:    errors.E(bundle.ErrConfig),
		},
		{
			name:    "unsupported format",
			file:    "extendgen.yaml",
			content: `bundle: {}`,
			want:    errors.E(bundle.ErrConfig),
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			afs := afero.NewMemMapFs()
			path := "/project/" + tc.file
			writeFile(t, afs, path, tc.content)

			_, err := bundle.LoadFile(afs, path)
			errors.Assert(t, err, tc.want)
		})
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	t.Parallel()

	_, err := bundle.LoadFile(afero.NewMemMapFs(), "/project/extendgen.hcl")
	errors.AssertIsKind(t, err, bundle.ErrConfigNotFound)
}

func TestFindConfig(t *testing.T) {
	t.Parallel()

	afs := afero.NewMemMapFs()

	_, err := bundle.Find(afs, "/project")
	errors.AssertIsKind(t, err, bundle.ErrConfigNotFound)

	writeFile(t, afs, "/project/extendgen.toml", "")
	path, err := bundle.Find(afs, "/project")
	assert.NoError(t, err)
	assert.EqualStrings(t, "/project/extendgen.toml", path)

	writeFile(t, afs, "/project/extendgen.hcl", "")
	path, err = bundle.Find(afs, "/project")
	assert.NoError(t, err)
	assert.EqualStrings(t, "/project/extendgen.hcl", path)
}

func TestSelectBundles(t *testing.T) {
	t.Parallel()

	cfg := bundle.Config{
		Bundles: []bundle.Metadata{
			{Name: "A"},
			{Name: "B"},
			{Name: "C"},
		},
	}

	all, err := cfg.Select(nil)
	assert.NoError(t, err)
	assert.EqualInts(t, 3, len(all))

	selected, err := cfg.Select([]string{"C", "A", "C"})
	assert.NoError(t, err)
	assert.EqualInts(t, 2, len(selected))
	assert.EqualStrings(t, "C", selected[0].Name)
	assert.EqualStrings(t, "A", selected[1].Name)

	_, err = cfg.Select([]string{"A", "X", "Y"})
	errors.AssertErrorList(t, err, []error{
		errors.E(bundle.ErrUnknownBundle, errors.Bundle("X")),
		errors.E(bundle.ErrUnknownBundle, errors.Bundle("Y")),
	})
}

func writeFile(t *testing.T, afs afero.Fs, path, content string) {
	t.Helper()
	assert.NoError(t, afero.WriteFile(afs, path, []byte(content), 0644))
}
