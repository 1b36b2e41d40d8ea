// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package templates_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/madlambda/spells/assert"
	"github.com/spf13/afero"
	"github.com/terramate-io/extendgen/mustache"
	"github.com/terramate-io/extendgen/templates"
)

func TestDefaultTemplatesPlaceholders(t *testing.T) {
	t.Parallel()

	set := templates.Default()

	if diff := cmp.Diff(
		[]string{"class", "extended_name", "extended_namespace", "name", "namespace"},
		mustache.Placeholders(set.Entity()),
	); diff != "" {
		t.Fatalf("entity placeholders mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(
		[]string{"extended_namespace", "name", "namespace"},
		mustache.Placeholders(set.Repository()),
	); diff != "" {
		t.Fatalf("repository placeholders mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderDefaultRepository(t *testing.T) {
	t.Parallel()

	got := templates.Default().RenderRepository(mustache.Vars{
		"extended_namespace": `Application\Sonata\UserBundle`,
		"namespace":          `Sonata\UserBundle`,
		"name":               "User",
	})

	assert.IsTrue(t, strings.Contains(got, `namespace Application\Sonata\UserBundle\Entity;`))
	assert.IsTrue(t, strings.Contains(got, `use Sonata\UserBundle\Entity\BaseUserRepository;`))
	assert.IsTrue(t, strings.Contains(got, `class UserRepository extends BaseUserRepository`))
	assert.IsTrue(t, !strings.Contains(got, "{{"))
}

func TestLoadWithoutDirReturnsDefaults(t *testing.T) {
	t.Parallel()

	set, err := templates.Load(afero.NewMemMapFs(), "")
	assert.NoError(t, err)
	assert.EqualStrings(t, templates.Default().Entity(), set.Entity())
	assert.EqualStrings(t, templates.Default().Repository(), set.Repository())
}

func TestLoadOverridesOnlyPresentTemplates(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "/tmpl/"+templates.EntityFilename,
		[]byte("class {{ class }} extends {{ extended_name }} {}"), 0644))

	set, err := templates.Load(fs, "/tmpl")
	assert.NoError(t, err)
	assert.EqualStrings(t, "class {{ class }} extends {{ extended_name }} {}", set.Entity())
	assert.EqualStrings(t, templates.Default().Repository(), set.Repository())

	assert.EqualStrings(t, "class User extends BaseUser {}", set.RenderEntity(mustache.Vars{
		"class":         "User",
		"extended_name": "BaseUser",
	}))
}

func TestNewTemplateSet(t *testing.T) {
	t.Parallel()

	set := templates.New("e:{{ name }}", "r:{{ name }}")
	vars := mustache.Vars{"name": "Group"}
	assert.EqualStrings(t, "e:Group", set.RenderEntity(vars))
	assert.EqualStrings(t, "r:Group", set.RenderRepository(vars))
}
