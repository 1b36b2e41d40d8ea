// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package mustache implements the placeholder substitution used by the
// skeleton templates.
//
// Only plain variable tokens are supported: {{ name }}, with optional
// whitespace around the name, newlines included. There are no sections,
// partials or escaping.
package mustache

import (
	"regexp"
	"sort"
)

var tokenRegex = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Vars are the values available to a template, indexed by placeholder name.
type Vars map[string]string

// Replace substitutes every {{ key }} token of tmpl whose key is defined in
// vars. Tokens with undefined keys are kept verbatim.
func Replace(tmpl string, vars Vars) string {
	return tokenRegex.ReplaceAllStringFunc(tmpl, func(token string) string {
		key := tokenRegex.FindStringSubmatch(token)[1]
		if val, ok := vars[key]; ok {
			return val
		}
		return token
	})
}

// Placeholders returns the sorted, unique placeholder names used by tmpl.
func Placeholders(tmpl string) []string {
	seen := map[string]struct{}{}
	for _, match := range tokenRegex.FindAllStringSubmatch(tmpl, -1) {
		seen[match[1]] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Missing returns the sorted placeholder names used by tmpl that are not
// defined in vars.
func Missing(tmpl string, vars Vars) []string {
	var missing []string
	for _, name := range Placeholders(tmpl) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
