// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package extendgen scaffolds application owned extensions of bundle ORM
// classes. It copies mapping skeletons and renders entity and repository
// stubs, never overwriting files that already exist.
package extendgen
