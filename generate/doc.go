// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package generate implements the generation of extended ORM files.
//
// For a bundle it copies the mapping skeletons into the extended mapping
// dir and renders the entity and repository stubs into the extended entity
// dir. Existing files are never overwritten, so running the generator again
// over an already generated tree changes nothing.
package generate
