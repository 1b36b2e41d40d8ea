// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package printer defines funtionality for "printing" text to an io.Writer e.g.
// os.Stdout, os.Stderr etc. with a consistent style for errors, warnings,
// information etc.
package printer
