// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// extendgen scaffolds application owned extensions of bundle ORM classes.
// For details on how to use it just run:
//
//	extendgen --help
package main

import (
	"fmt"
	"os"

	"github.com/terramate-io/extendgen/cmd/extendgen/cli"
	"github.com/terramate-io/extendgen/exit"
)

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to get current directory: %v\n", err)
		os.Exit(int(exit.Failed))
	}
	if err := cli.Run(wd, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(int(exit.Failed))
	}
}
