// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package printer

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/terramate-io/extendgen/errors"
)

var (
	bold       = color.New(color.Bold).Sprint
	boldYellow = color.New(color.Bold, color.FgYellow).Sprint
	boldRed    = color.New(color.Bold, color.FgRed).Sprint
	boldGreen  = color.New(color.Bold, color.FgGreen).Sprint
)

// Item markers, as printed by Item.
const (
	MarkCreated = "+"
	MarkSkipped = "~"
	MarkMissing = "!"
)

// Printer encapuslates an io.Writer
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new Printer with the provider io.Writer e.g.: stdio,
// stderr, file etc.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w}
}

// noColorDefault tells if the output lacks color support, as detected on
// startup.
var noColorDefault = color.NoColor

// SetColors enables or disables colored output for all printers.
// Colors are never enabled if the output has no color support.
func SetColors(enabled bool) {
	color.NoColor = !enabled || noColorDefault
}

// DisableColors disables colored output for all printers.
func DisableColors() {
	SetColors(false)
}

// Println prints a message to the io.Writer
func (p *Printer) Println(msg string) {
	fmt.Fprintln(p.w, msg)
}

// Step prints the title of a generation step.
func (p *Printer) Step(title string) {
	fmt.Fprintln(p.w, " -", bold(title))
}

// Item prints a step item prefixed by its marker.
// The created, skipped and missing markers are printed green, yellow and
// red, respectively.
func (p *Printer) Item(marker, name string) {
	styled := marker
	switch marker {
	case MarkCreated:
		styled = boldGreen(marker)
	case MarkSkipped:
		styled = boldYellow(marker)
	case MarkMissing:
		styled = boldRed(marker)
	}
	fmt.Fprintf(p.w, "   %s %s\n", styled, name)
}

// Warnln prints a message with a "Warning:" prefix. The prefix is printed in
// the boldYellow style.
func (p *Printer) Warnln(title string) {
	fmt.Fprintln(p.w, boldYellow("Warning:"), bold(title))
}

// ErrorWithDetailsln prints an error with a title and the underlying error. If
// the error contains multiple error items, each error is printed with a `>`
// prefix.
// e.g.:
// Error: loading bundle config
// > extendgen.hcl:8,3-7: invalid bundle config: "namespace" must be set
// > extendgen.hcl:9,4-7: invalid bundle config: duplicated bundle
func (p *Printer) ErrorWithDetailsln(title string, err error) {
	p.Errorln(title)

	for _, item := range toStrings(err) {
		fmt.Fprintln(p.w, boldRed(">"), item)
	}
}

// Errorln prints a message with a "Error:" prefix. The prefix is prinited in
// the boldRed style.
func (p *Printer) Errorln(title string) {
	fmt.Fprintln(p.w, boldRed("Error:"), bold(title))
}

// Successln prints a message in the boldGreen style
func (p *Printer) Successln(msg string) {
	fmt.Fprintln(p.w, boldGreen(msg))
}

// toStrings converts an error into a list of strings where each string
// represents an individual error.
func toStrings(err error) []string {
	errs := errors.L(err).Errors()
	list := make([]string, 0, len(errs))
	for _, errItem := range errs {
		list = append(list, errItem.Error())
	}

	return list
}
