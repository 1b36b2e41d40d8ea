// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/terramate-io/extendgen/bundle"
	"github.com/terramate-io/extendgen/errors"
	"github.com/terramate-io/extendgen/errors/errlog"
	"github.com/terramate-io/extendgen/fs"
	"github.com/terramate-io/extendgen/generate/report"
	"github.com/terramate-io/extendgen/mustache"
	"github.com/terramate-io/extendgen/printer"
	"github.com/terramate-io/extendgen/templates"
)

const (
	// ErrRead indicates a generation source could not be read.
	ErrRead errors.Kind = "reading generation source"

	// ErrWrite indicates a generated file could not be written.
	ErrWrite errors.Kind = "writing generated file"
)

// Step titles, as printed on progress output.
const (
	MappingStepTitle    = "Copy entity files"
	EntityStepTitle     = "Generating entity files"
	RepositoryStepTitle = "Generating entity repository files"
)

// Template variable names.
const (
	VarNamespace         = "namespace"
	VarExtendedNamespace = "extended_namespace"
	VarName              = "name"
	VarClass             = "class"
	VarExtendedName      = "extended_name"
)

const (
	basePrefix       = "Base"
	repositorySuffix = "Repository"
)

// Generator generates the extended files of bundles.
type Generator struct {
	fs      afero.Fs
	tmpl    templates.Set
	printer *printer.Printer
	dryRun  bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithDryRun makes the generator take all decisions and report them
// without writing any file.
func WithDryRun() Option {
	return func(g *Generator) {
		g.dryRun = true
	}
}

// WithPrinter sets the printer used for progress output.
// By default progress output is discarded.
func WithPrinter(p *printer.Printer) Option {
	return func(g *Generator) {
		g.printer = p
	}
}

// New creates a generator that reads and writes files on fs, rendering
// stubs with the tmpl templates.
func New(fs afero.Fs, tmpl templates.Set, opts ...Option) *Generator {
	g := &Generator{
		fs:      fs,
		tmpl:    tmpl,
		printer: printer.NewPrinter(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs all generation steps for the bundle, in order: mapping
// files, entities and repositories. Failures on one item do not stop the
// generation of the others, they are reported on the returned report.
func (g *Generator) Generate(md bundle.Metadata) report.Report {
	logger := log.With().
		Str("action", "generate.Generate()").
		Str("bundle", md.Name).
		Bool("dryRun", g.dryRun).
		Logger()

	logger.Debug().Msg("generating bundle files")

	var r report.Report
	r.Merge(g.MappingFiles(md))
	r.Merge(g.Entities(md))
	r.Merge(g.Repositories(md))
	r.Sort()

	logger.Debug().
		Int("created", r.Created()).
		Bool("failures", r.HasFailures()).
		Msg("bundle files generated")

	return r
}

// MappingFiles copies the mapping skeletons of the bundle into its extended
// mapping dir. The destination name is the skeleton name without its last
// extension and the namespace placeholder is replaced by the extended
// namespace.
func (g *Generator) MappingFiles(md bundle.Metadata) report.Report {
	logger := log.With().
		Str("action", "generate.MappingFiles()").
		Str("bundle", md.Name).
		Logger()

	g.printer.Step(MappingStepTitle)

	var r report.Report
	destdir := md.ORM.ExtendedMappingDir

	files, err := md.ORM.MappingFiles(g.fs)
	if err != nil {
		err = errors.E(ErrRead, errors.Bundle(md.Name), err)
		errlog.Warn(logger, err, "listing mapping files")
		r.AddFailure(destdir, err)
		return r
	}

	var dir report.Dir
	for _, fname := range files {
		name := fs.TrimExt(fname)
		dest := filepath.Join(destdir, name)

		logger := logger.With().
			Str("mapping", fname).
			Str("dest", dest).
			Logger()

		if fs.IsFile(g.fs, dest) {
			logger.Trace().Msg("mapping file exists, skipping")
			g.skipped(&dir, name, name)
			continue
		}

		src := filepath.Join(md.ORM.MappingDir, fname)
		data, err := afero.ReadFile(g.fs, src)
		if err != nil {
			err = errors.E(ErrRead, errors.Bundle(md.Name), err, "reading mapping file %s", src)
			errlog.Warn(logger, err)
			dir.AddError(err)
			continue
		}

		vars := mustache.Vars{
			VarNamespace: md.ExtendedNamespace,
		}
		warnUnresolved(logger, string(data), vars)
		content := mustache.Replace(string(data), vars)
		g.write(logger, md, &dir, dest, name, content)
	}

	r.AddDirReport(destdir, dir)
	return r
}

// Entities renders the extended entity stubs of the bundle.
// The source of an entity N is N or, when absent, BaseN. Entities with no
// source are reported as missing and nothing is written for them.
func (g *Generator) Entities(md bundle.Metadata) report.Report {
	logger := log.With().
		Str("action", "generate.Entities()").
		Str("bundle", md.Name).
		Logger()

	g.printer.Step(EntityStepTitle)

	var r report.Report
	destdir := md.ORM.ExtendedEntityDir

	names, err := md.ORM.EntityNames(g.fs)
	if err != nil {
		err = errors.E(ErrRead, errors.Bundle(md.Name), err)
		errlog.Warn(logger, err, "listing entities")
		r.AddFailure(destdir, err)
		return r
	}

	var dir report.Dir
	for _, name := range names {
		logger := logger.With().
			Str("entity", name).
			Logger()

		found := name
		if !fs.IsFile(g.fs, md.ORM.EntityFile(found)) {
			found = basePrefix + name
			if !fs.IsFile(g.fs, md.ORM.EntityFile(found)) {
				logger.Debug().Msg("entity source not found, skipping")
				g.printer.Item(printer.MarkMissing, found)
				dir.AddMissingSource(found)
				continue
			}
		}

		dest := md.ORM.ExtendedEntityFile(name)
		fname := filepath.Base(dest)
		if fs.IsFile(g.fs, dest) {
			logger.Trace().Str("dest", dest).Msg("entity exists, skipping")
			g.skipped(&dir, name, fname)
			continue
		}

		vars := mustache.Vars{
			VarExtendedNamespace: md.ExtendedNamespace,
			VarNamespace:         md.Namespace,
			VarClass:             name,
			VarName:              found,
			VarExtendedName:      basePrefix + name,
		}
		warnUnresolved(logger, g.tmpl.Entity(), vars)
		content := g.tmpl.RenderEntity(vars)
		g.write(logger, md, &dir, dest, name, content)
	}

	r.AddDirReport(destdir, dir)
	return r
}

// Repositories renders the extended repository stubs of the bundle.
// The repository of an entity N is only generated if the base repository
// BaseNRepository exists.
func (g *Generator) Repositories(md bundle.Metadata) report.Report {
	logger := log.With().
		Str("action", "generate.Repositories()").
		Str("bundle", md.Name).
		Logger()

	g.printer.Step(RepositoryStepTitle)

	var r report.Report
	destdir := md.ORM.ExtendedEntityDir

	names, err := md.ORM.EntityNames(g.fs)
	if err != nil {
		err = errors.E(ErrRead, errors.Bundle(md.Name), err)
		errlog.Warn(logger, err, "listing entities")
		r.AddFailure(destdir, err)
		return r
	}

	var dir report.Dir
	for _, name := range names {
		class := name + repositorySuffix

		logger := logger.With().
			Str("repository", class).
			Logger()

		if !fs.IsFile(g.fs, md.ORM.EntityFile(basePrefix+class)) {
			logger.Debug().Msg("base repository not found, skipping")
			g.printer.Item(printer.MarkMissing, class)
			dir.AddMissingSource(class)
			continue
		}

		dest := md.ORM.ExtendedEntityFile(class)
		fname := filepath.Base(dest)
		if fs.IsFile(g.fs, dest) {
			logger.Trace().Str("dest", dest).Msg("repository exists, skipping")
			g.skipped(&dir, class, fname)
			continue
		}

		vars := mustache.Vars{
			VarExtendedNamespace: md.ExtendedNamespace,
			VarName:              name,
			VarNamespace:         md.Namespace,
		}
		warnUnresolved(logger, g.tmpl.Repository(), vars)
		content := g.tmpl.RenderRepository(vars)
		g.write(logger, md, &dir, dest, class, content)
	}

	r.AddDirReport(destdir, dir)
	return r
}

// warnUnresolved logs the placeholders of tmpl that vars leave untouched.
// They are kept verbatim on the generated file.
func warnUnresolved(logger zerolog.Logger, tmpl string, vars mustache.Vars) {
	missing := mustache.Missing(tmpl, vars)
	if len(missing) == 0 {
		return
	}
	logger.Warn().
		Strs("placeholders", missing).
		Msg("template has unresolved placeholders")
}

func (g *Generator) skipped(dir *report.Dir, item, fname string) {
	g.printer.Item(printer.MarkSkipped, item)
	dir.AddSkippedFile(fname)
}

// write writes content to the new file dest, recording the outcome on dir.
// Anything that exists at dest when writing, even if it is not a regular
// file, is reported as skipped. Dry runs take the same decision.
func (g *Generator) write(
	logger zerolog.Logger,
	md bundle.Metadata,
	dir *report.Dir,
	dest, item, content string,
) {
	fname := filepath.Base(dest)

	if g.dryRun {
		if fs.Exists(g.fs, dest) {
			logger.Debug().Str("dest", dest).Msg("dry run, destination exists, skipping")
			g.skipped(dir, item, fname)
			return
		}
		logger.Debug().Str("dest", dest).Msg("dry run, not writing file")
		g.printer.Item(printer.MarkCreated, item)
		dir.AddCreatedFile(fname)
		return
	}

	err := fs.WriteNewFile(g.fs, dest, []byte(content))
	if errors.IsKind(err, fs.ErrFileExists) {
		logger.Debug().Str("dest", dest).Msg("file created concurrently, skipping")
		g.skipped(dir, item, fname)
		return
	}
	if err != nil {
		err = errors.E(ErrWrite, errors.Bundle(md.Name), err)
		errlog.Warn(logger, err)
		dir.AddError(err)
		return
	}

	logger.Debug().Str("dest", dest).Msg("file created")
	g.printer.Item(printer.MarkCreated, item)
	dir.AddCreatedFile(fname)
}
