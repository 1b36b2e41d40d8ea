// Copyright 2023 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

// Package cli implements the extendgen command line interface.
package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/madlambda/spells/errutil"
	"github.com/posener/complete"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/terramate-io/extendgen"
	"github.com/terramate-io/extendgen/bundle"
	"github.com/terramate-io/extendgen/cmd/extendgen/cli/cliconfig"
	"github.com/terramate-io/extendgen/errors"
	"github.com/terramate-io/extendgen/fs"
	"github.com/terramate-io/extendgen/generate"
	"github.com/terramate-io/extendgen/generate/report"
	"github.com/terramate-io/extendgen/printer"
	"github.com/terramate-io/extendgen/templates"
	"github.com/willabides/kongplete"
)

const (
	// ErrGenerate indicates the code generation had failures.
	ErrGenerate errutil.Error = "code generation failed"

	// ErrInvalidLogLevel indicates an unknown log level was configured.
	ErrInvalidLogLevel errutil.Error = "invalid log level"

	// ErrParseArgs indicates the command line arguments are invalid.
	ErrParseArgs errutil.Error = "failed to parse cli args"
)

const (
	defaultLogLevel = "warn"
	defaultLogFmt   = "console"
)

type cliSpec struct {
	Version      struct{} `cmd:"" help:"Extendgen version"`
	VersionFlag  bool     `name:"version" help:"Extendgen version"`
	Chdir        string   `short:"C" optional:"true" predictor:"dir" help:"Sets working directory"`
	Config       string   `short:"c" optional:"true" predictor:"file" help:"Bundle config file (default: extendgen.hcl or extendgen.toml on the working directory)"`
	LogLevel     string   `optional:"true" help:"Log level to use: 'trace', 'debug', 'info', 'warn', 'error', or 'fatal' (default: warn)"`
	LogFmt       string   `optional:"true" default:"console" enum:"console,text,json" help:"Log format to use: 'console', 'text', or 'json'"`
	DisableColor bool     `name:"no-color" optional:"true" help:"Disable colored output"`

	Generate struct {
		DryRun       bool     `default:"false" help:"Show what would be generated without writing any file"`
		TemplatesDir string   `optional:"true" predictor:"dir" help:"Directory overriding the entity and repository templates"`
		Report       bool     `default:"false" help:"Print the full code generation report"`
		Bundles      []string `arg:"" optional:"true" name:"bundles" help:"Bundles to generate (all bundles if not set)"`
	} `cmd:"" help:"Generate the extended mapping, entity and repository files of bundles"`

	List struct{} `cmd:"" help:"List bundles and their entities"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

// Run will run extendgen with the provided flags defined on args from the
// directory wd.
// Only flags should be on the args slice.
//
// Results will be written on stdout, according to the command flags, and
// errors/warnings written on stderr. If a critical error is found a non-nil
// error is returned, after being reported on stderr.
//
// Each Run call is isolated from each other, except for the global logger
// and color settings, which are configured by each call.
func Run(wd string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	configureLogging(defaultLogLevel, defaultLogFmt, false, stderr)
	printer.SetColors(true)

	c, err := newCLI(wd, args, stdin, stdout, stderr)
	if err != nil {
		printer.NewPrinter(stderr).ErrorWithDetailsln("extendgen failed", err)
		return err
	}

	err = c.run()
	if err != nil && !errors.Is(err, ErrGenerate) {
		c.errOutput.ErrorWithDetailsln(fmt.Sprintf("%s failed", c.ctx.Command()), err)
	}
	return err
}

type cli struct {
	ctx        *kong.Context
	parsedArgs *cliSpec
	cfg        cliconfig.Config
	fs         afero.Fs
	stdin      io.Reader
	output     *printer.Printer
	errOutput  *printer.Printer
	exit       bool
	wd         string
}

func newCLI(wd string, args []string, stdin io.Reader, stdout, stderr io.Writer) (*cli, error) {
	if len(args) == 0 {
		// WHY: avoid default kong error, print help
		args = []string{"--help"}
	}

	logger := log.With().
		Str("action", "newCLI()").
		Logger()

	kongExit := false
	kongExitStatus := 0

	parsedArgs := cliSpec{}
	parser, err := kong.New(&parsedArgs,
		kong.Name("extendgen"),
		kong.Description("A tool for scaffolding the extended ORM classes of bundles"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Exit(func(status int) {
			// Avoid kong aborting entire process since we designed CLI as lib
			kongExit = true
			kongExitStatus = status
		}),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return nil, errors.E(errors.ErrInternal, err, "creating cli parser")
	}

	kongplete.Complete(parser,
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
		kongplete.WithPredictor("dir", complete.PredictDirs("*")),
	)

	ctx, err := parser.Parse(args)

	c := &cli{
		ctx:        ctx,
		parsedArgs: &parsedArgs,
		fs:         afero.NewOsFs(),
		stdin:      stdin,
		output:     printer.NewPrinter(stdout),
		errOutput:  printer.NewPrinter(stderr),
		wd:         wd,
	}

	if kongExit && kongExitStatus == 0 {
		c.exit = true
		return c, nil
	}

	// When we run extendgen --version the kong parser just fails
	// since no subcommand was provided.
	// So we check if the flag for version is present before checking the error.
	if parsedArgs.VersionFlag {
		logger.Debug().Msg("get extendgen version using --version")
		c.output.Println(extendgen.Version())
		c.exit = true
		return c, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w %v: %v", ErrParseArgs, args, err)
	}

	cfg, err := cliconfig.Load()
	if err != nil {
		return nil, errors.E(err, "loading cli config")
	}
	c.cfg = cfg

	logLevel := parsedArgs.LogLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	if logLevel == "" {
		logLevel = defaultLogLevel
	}
	if !validLogLevel(logLevel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, logLevel)
	}

	noColor := parsedArgs.DisableColor || cfg.NoColor
	printer.SetColors(!noColor)

	configureLogging(logLevel, parsedArgs.LogFmt, noColor, stderr)
	// If we don't re-create the logger after configuring we get some
	// log entries with a mix of default fmt and selected fmt.
	logger = log.With().
		Str("action", "newCLI()").
		Str("workingDir", wd).
		Logger()

	if parsedArgs.Chdir != "" {
		dir := c.abspath(parsedArgs.Chdir)
		logger.Debug().
			Str("dir", dir).
			Msg("changing working directory")

		if !fs.IsDir(c.fs, dir) {
			return nil, errors.E("changing working directory: %s is not a directory", dir)
		}
		c.wd = dir
	}

	return c, nil
}

func (c *cli) run() error {
	if c.exit {
		// WHY: parser called exit but with no error (like help)
		return nil
	}

	logger := log.With().
		Str("action", "cli.run()").
		Str("workingDir", c.wd).
		Logger()

	logger.Debug().
		Str("command", c.ctx.Command()).
		Msg("running command")

	switch c.ctx.Command() {
	case "version":
		c.output.Println(extendgen.Version())
	case "install-completions":
		return c.parsedArgs.InstallCompletions.Run(c.ctx)
	case "generate", "generate <bundles>":
		return c.generate()
	case "list":
		return c.listBundles()
	default:
		return errors.E(errors.ErrInternal, "unexpected command sequence: %s", c.ctx.Command())
	}
	return nil
}

func (c *cli) generate() error {
	logger := log.With().
		Str("action", "cli.generate()").
		Str("workingDir", c.wd).
		Logger()

	r := c.generateBundles()
	r.Sort()

	if r.BootstrapErr != nil {
		c.errOutput.ErrorWithDetailsln("preparing code generation", r.BootstrapErr)
		return ErrGenerate
	}

	if c.parsedArgs.Generate.Report {
		c.output.Println(r.Full())
	}

	if r.HasFailures() {
		errs := errors.L()
		for _, failure := range r.Failures {
			errs.Append(failure.Error)
		}
		c.errOutput.ErrorWithDetailsln(string(ErrGenerate), errs)
		return ErrGenerate
	}

	logger.Debug().
		Int("created", r.Created()).
		Msg("code generation finished")

	c.output.Successln("done!")
	return nil
}

func (c *cli) generateBundles() report.Report {
	var r report.Report

	cfg, err := c.loadBundleConfig()
	if err != nil {
		r.BootstrapErr = err
		return r
	}

	bundles, err := cfg.Select(c.parsedArgs.Generate.Bundles)
	if err != nil {
		r.BootstrapErr = err
		return r
	}

	tmplDir := c.cfg.TemplatesDir
	if c.parsedArgs.Generate.TemplatesDir != "" {
		tmplDir = c.abspath(c.parsedArgs.Generate.TemplatesDir)
	}

	tmpl, err := templates.Load(c.fs, tmplDir)
	if err != nil {
		r.BootstrapErr = err
		return r
	}

	opts := []generate.Option{generate.WithPrinter(c.output)}
	if c.parsedArgs.Generate.DryRun {
		opts = append(opts, generate.WithDryRun())
	}
	g := generate.New(c.fs, tmpl, opts...)

	for _, md := range bundles {
		c.output.Println(fmt.Sprintf("Processing bundle %q", md.Name))
		r.Merge(g.Generate(md))
	}
	return r
}

func (c *cli) listBundles() error {
	cfg, err := c.loadBundleConfig()
	if err != nil {
		return err
	}

	errs := errors.L()
	for _, md := range cfg.Bundles {
		names, err := md.ORM.EntityNames(c.fs)
		if err != nil {
			errs.Append(errors.E(errors.Bundle(md.Name), err))
			continue
		}

		c.output.Println(md.Name)
		for _, name := range names {
			c.output.Println("  - " + name)
		}
	}
	return errs.AsError()
}

func (c *cli) loadBundleConfig() (bundle.Config, error) {
	path := c.parsedArgs.Config
	if path == "" {
		found, err := bundle.Find(c.fs, c.wd)
		if err != nil {
			return bundle.Config{}, err
		}
		path = found
	}
	return bundle.LoadFile(c.fs, c.abspath(path))
}

func (c *cli) abspath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.wd, path)
}

func validLogLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal":
		return true
	}
	return false
}

func configureLogging(logLevel string, logFmt string, noColor bool, output io.Writer) {
	zloglevel, err := zerolog.ParseLevel(logLevel)

	if err != nil {
		zloglevel = zerolog.FatalLevel
	}

	zerolog.SetGlobalLevel(zloglevel)

	if logFmt == "json" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(output)
	} else if logFmt == "text" || noColor { // no color
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.RFC3339})
	} else { // default: console mode using color
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: output, NoColor: false, TimeFormat: time.RFC3339})
	}
}
