package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/syssam/fmgen/compiler"
	"github.com/syssam/fmgen/compiler/gen"
	"github.com/syssam/fmgen/config"
)

// app carries the process dependencies of the commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    compiler.Env
	// factory is nil outside tests.
	factory compiler.FetcherFactory
	ask     func(qs []*survey.Question, answers any) error

	cfgFile   string
	logLevel  string
	logFormat string
}

func newApp() *app {
	return &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		env:    os.LookupEnv,
		ask: func(qs []*survey.Question, answers any) error {
			return survey.Ask(qs, answers)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "fmgen",
		Short: "Generate Go types and Data API clients from FileMaker layouts",
		Long: `fmgen reads the field metadata of FileMaker layouts over the Data API and
writes a Go type module per layout, plus an optional typed client.

Connection settings come from the environment:
  FM_SERVER, FM_DATABASE and either OTTO_API_KEY or FM_USERNAME and FM_PASSWORD

Quick start:
  fmgen init   # write fmschema.yaml
  fmgen run    # generate`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", config.DefaultPath, "config file path")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides the config file)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console or json (overrides the config file)")

	root.AddCommand(
		newRunCmd(a),
		newInitCmd(a),
		newWatchCmd(a),
		newVersionCmd(a),
	)
	return root
}

// execute runs the CLI and returns the process exit code.
func execute(a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		printError(a.stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	var cerr *gen.ConfigError
	if errors.As(err, &cerr) && len(cerr.Missing) > 0 {
		fmt.Fprintln(w, "fmgen: missing required environment variables:")
		for _, name := range cerr.Missing {
			fmt.Fprintf(w, "  - %s\n", name)
		}
		return
	}
	fmt.Fprintln(w, "fmgen:", err)
}

// logger builds the logger of one configuration. Flags win over the file.
func (a *app) logger(l config.LoggingConfig) zerolog.Logger {
	if a.logLevel != "" {
		l.Level = a.logLevel
	}
	if a.logFormat != "" {
		l.Format = a.logFormat
	}
	return l.Logger(a.stderr)
}
