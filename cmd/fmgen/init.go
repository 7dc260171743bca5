package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/syssam/fmgen/compiler/gen"
	"github.com/syssam/fmgen/config"
)

const (
	authAPIKey  = "Otto API key"
	authAccount = "FileMaker account"
)

type initAnswers struct {
	Layout     string
	SchemaName string `survey:"schema"`
	Path       string
	Auth       string
}

func newInitCmd(a *app) *cobra.Command {
	var (
		yes   bool
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a starter fmschema.yaml.

Without --yes the layout, schema name, output directory and
authentication method are asked for.

Examples:
  fmgen init
  fmgen init --yes --config ./fm/fmschema.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := config.DefaultStubOptions()
			if !yes {
				var err error
				if opts, err = a.askStub(opts); err != nil {
					return err
				}
			}
			err := config.WriteStub(a.cfgFile, opts, force)
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.cfgFile)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote %s. Set the connection variables and run fmgen run.\n", a.cfgFile)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept the defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func (a *app) askStub(def config.StubOptions) (config.StubOptions, error) {
	qs := []*survey.Question{
		{
			Name:     "layout",
			Prompt:   &survey.Input{Message: "Layout name:", Default: def.Layout},
			Validate: survey.Required,
		},
		{
			Name:   "schema",
			Prompt: &survey.Input{Message: "Schema name:", Default: def.SchemaName},
			Validate: survey.ComposeValidators(survey.Required, func(v any) error {
				if s, _ := v.(string); gen.Identifier(s) != s {
					return fmt.Errorf("%q is not a valid Go identifier (try %q)", s, gen.Identifier(s))
				}
				return nil
			}),
		},
		{
			Name:   "path",
			Prompt: &survey.Input{Message: "Output directory:", Default: def.Path},
		},
		{
			Name: "auth",
			Prompt: &survey.Select{
				Message: "Authenticate with:",
				Options: []string{authAPIKey, authAccount},
				Default: authAPIKey,
			},
		},
	}
	var ans initAnswers
	if err := a.ask(qs, &ans); err != nil {
		return def, fmt.Errorf("prompt: %w", err)
	}
	return config.StubOptions{
		Layout:     ans.Layout,
		SchemaName: ans.SchemaName,
		Path:       ans.Path,
		UseAccount: ans.Auth == authAccount,
	}, nil
}
