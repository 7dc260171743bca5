package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/syssam/fmgen/compiler"
	"github.com/syssam/fmgen/config"
	"github.com/syssam/fmgen/internal/metacache"
)

func newRunCmd(a *app) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate types and clients from the config file",
		Long: `Generate one type module per configured layout.

Every configuration of the file runs in order; the first failure stops
the rest. Layouts missing on the server are skipped.

Examples:
  fmgen run
  fmgen run --config ./fm/fmschema.yaml --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgs, err := a.loadConfigs()
			if err != nil {
				return err
			}
			return a.runAll(cmd.Context(), cfgs, purge)
		},
	}
	cmd.Flags().BoolVar(&purge, "purge-cache", false, "drop cached layout metadata before fetching")
	return cmd
}

func (a *app) loadConfigs() ([]*config.Config, error) {
	cfgs, err := config.Load(a.cfgFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s (run fmgen init to create one)", a.cfgFile)
	}
	return cfgs, err
}

func (a *app) runAll(ctx context.Context, cfgs []*config.Config, purge bool) error {
	for i, cfg := range cfgs {
		res, err := a.generate(ctx, cfg, purge)
		if err != nil {
			if len(cfgs) > 1 {
				return fmt.Errorf("config %d: %w", i, err)
			}
			return err
		}
		fmt.Fprintf(a.stdout, "%s: %d generated, %d skipped, %d files\n",
			cfg.Path, len(res.Generated), len(res.Skipped), len(res.Files))
		for _, s := range res.Skipped {
			fmt.Fprintf(a.stdout, "  skipped %s: %s\n", s.Layout, s.Reason)
		}
	}
	return nil
}

func (a *app) generate(ctx context.Context, cfg *config.Config, purge bool) (*compiler.Result, error) {
	gcfg, err := cfg.GenConfig()
	if err != nil {
		return nil, err
	}
	opts := []compiler.Option{
		compiler.WithEnv(a.env),
		compiler.WithLogger(a.logger(cfg.Logging)),
	}
	if a.factory != nil {
		opts = append(opts, compiler.WithFetcherFactory(a.factory))
	}
	if cfg.Cache.Dir != "" {
		cache, err := metacache.New(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		if purge {
			if err := cache.Purge(); err != nil {
				return nil, err
			}
		}
		opts = append(opts, compiler.WithCache(cache))
	}
	return compiler.New(gcfg, opts...).Generate(ctx, cfg.Requests())
}
