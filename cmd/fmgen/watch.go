package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syssam/fmgen/config"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the config file changes",
		Long: `Generate once, then regenerate every time the config file is saved.

A failed run is reported and the watch goes on. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx)
		},
	}
}

func (a *app) watch(ctx context.Context) error {
	cfgs, err := a.loadConfigs()
	if err != nil {
		return err
	}
	log := a.logger(cfgs[0].Logging)
	if err := a.runAll(ctx, cfgs, false); err != nil {
		printError(a.stderr, err)
	}

	w, err := config.NewWatcher(a.cfgFile, log, func(cfgs []*config.Config) {
		if err := a.runAll(ctx, cfgs, false); err != nil {
			printError(a.stderr, err)
		}
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
