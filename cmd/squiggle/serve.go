package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"squiggle/internal/cache"
	"squiggle/internal/config"
	"squiggle/internal/host"
)

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Run the squiggle overlay host over stdio",
	SilenceUsage: true,
	RunE:         runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	trace, _ := cmd.Flags().GetBool("trace")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	var diskCache *cache.DiskCache
	if cfg.Cache.Enabled {
		diskCache, err = cache.Open("squiggle", cfg.Cache.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cache disabled: %v\n", err)
		}
	}

	server := host.NewServer(os.Stdin, os.Stdout, host.Options{
		Config: cfg,
		Cache:  diskCache,
		Trace:  trace,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, host.ErrExit) {
			return nil
		}
		if errors.Is(err, host.ErrExitWithoutShutdown) {
			return fmt.Errorf("host exit without shutdown")
		}
		return err
	}
	return nil
}
