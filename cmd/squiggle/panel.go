package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"squiggle/internal/cache"
	"squiggle/internal/config"
	"squiggle/internal/panel"
	"squiggle/internal/source"
)

var panelCmd = &cobra.Command{
	Use:          "panel FILE",
	Short:        "Print the cached diagnostics panel for a file",
	Long:         `Prints the diagnostics that were published the last time FILE was open, provided its content has not changed since`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	diskCache, err := cache.Open("squiggle", cfg.Cache.Dir)
	if err != nil {
		return err
	}
	doc := source.NewDocument(string(data))
	items, hit, err := diskCache.Get(path, cache.HashText(doc.Text()))
	if err != nil {
		return err
	}
	if !hit {
		fmt.Fprintln(cmd.OutOrStdout(), "no cached diagnostics (file changed or never checked)")
		return nil
	}
	entries := make([]panel.Entry, 0, len(items))
	for _, d := range items {
		entries = append(entries, panel.Entry{Span: d.Span, Diag: d})
	}
	printPanel(cmd.OutOrStdout(), path, doc, entries, cfg.Panel)
	return nil
}
