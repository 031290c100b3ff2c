package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"squiggle/internal/version"
)

var versionFull bool

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "include build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show squiggle build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		v := strings.TrimSpace(version.Version)
		if v == "" {
			v = "dev"
		}
		switch strings.ToLower(format) {
		case "json":
			payload := map[string]string{
				"tool":    "squiggle",
				"version": v,
			}
			if versionFull {
				payload["git_commit"] = valueOrUnknown(version.GitCommit)
				payload["build_date"] = valueOrUnknown(version.BuildDate)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		case "pretty":
			fmt.Fprintf(cmd.OutOrStdout(), "squiggle %s\n", v)
			if versionFull {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", valueOrUnknown(version.GitCommit))
				fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", valueOrUnknown(version.BuildDate))
			}
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		}
	},
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
