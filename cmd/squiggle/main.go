package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"squiggle/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "squiggle",
	Short: "Diagnostic overlay engine for live editing surfaces",
	Long:  `Squiggle keeps checker diagnostics aligned with a document that keeps changing underneath them`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to squiggle.toml")
	rootCmd.PersistentFlags().Bool("trace", false, "log overlay activity to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
