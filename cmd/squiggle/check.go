package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"squiggle/internal/checker"
	"squiggle/internal/config"
	"squiggle/internal/diag"
	"squiggle/internal/overlay"
	"squiggle/internal/panel"
	"squiggle/internal/source"
	"squiggle/internal/ui"
)

var (
	checkTimings bool
	checkUI      bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkTimings, "timings", false, "show checker timing information")
	checkCmd.Flags().BoolVar(&checkUI, "ui", false, "show results in an interactive panel view")
}

var checkCmd = &cobra.Command{
	Use:          "check FILE",
	Short:        "Check one file and print its diagnostics panel",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	doc := source.NewDocument(string(data))
	published := make(chan struct{}, 1)
	model := panel.NewModel(func() {
		select {
		case published <- struct{}{}:
		default:
		}
	})
	runner := checker.NewRunner(doc, checker.BasicChecks, time.Millisecond)
	ov := overlay.New(doc, runner, overlay.Options{Panel: model})
	defer ov.Close()
	defer runner.Close()

	runner.Kick()
	select {
	case <-published:
	case <-time.After(10 * time.Second):
		return fmt.Errorf("checker did not settle")
	}

	rows := ov.PanelContents()
	if checkUI && isTerminal(os.Stdout) {
		if err := runPanelUI(args[0], doc, ov); err != nil {
			return err
		}
	} else {
		printPanel(cmd.OutOrStdout(), args[0], doc, rows, cfg.Panel)
	}
	if checkTimings {
		report := runner.Timings()
		for _, phase := range report.Phases {
			fmt.Fprintf(os.Stderr, "  %-20s %7.2f ms\n", phase.Name, phase.DurationMS)
		}
	}

	errCount := 0
	for _, row := range rows {
		if row.Diag.Severity == diag.DispSyntaxError {
			errCount++
		}
	}
	if errCount > 0 {
		return fmt.Errorf("%d error(s) in %s", errCount, args[0])
	}
	return nil
}

func runPanelUI(path string, doc *source.Document, ov *overlay.Overlay) error {
	updates := make(chan ui.Snapshot, 4)
	updates <- ui.Snapshot{
		Version: ov.Version(),
		Rows:    panelRows(doc, ov.PanelContents()),
	}
	model := ui.NewPanelView(path, updates)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, err := program.Run()
	close(updates)
	return err
}

func panelRows(doc *source.Document, entries []panel.Entry) []ui.Row {
	rows := make([]ui.Row, 0, len(entries))
	for _, e := range entries {
		start, _ := doc.Resolve(e.Span)
		rows = append(rows, ui.Row{
			Line:     start.Line,
			Col:      start.Col,
			Severity: e.Diag.Severity,
			Message:  e.Diag.Message,
		})
	}
	return rows
}

func printPanel(w io.Writer, path string, doc *source.Document, entries []panel.Entry, opts config.PanelConfig) {
	errLabel := color.New(color.FgRed, color.Bold)
	warnLabel := color.New(color.FgYellow)
	for _, e := range entries {
		start, _ := doc.Resolve(e.Span)
		label := warnLabel.Sprint(e.Diag.Severity.String())
		if e.Diag.Severity == diag.DispSyntaxError {
			label = errLabel.Sprint(e.Diag.Severity.String())
		}
		msg := ui.Truncate(e.Diag.Message, opts.MaxWidth)
		if opts.ShowOrigin {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, start.Line, start.Col, label, msg)
			continue
		}
		fmt.Fprintf(w, "%d:%d: %s: %s\n", start.Line, start.Col, label, msg)
	}
}
