package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"squiggle/internal/diag"
	"squiggle/internal/source"
)

// Row is one rendered panel line.
type Row struct {
	Line     uint32
	Col      uint32
	Severity diag.DisplaySeverity
	Message  string
}

// Snapshot is one published panel state.
type Snapshot struct {
	Version source.Version
	Rows    []Row
}

type panelModel struct {
	title   string
	updates <-chan Snapshot
	spinner spinner.Model
	snap    Snapshot
	haveOne bool
	width   int
	done    bool
}

type snapshotMsg Snapshot
type closedMsg struct{}

// NewPanelView returns a Bubble Tea model that renders the diagnostics
// panel live: a spinner until the first rebuild publishes, then one row
// per diagnostic, refreshed on every update from the channel.
func NewPanelView(title string, updates <-chan Snapshot) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return &panelModel{
		title:   title,
		updates: updates,
		spinner: sp,
		width:   80,
	}
}

func (m *panelModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForUpdate())
}

func (m *panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = Snapshot(msg)
		m.haveOne = true
		return m, m.listenForUpdate()
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.haveOne {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *panelModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	var b strings.Builder
	header := m.title
	if m.haveOne {
		header = fmt.Sprintf("%s (v%d, %d diagnostics)", header, m.snap.Version, len(m.snap.Rows))
	} else {
		header = fmt.Sprintf("%s %s checking...", m.spinner.View(), header)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if m.haveOne && len(m.snap.Rows) == 0 {
		b.WriteString("  no diagnostics\n")
		return b.String()
	}

	posWidth := 10
	msgWidth := m.width - posWidth - 16
	if msgWidth < 20 {
		msgWidth = 20
	}
	for _, row := range m.snap.Rows {
		pos := fmt.Sprintf("%d:%d", row.Line, row.Col)
		label := styleSeverity(row.Severity).Render(fmt.Sprintf("%-12s", row.Severity.String()))
		b.WriteString(fmt.Sprintf("  %-*s %s %s\n", posWidth, pos, label, Truncate(row.Message, msgWidth)))
	}
	return b.String()
}

func (m *panelModel) listenForUpdate() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.updates
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func styleSeverity(sev diag.DisplaySeverity) lipgloss.Style {
	switch sev {
	case diag.DispSyntaxError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case diag.DispWarning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

// Truncate trims value to width display cells, never splitting a rune.
// Messages are NFC normalized first so combining sequences measure
// consistently.
func Truncate(value string, width int) string {
	value = norm.NFC.String(value)
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
