package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/mx3c/internal/storage"
	"github.com/san-kum/mx3c/internal/viz"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// ScriptLoader returns the script text of a stored run.
type ScriptLoader func(runID string) (string, error)

type state int

const (
	stateList state = iota
	stateScript
)

type model struct {
	state  state
	runs   []storage.RunMetadata
	load   ScriptLoader
	cursor int

	lines  []string
	offset int
	err    error

	width  int
	height int
}

func newModel(runs []storage.RunMetadata, load ScriptLoader) model {
	return model{
		runs:   runs,
		load:   load,
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateList:
		return m.listKey(msg)
	case stateScript:
		return m.scriptKey(msg)
	}
	return m, nil
}

func (m model) listKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.runs)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.runs) == 0 {
			return m, nil
		}
		text, err := m.load(m.runs[m.cursor].ID)
		m.err = err
		if err != nil {
			return m, nil
		}
		m.lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		m.offset = 0
		m.state = stateScript
	}
	return m, nil
}

func (m model) scriptKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace", "h":
		m.state = stateList
	case "up", "k":
		if m.offset > 0 {
			m.offset--
		}
	case "down", "j":
		if m.offset < len(m.lines)-1 {
			m.offset++
		}
	case "g":
		m.offset = 0
	case "G":
		m.offset = max(len(m.lines)-m.pageSize(), 0)
	}
	return m, nil
}

func (m model) pageSize() int {
	return max(m.height-8, 5)
}

func (m model) View() string {
	switch m.state {
	case stateList:
		return m.viewList()
	case stateScript:
		return m.viewScript()
	}
	return ""
}

func (m model) viewList() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("             " + cyan.Render("m x 3 c") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	if len(m.runs) == 0 {
		b.WriteString(dim.Render("      no stored runs") + "\n")
	}
	for i, run := range m.runs {
		desc := fmt.Sprintf("%-6s %s", run.Driver, run.Timestamp.Format("2006-01-02 15:04"))
		if len(run.Warnings) > 0 {
			desc += yellow.Render(fmt.Sprintf("  %d warning(s)", len(run.Warnings)))
		}
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-28s", run.ID)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-28s", run.ID)) + dimmer.Render(desc) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter open   q quit") + "\n")
	return b.String()
}

func (m model) viewScript() string {
	run := m.runs[m.cursor]

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(run.ID) + "  " + dim.Render(run.ScriptName()) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	end := min(m.offset+m.pageSize(), len(m.lines))
	b.WriteString(viz.Script(strings.Join(m.lines[m.offset:end], "\n")))
	b.WriteString("\n\n")
	b.WriteString(dim.Render(fmt.Sprintf("      %d/%d   ↑↓ scroll  g/G top/bottom  esc back  q quit", end, len(m.lines))) + "\n")
	return b.String()
}

// RunBrowser lists stored runs and shows their scripts.
func RunBrowser(st *storage.Store) error {
	runs, err := st.List()
	if err != nil {
		return err
	}
	p := tea.NewProgram(newModel(runs, st.LoadScript), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
