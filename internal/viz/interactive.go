package viz

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/san-kum/lagsim/internal/config"
	"github.com/san-kum/lagsim/internal/experiment"
	"github.com/san-kum/lagsim/internal/physics"
	"github.com/san-kum/lagsim/internal/sim"
)

const (
	stateMenu = iota
	stateConfig
	stateRunning
	stateSim
)

type fieldKind int

const (
	fieldParam fieldKind = iota
	fieldInitial
	fieldHorizon
)

type field struct {
	kind fieldKind
	key  string
}

func (f field) label() string {
	switch f.kind {
	case fieldHorizon:
		return "horizon"
	case fieldInitial:
		return f.key + "(0)"
	}
	return f.key
}

type choice struct {
	geometry, preset string
}

type runDoneMsg struct {
	tr  *sim.Trajectory
	err error
}

type model struct {
	state, cursor int
	choices       []choice
	cfg           *config.Config
	fields        []field
	fieldCursor   int
	editing       bool
	editBuf       string
	frames        int
	logger        *log.Logger
	err           error
	player        Player
}

// NewInteractiveApp lists every preset; choosing one opens its values for
// editing, and s runs it and hands the trajectory to a Player.
func NewInteractiveApp(frames int, logger *log.Logger) *model {
	var choices []choice
	for _, g := range config.Geometries() {
		for _, p := range config.ListPresets(g) {
			choices = append(choices, choice{geometry: g, preset: p})
		}
	}
	return &model{state: stateMenu, choices: choices, frames: frames, logger: logger}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case runDoneMsg:
		if msg.tr == nil || msg.tr.Len() == 0 {
			m.state, m.err = stateConfig, msg.err
			return m, nil
		}
		// a diverged run still replays up to where it stopped
		m.err = msg.err
		m.player = NewPlayer(msg.tr, m.frames)
		m.state = stateSim
		return m, m.player.Init()
	default:
		if m.state == stateSim {
			next, cmd := m.player.Update(msg)
			m.player = next.(Player)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateRunning:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case stateSim:
		if msg.String() == "esc" {
			m.state = stateConfig
			return m, nil
		}
		next, cmd := m.player.Update(msg)
		m.player = next.(Player)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.choices) == 0 {
			return m, nil
		}
		c := m.choices[m.cursor]
		m.cfg = config.GetPreset(c.geometry, c.preset)
		m.fields = fieldsFor(m.cfg)
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func fieldsFor(cfg *config.Config) []field {
	var fields []field
	for _, k := range sortedKeys(cfg.Params) {
		fields = append(fields, field{kind: fieldParam, key: k})
	}
	for _, k := range sortedKeys(cfg.Initial) {
		fields = append(fields, field{kind: fieldInitial, key: k})
	}
	return append(fields, field{kind: fieldHorizon})
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m model) value(f field) float64 {
	switch f.kind {
	case fieldParam:
		return m.cfg.Params[f.key]
	case fieldInitial:
		return m.cfg.Initial[f.key]
	}
	return m.cfg.Grid.Horizon
}

func (m *model) setValue(f field, v float64) {
	switch f.kind {
	case fieldParam:
		m.cfg.Params[f.key] = v
	case fieldInitial:
		m.cfg.Initial[f.key] = v
	case fieldHorizon:
		m.cfg.Grid.Horizon = v
	}
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				m.setValue(m.fields[m.fieldCursor], val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(m.fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", m.value(m.fields[m.fieldCursor]))
	case "left", "h":
		f := m.fields[m.fieldCursor]
		m.setValue(f, m.value(f)-0.1)
	case "right", "l":
		f := m.fields[m.fieldCursor]
		m.setValue(f, m.value(f)+0.1)
	case "s":
		m.state, m.err = stateRunning, nil
		return m, m.run()
	}
	return m, nil
}

func (m model) run() tea.Cmd {
	cfg := m.cfg.Clone()
	logger := m.logger
	return func() tea.Msg {
		tr, err := experiment.NewExperiment(cfg, logger).Run(context.Background())
		return runDoneMsg{tr: tr, err: err}
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateRunning:
		return "\n\n    " + Subtle.Render("deriving and integrating "+m.cfg.Geometry+"...") + "\n"
	case stateSim:
		view := m.player.View()
		if m.err != nil {
			view += "\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Incomplete).Render(m.err.Error())
		}
		return view
	}
	return ""
}

var (
	headStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + headStyle.Render("LAGSIM") + "\n    " + subStyle.Render("lagrangian mechanics from geometry") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, c := range m.choices {
		desc := ""
		if e, err := physics.Lookup(c.geometry); err == nil {
			desc = e.Description
		}
		if len(desc) > 32 {
			desc = desc[:29] + "..."
		}
		name := fmt.Sprintf("%-16s %-12s", c.geometry, c.preset)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), pickedStyle.Render(name), noteStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", idleStyle.Render(name), subStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + headStyle.Render(strings.ToUpper(m.cfg.Geometry)) + "\n    " + subStyle.Render(m.cfg.Solver) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, f := range m.fields {
		valStr := fmt.Sprintf("%10.4f", m.value(f))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), pickedStyle.Render(fmt.Sprintf("%-14s", f.label())), noteStyle.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", idleStyle.Render(fmt.Sprintf("%-14s", f.label())), subStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Incomplete).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "run", "esc", "back") + "\n")
	return b.String()
}

func RunInteractive(frames int, logger *log.Logger) error {
	_, err := tea.NewProgram(NewInteractiveApp(frames, logger), tea.WithAltScreen()).Run()
	return err
}
