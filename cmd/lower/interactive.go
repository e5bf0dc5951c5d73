package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/wippyai/exprtree/dump"
	"github.com/wippyai/exprtree/internal/samples"
)

type modelState int

const (
	stateSelectScenario modelState = iota
	stateBrowseStages
	stateShowOutcomes
)

// chromeHeight is the number of lines around the viewport.
const chromeHeight = 5

type interactiveModel struct {
	err      error
	cfg      *config
	logger   *zap.Logger
	st       styles
	current  *lowered
	names    []string
	outcomes []samples.Outcome
	vp       viewport.Model
	selected int
	stage    int
	width    int
	height   int
	state    modelState
}

func newInteractiveModel(cfg *config, logger *zap.Logger, st styles) *interactiveModel {
	return &interactiveModel{
		cfg:    cfg,
		logger: logger,
		st:     st,
		names:  cfg.scenarios(),
		vp:     viewport.New(80, 20),
		state:  stateSelectScenario,
	}
}

type loweredMsg struct {
	err error
	l   *lowered
}

type outcomesMsg struct {
	outcomes []samples.Outcome
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) lowerSelected() tea.Msg {
	l, err := lowerScenario(context.Background(), m.names[m.selected], m.cfg, m.logger)
	return loweredMsg{l: l, err: err}
}

func (m *interactiveModel) runCalls() tea.Msg {
	return outcomesMsg{outcomes: m.current.calls(context.Background())}
}

func (m *interactiveModel) closeCurrent() {
	if m.current != nil {
		_ = m.current.close(context.Background())
		m.current = nil
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-chromeHeight, 1)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.closeCurrent()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectScenario && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelectScenario && m.selected < len(m.names)-1 {
				m.selected++
				return m, nil
			}

		case "left", "h":
			if m.state == stateBrowseStages && m.stage > 0 {
				m.stage--
				m.showStage()
			}
			return m, nil

		case "right", "l":
			if m.state == stateBrowseStages && m.stage < len(m.current.snaps)-1 {
				m.stage++
				m.showStage()
			}
			return m, nil

		case "enter":
			if m.state == stateSelectScenario && len(m.names) > 0 {
				m.err = nil
				return m, m.lowerSelected
			}

		case "r":
			if m.state == stateBrowseStages {
				return m, m.runCalls
			}

		case "esc":
			switch m.state {
			case stateBrowseStages:
				m.closeCurrent()
				m.state = stateSelectScenario
			case stateShowOutcomes:
				m.state = stateBrowseStages
				m.showStage()
			}
			return m, nil
		}

	case loweredMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.current = msg.l
		m.stage = len(m.current.snaps) - 1
		m.state = stateBrowseStages
		m.showStage()
		return m, nil

	case outcomesMsg:
		m.outcomes = msg.outcomes
		m.state = stateShowOutcomes
		var b strings.Builder
		for _, o := range m.outcomes {
			text := strings.TrimSuffix(o.String(), "\n")
			if o.Err != nil {
				b.WriteString(m.st.err.Render(text))
			} else {
				b.WriteString(m.st.value.Render(text))
			}
			b.WriteByte('\n')
		}
		m.vp.SetContent(b.String())
		m.vp.GotoTop()
		return m, nil
	}

	if m.state != stateSelectScenario {
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) showStage() {
	m.vp.SetContent(dump.String(m.current.snaps[m.stage].tree))
	m.vp.GotoTop()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(m.st.title.Render("Lower"))
	b.WriteString(" ")

	switch m.state {
	case stateSelectScenario:
		b.WriteString("scenarios\n\n")
		for i, name := range m.names {
			s, _ := samples.Lookup(name)
			line := fmt.Sprintf("%-20s %s", name, s.Description)
			if i == m.selected {
				b.WriteString(m.st.selected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString("\n")
			b.WriteString(m.st.err.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.st.help.Render("↑/↓ select • enter lower • q quit"))

	case stateBrowseStages:
		b.WriteString(m.current.prepared.Name)
		b.WriteString("\n")
		b.WriteString(m.stageBar())
		b.WriteString("\n\n")
		b.WriteString(m.vp.View())
		b.WriteString("\n")
		b.WriteString(m.st.help.Render("←/→ stage • ↑/↓ scroll • r run • esc back • q quit"))

	case stateShowOutcomes:
		b.WriteString(m.current.prepared.Name)
		b.WriteString("\n")
		b.WriteString(m.st.stage.Render("outcomes"))
		b.WriteString("\n\n")
		b.WriteString(m.vp.View())
		b.WriteString("\n")
		b.WriteString(m.st.help.Render("esc back • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) stageBar() string {
	parts := make([]string, len(m.current.snaps))
	for i, snap := range m.current.snaps {
		if i == m.stage {
			parts[i] = m.st.selected.Render(" " + snap.name + " ")
		} else {
			parts[i] = " " + snap.name + " "
		}
	}
	return strings.Join(parts, m.st.help.Render("│"))
}

func runInteractive(cfg *config, logger *zap.Logger, st styles) error {
	p := tea.NewProgram(newInteractiveModel(cfg, logger, st), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
