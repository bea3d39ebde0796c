package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	responseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	roundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type demoState int

const (
	stateEditRequest demoState = iota
	stateShowOutcome
)

type demoModel struct {
	err      error
	last     *outcome
	inputs   []textinput.Model
	focusIdx int
	state    demoState
}

type servedMsg struct {
	err error
	res outcome
}

func newDemoModel() *demoModel {
	fields := []struct {
		prompt      string
		placeholder string
		value       string
	}{
		{"method: ", "GET", "GET"},
		{"path:   ", "/hello", "/hello"},
		{"body:   ", "request body", ""},
		{"chunks: ", "1", "1"},
	}

	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = f.prompt
		ti.Placeholder = f.placeholder
		ti.SetValue(f.value)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}

	return &demoModel{inputs: inputs}
}

func (m *demoModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *demoModel) serveRequest() tea.Msg {
	method := strings.TrimSpace(m.inputs[0].Value())
	path := strings.TrimSpace(m.inputs[1].Value())
	body := m.inputs[2].Value()

	chunks := 1
	fmt.Sscanf(m.inputs[3].Value(), "%d", &chunks)

	res, err := serveOnce(method, path, body, chunks, false, zap.NewNop(), nil)
	return servedMsg{res: res, err: err}
}

func (m *demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateEditRequest || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}

		case "enter":
			switch m.state {
			case stateEditRequest:
				return m, m.serveRequest
			case stateShowOutcome:
				m.state = stateEditRequest
				m.last = nil
				m.err = nil
			}

		case "tab":
			if m.state == stateEditRequest {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state == stateShowOutcome {
				m.state = stateEditRequest
				m.last = nil
				m.err = nil
			}
		}

	case servedMsg:
		m.err = msg.err
		res := msg.res
		m.last = &res
		m.state = stateShowOutcome
	}

	if m.state == stateEditRequest {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *demoModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Poll Loop Demo"))
	b.WriteString("\n\n")

	switch m.state {
	case stateEditRequest:
		b.WriteString("Compose a request:\n\n")
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter serve • ctrl+c quit"))

	case stateShowOutcome:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(labelStyle.Render("Response"))
			b.WriteString("\n")
			b.WriteString(responseStyle.Render(m.last.Response))
			b.WriteString("\n\n")
			b.WriteString(labelStyle.Render(fmt.Sprintf("Readiness rounds (%d)", m.last.Polls)))
			b.WriteString("\n")
			for _, r := range m.last.Rounds {
				b.WriteString(roundStyle.Render(fmt.Sprintf(
					"  round %d: polled %d, ready %v, resumed %d frame(s)",
					r.Seq, len(r.Polled), r.Ready, len(r.Resumed))))
				b.WriteString("\n")
			}
			if len(m.last.Rounds) == 0 {
				b.WriteString(helpStyle.Render("  none: the request completed without suspending"))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter compose another • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newDemoModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
