package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	value string
	label string
}

// ChoiceStep lets the user pick one of a fixed set of values
type ChoiceStep struct {
	title   string
	choices []choice
	cursor  int
	apply   func(state *InstallState, value string)
}

func NewProviderStep() Step {
	return &ChoiceStep{
		title: "Select your AI Provider:",
		choices: []choice{
			{value: "anthropic", label: "Anthropic"},
			{value: "openai", label: "OpenAI"},
			{value: "openrouter", label: "OpenRouter"},
		},
		apply: func(state *InstallState, value string) { state.Env.Provider = value },
	}
}

func NewHistoryBackendStep() Step {
	return &ChoiceStep{
		title: "Where should encrypted chat history be stored?",
		choices: []choice{
			{value: "file", label: "Files (one blob per user)"},
			{value: "sqlite", label: "SQLite database"},
			{value: "badger", label: "Badger key-value store"},
		},
		apply: func(state *InstallState, value string) { state.Env.HistoryBackend = value },
	}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			s.apply(state, s.choices[s.cursor].value)
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
