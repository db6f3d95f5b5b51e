package installer

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

var modelCatalog = map[string][]item{
	"anthropic": {
		{id: "claude-3-5-sonnet-20240620", title: "Claude 3.5 Sonnet", desc: "Balanced quality and speed"},
		{id: "claude-3-5-haiku-20241022", title: "Claude 3.5 Haiku", desc: "Fast and cheap"},
		{id: "claude-3-opus-20240229", title: "Claude 3 Opus", desc: "Most capable, slowest"},
	},
	"openai": {
		{id: "gpt-4o", title: "GPT-4o", desc: "Flagship multimodal model"},
		{id: "gpt-4o-mini", title: "GPT-4o mini", desc: "Fast and cheap"},
	},
	"openrouter": {
		{id: "anthropic/claude-3.5-sonnet", title: "Claude 3.5 Sonnet", desc: "via OpenRouter"},
		{id: "openai/gpt-4o-mini", title: "GPT-4o mini", desc: "via OpenRouter"},
		{id: "meta-llama/llama-3.1-70b-instruct", title: "Llama 3.1 70B", desc: "via OpenRouter"},
	},
}

// ModelStep allows selection of the AI model for the chosen provider
type ModelStep struct {
	list  list.Model
	ready bool
}

func NewModelStep() Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select AI Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{list: l}
}

func (s *ModelStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *ModelStep) load(state *InstallState, width, height int) tea.Cmd {
	models := modelCatalog[state.Env.Provider]
	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = m
	}
	s.list.SetSize(width, height-4)
	s.ready = true
	return s.list.SetItems(items)
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		return s, s.load(state, width, height)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.list.SetSize(msg.Width, msg.Height-4)
	case tea.KeyMsg:
		if msg.String() == "enter" && s.list.FilterState() != list.Filtering {
			if selected, ok := s.list.SelectedItem().(item); ok {
				state.Env.Model = selected.id
				return nil, nil
			}
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if !s.ready {
		return "Loading models...\n"
	}
	return s.list.View()
}
