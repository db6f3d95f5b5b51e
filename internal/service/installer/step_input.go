package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep collects one free-form value. validate may reject the value, in
// which case the step stays on screen with the error.
type InputStep struct {
	input    textinput.Model
	prompt   string
	fallback string
	validate func(string) error
	apply    func(state *InstallState, value string)
	err      error
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

func NewAPIKeyStep() Step {
	return &InputStep{
		input:    newInput("sk-...", true),
		prompt:   "Enter the API key of your AI provider:",
		validate: required("API key"),
		apply:    func(state *InstallState, v string) { state.SetAPIKey(v) },
	}
}

func NewTelegramTokenStep() Step {
	return &InputStep{
		input:    newInput("123456789:ABCDEF...", true),
		prompt:   "Enter your Telegram Bot Token:",
		validate: required("Bot token"),
		apply:    func(state *InstallState, v string) { state.Env.TelegramToken = v },
	}
}

func NewAdminStep() Step {
	return &InputStep{
		input:  newInput("123456789 (optional)", false),
		prompt: "Enter the Telegram User ID of the operator (send /myid to the bot to find it):",
		validate: func(v string) error {
			if v == "" {
				return nil
			}
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return fmt.Errorf("user id must be a number")
			}
			return nil
		},
		apply: func(state *InstallState, v string) {
			state.Env.AdminID, _ = strconv.ParseInt(v, 10, 64)
		},
	}
}

func NewSuperwishStep() Step {
	return &InputStep{
		input:    newInput("financial freedom", false),
		prompt:   "Which wish unlocks the private channel?",
		fallback: "financial freedom",
		apply:    func(state *InstallState, v string) { state.Env.Superwish = v },
	}
}

func NewChannelLinkStep() Step {
	return &InputStep{
		input:  newInput("https://t.me/+...", false),
		prompt: "Invitation link of the private channel:",
		validate: func(v string) error {
			if !strings.HasPrefix(v, "https://") {
				return fmt.Errorf("link must start with https://")
			}
			return nil
		},
		apply: func(state *InstallState, v string) { state.Env.PrivateChannelLink = v },
	}
}

func required(name string) func(string) error {
	return func(v string) error {
		if v == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			value := strings.TrimSpace(s.input.Value())
			if value == "" {
				value = s.fallback
			}
			if s.validate != nil {
				if s.err = s.validate(value); s.err != nil {
					return s, nil
				}
			}
			s.apply(state, value)
			return nil, nil
		}
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n" + s.input.View() + "\n\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}
