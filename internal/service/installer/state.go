package installer

// EnvFile is what the wizard writes to <runtime>/.env. Tags match the keys
// read by the config package.
type EnvFile struct {
	Provider         string `env:"LLM_PROVIDER"`
	Model            string `env:"LLM_MODEL"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`

	TelegramToken string `env:"TELEGRAM_TOKEN"`
	AdminID       int64  `env:"ADMIN_TELEGRAM_ID"`

	Superwish          string `env:"SUPERWISH"`
	PrivateChannelLink string `env:"PRIVATE_CHANNEL_LINK"`
	HistoryBackend     string `env:"HISTORY_BACKEND"`
}

type InstallState struct {
	Env EnvFile
}

func NewInstallState() *InstallState {
	return &InstallState{}
}

// SetAPIKey stores key under the variable of the chosen provider.
func (s *InstallState) SetAPIKey(key string) {
	switch s.Env.Provider {
	case "openai":
		s.Env.OpenAIAPIKey = key
	case "openrouter":
		s.Env.OpenRouterAPIKey = key
	default:
		s.Env.AnthropicAPIKey = key
	}
}
