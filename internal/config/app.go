package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/sandevgo/wishbot/pkg/log"
)

const (
	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"
	HistoryBackendBadger = "badger"
)

var validate = validator.New()

type AppConfig struct {
	RuntimePath string `env:"WISH_RUNTIME_PATH" envDefault:".wishbot"`

	// History storage
	HistoryBackend string `env:"HISTORY_BACKEND" envDefault:"file" validate:"oneof=file sqlite badger"`
	HistoryLimit   int    `env:"HISTORY_LIMIT" envDefault:"0" validate:"gte=0,ne=1"`

	// Throttling
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s" validate:"gt=0"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"10" validate:"gte=1"`
	ThrottleIdleTTL   time.Duration `env:"THROTTLE_IDLE_TTL" envDefault:"10m" validate:"gt=0"`

	// Wishes
	Superwish          string `env:"SUPERWISH" envDefault:"financial freedom" validate:"required"`
	PrivateChannelLink string `env:"PRIVATE_CHANNEL_LINK" envDefault:"https://t.me/your_private_channel" validate:"required,url"`

	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"60s" validate:"gt=0"`
	NotifyOnReboot bool          `env:"NOTIFY_ON_REBOOT" envDefault:"true"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	if err := c.Validate(); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("invalid App config")
	}
	c.RuntimePath = absRuntimePath(c.RuntimePath)
	return c
}

// Validate checks value ranges env.Parse cannot express.
func (c AppConfig) Validate() error {
	return validate.Struct(c)
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetHistoryPath() string {
	return filepath.Join(c.RuntimePath, "data", "chat_history")
}

// GetConsoleHistoryPath keeps terminal sessions apart from Telegram users.
func (c AppConfig) GetConsoleHistoryPath() string {
	return filepath.Join(c.RuntimePath, "data", "console_history")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "wishbot.db")
}

func (c AppConfig) GetBadgerPath() string {
	return filepath.Join(c.RuntimePath, "data", "badger")
}

func (c AppConfig) GetMessageLogPath() string {
	return filepath.Join(c.RuntimePath, "data", "message_logs", "message_timestamps.log")
}

func (c AppConfig) GetInputHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}
