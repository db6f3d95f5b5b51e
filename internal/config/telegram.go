package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/wishbot/pkg/log"
)

// placeholderAdminID is the value shipped in example .env files.
const placeholderAdminID = 123456789

type TelegramConfig struct {
	Token   string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	AdminID int64  `env:"ADMIN_TELEGRAM_ID"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

// GetAdminID returns the configured operator, or 0 if unset.
func (c TelegramConfig) GetAdminID() int64 {
	if c.AdminID == placeholderAdminID {
		return 0
	}
	return c.AdminID
}
