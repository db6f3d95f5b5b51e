package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/wishbot/internal/core"
)

const helpText = `🤖 Wish Granter - Исполнитель Желаний

**Доступные команды:**
• /start - Показать приветствие
• /reset - Сбросить диалог и начать новый
• /who - Проверить безопасность соединения
• /myid - Получить ваш Telegram ID
• /help - Показать это сообщение

🔒 **Безопасность:**
• Все сообщения шифруются уникальным ключом при старте бота
• Используйте /who чтобы проверить безопасность в реальном времени

Подробная документация на %s
Просто напишите сообщение, чтобы начать диалог!`

type HelpCommand struct{}

func NewHelpCommand() *HelpCommand {
	return &HelpCommand{}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Показать справку"
}

func (c *HelpCommand) AdminOnly() bool {
	return false
}

func (c *HelpCommand) Execute(ctx context.Context, req core.CommandRequest) (string, error) {
	return fmt.Sprintf(helpText, core.BotRepositoryURL), nil
}
