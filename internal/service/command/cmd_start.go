package command

import (
	"context"

	"github.com/sandevgo/wishbot/internal/core"
)

const welcomeRu = `🧞 Wish Granter - Исполнитель Желаний

Помогаю находить и формулировать истинные желания через AI-диалог.

**Что умею:**
• Выявляю настоящие цели через беседу
• Превращаю мечты в конкретные планы
• Разбиваю большие желания на шаги
• Нахожу истинные мотивы

**Как работает:**
1\. Расскажите о желаниях
2\. Отвечу уточняющими вопросами
3\. Найдем истинное желание
4\. Составим план достижения`

const welcomeEn = `🧞 Wish Granter

I help discover and formulate true wishes through AI dialogue.

**What I do:**
• Uncover real goals through conversation
• Transform dreams into concrete plans
• Break down big wishes into steps
• Find true motivations

**How it works:**
1\. Tell me about your wishes
2\. I'll ask clarifying questions
3\. We'll find your true wish
4\. We'll create an achievement plan`

type StartCommand struct {
	formatter *ResponseFormatter
}

func NewStartCommand() *StartCommand {
	return &StartCommand{formatter: NewResponseFormatter()}
}

func (c *StartCommand) Name() string {
	return "start"
}

func (c *StartCommand) Description() string {
	return "Запустить бота"
}

func (c *StartCommand) AdminOnly() bool {
	return false
}

func (c *StartCommand) Execute(ctx context.Context, req core.CommandRequest) (string, error) {
	return c.formatter.Combine(welcomeRu, "", welcomeEn), nil
}
