package chat

import "fmt"

const (
	thinkingText     = "🤔 Thinking..."
	apologyText      = "Sorry, I encountered an error processing your request. Please try again later."
	unauthorizedText = "The bot administrator needs to check the AI provider API key configuration."
)

const superwishRu = `🌟 **Поздравляем!** 🌟

Ваше желание особенное! Приглашаем вас в наш эксклюзивный канал, где вы найдете дополнительные возможности и поддержку для достижения ваших целей.

👇 **Присоединяйтесь к нашему приватному каналу:**
%s

💫 Здесь вас ждут эксклюзивные материалы и персональная поддержка!`

const superwishEn = `🌟 **Congratulations!** 🌟

Your wish is special! We invite you to our exclusive channel where you will find additional opportunities and support to achieve your goals.

👇 **Join our private channel:**
%s

💫 Here you will find exclusive materials and personal support!`

// superwishMessages returns the congratulation in Russian, then English.
func superwishMessages(link string) []string {
	return []string{
		fmt.Sprintf(superwishRu, link),
		fmt.Sprintf(superwishEn, link),
	}
}
