// Optional Telegram notifications. A nil *Bot is a no-op, so callers
// never have to branch on whether notifications are configured.

package notify

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobapply-automation/internal/coordinator"
	"go-jobapply-automation/internal/orchestrator"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewBot returns nil (no error) when token is empty: notifications are
// simply off.
func NewBot(token string, chatID int64) (*Bot, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// SendRunReport posts one message summarizing a whole coordinator run.
// Failures are logged, never returned: a broken bot must not affect
// the run itself.
func (b *Bot) SendRunReport(run coordinator.RunReport) {
	if b == nil {
		return
	}

	msgText := fmt.Sprintf("📋 *Run finished* \\(%s\\)\n", escapeMarkdown(run.FinishedAt.Format("2006-01-02 15:04")))
	for _, rep := range run.Platforms {
		msgText += fmt.Sprintf("%s *%s* — %s\n", statusEmoji(rep.Status), escapeMarkdown(rep.Platform), escapeMarkdown(string(rep.Status)))
		msgText += escapeMarkdown(fmt.Sprintf("   ✅ %d applied, ⏭️ %d seen, 🚫 %d filtered, ❌ %d failed",
			rep.Succeeded, rep.AlreadyApplied, rep.FilteredOut, rep.Failed)) + "\n"
		if rep.Err != "" {
			msgText += escapeMarkdown("   ⚠️ "+rep.Err) + "\n"
		}
	}

	msg := tgbotapi.NewMessage(b.chatID, msgText)
	msg.ParseMode = "MarkdownV2"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("⚠️ telegram: failed to send run report: %v", err)
	}
}

func (b *Bot) SendStatus(message string) {
	if b == nil {
		return
	}
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("⚠️ telegram: failed to send status: %v", err)
	}
}

func statusEmoji(s orchestrator.Status) string {
	switch s {
	case orchestrator.StatusCompleted:
		return "✅"
	case orchestrator.StatusLimitStopped:
		return "🛑"
	case orchestrator.StatusAuthAborted:
		return "🔑"
	case orchestrator.StatusCancelled:
		return "⏹️"
	default:
		return "💥"
	}
}
