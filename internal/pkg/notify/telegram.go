// Package notify sends run notifications to Telegram.
package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
)

// TelegramNotifier sends pipeline run summaries to a chat. A nil notifier
// is valid and does nothing, so callers never branch on config.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// NotifyRun sends a summary of a finished run.
func (n *TelegramNotifier) NotifyRun(summary models.RunSummary) {
	if n == nil {
		return
	}
	n.send(FormatRunSummary(summary))
}

// NotifyFailure reports a run that aborted before producing records.
func (n *TelegramNotifier) NotifyFailure(runID string, err error) {
	if n == nil {
		return
	}
	n.send(fmt.Sprintf("❌ Lines pipeline failed\nRun: %s\nError: %v", runID, err))
}

func (n *TelegramNotifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		// Notifications are best effort; a Telegram outage must not fail a run.
		slog.Warn("Failed to send telegram notification", "error", err)
	}
}

// FormatRunSummary renders the run summary message.
func FormatRunSummary(s models.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Lines pipeline finished\n")
	fmt.Fprintf(&b, "Run: %s\n", s.RunID)
	fmt.Fprintf(&b, "Duration: %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Players: %d fetched, %d decoded, %d failed\n", s.PlayersFetched, s.PlayersDecoded, s.PlayersFailed)
	fmt.Fprintf(&b, "Records: %d (categories: %d)", s.Records, s.Categories)
	return b.String()
}
