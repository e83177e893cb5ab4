// Package notify pushes generated summaries to external channels.
package notify

import (
	"context"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/calebmoore/tweetwatch/pkg/db/models"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram message bodies are capped upstream at 4096 characters
const maxMessageLength = 4000

// TelegramNotifier delivers summaries to a Telegram chat through the Bot
// API
type TelegramNotifier struct {
	client *resty.Client
	chatID string
	logger *logrus.Logger
}

// NewTelegramFromEnv builds a notifier from TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID. Returns (nil, nil) when the token is unset; delivery
// is optional and a missing token just disables it.
func NewTelegramFromEnv(logger *logrus.Logger) (*TelegramNotifier, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		logger.Info("TELEGRAM_BOT_TOKEN not set, summary delivery disabled")
		return nil, nil
	}

	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if chatID == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	apiBase := os.Getenv("TELEGRAM_API_BASE")
	if apiBase == "" {
		apiBase = telegramAPIBase
	}

	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", apiBase, token)).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &TelegramNotifier{
		client: client,
		chatID: chatID,
		logger: logger,
	}, nil
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendSummary posts a summary to the configured chat
func (n *TelegramNotifier) SendSummary(ctx context.Context, period models.SummaryPeriod, content string) error {
	text := truncateMessage(fmt.Sprintf("%s\n\n%s", headerFor(period), content))

	var result telegramResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": n.chatID,
			"text":    text,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram rejected message (status %d): %s", resp.StatusCode(), result.Description)
	}

	n.logger.WithFields(logrus.Fields{
		"period":  period,
		"chat_id": n.chatID,
	}).Info("Summary delivered to Telegram")

	return nil
}

// truncateMessage caps the message at maxMessageLength bytes, backing off
// to a rune boundary so the result stays valid UTF-8.
func truncateMessage(text string) string {
	if len(text) <= maxMessageLength {
		return text
	}
	cut := maxMessageLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func headerFor(period models.SummaryPeriod) string {
	switch period {
	case models.PeriodShort:
		return "Hourly update"
	case models.PeriodMedium:
		return "12-hour digest"
	case models.PeriodLong:
		return "Daily digest"
	}
	return "Update"
}
