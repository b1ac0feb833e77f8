package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/metrics"
	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
)

// sendTimeout bounds one notification attempt.
const sendTimeout = 5 * time.Second

// Notifier delivers an alert event to an external messaging channel.
// Best-effort: the pipeline logs a failure and moves on, never retries.
type Notifier interface {
	Send(ctx context.Context, event models.AlertEvent) error
}

// Telegram posts alert messages to a bot chat.
type Telegram struct {
	chatID string
	url    string
	client *http.Client
}

// TelegramConfig holds notifier configuration.
type TelegramConfig struct {
	Token  string
	ChatID string

	// BaseURL overrides the bot API endpoint (tests)
	BaseURL string
}

// NewTelegram builds a Telegram notifier.
func NewTelegram(cfg TelegramConfig) *Telegram {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.telegram.org"
	}
	return &Telegram{
		chatID: cfg.ChatID,
		url:    fmt.Sprintf("%s/bot%s/sendMessage", base, cfg.Token),
		client: &http.Client{Timeout: sendTimeout},
	}
}

// sendMessageRequest is the bot API payload.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts one fixed-template HTML message. Timeout-bounded; any failure
// comes back as an error for the caller to log.
func (t *Telegram) Send(ctx context.Context, event models.AlertEvent) error {
	text := fmt.Sprintf(
		"🚨 <b>HARVEST GUARD ALERT</b> 🚨\n\n"+
			"%s <b>%s Critical: %s</b>\n"+
			"📍 Location: %s\n"+
			"🕒 Time: %s",
		event.SeverityIcon, event.MetricName, event.Value,
		event.LocationLabel,
		event.EmittedAt.Format("15:04:05"),
	)

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		metrics.NotifyTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("send alert: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.NotifyTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("send alert: bot API status %d", resp.StatusCode)
	}

	metrics.NotifyTotal.WithLabelValues("success").Inc()
	return nil
}
