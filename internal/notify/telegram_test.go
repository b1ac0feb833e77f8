package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/znodanilo2017-byte/harvest-guard/internal/models"
)

func frostEvent() models.AlertEvent {
	return models.AlertEvent{
		MetricName:    "Low Temperature",
		Value:         "1.5°C",
		SeverityIcon:  "❄️",
		LocationLabel: "Lviv Field 1",
		EmittedAt:     time.Date(2025, 12, 2, 12, 30, 45, 0, time.UTC),
	}
}

func TestSendPostsBotMessage(t *testing.T) {
	var gotPath string
	var gotReq sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	n := NewTelegram(TelegramConfig{
		Token:   "123:abc",
		ChatID:  "42",
		BaseURL: srv.URL,
	})

	if err := n.Send(context.Background(), frostEvent()); err != nil {
		t.Fatal(err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotReq.ChatID != "42" {
		t.Errorf("chat_id = %q", gotReq.ChatID)
	}
	if gotReq.ParseMode != "HTML" {
		t.Errorf("parse_mode = %q", gotReq.ParseMode)
	}
	for _, fragment := range []string{
		"HARVEST GUARD ALERT",
		"❄️ <b>Low Temperature Critical: 1.5°C</b>",
		"📍 Location: Lviv Field 1",
		"🕒 Time: 12:30:45",
	} {
		if !strings.Contains(gotReq.Text, fragment) {
			t.Errorf("message missing %q:\n%s", fragment, gotReq.Text)
		}
	}
}

func TestSendNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewTelegram(TelegramConfig{Token: "bad", ChatID: "42", BaseURL: srv.URL})
	if err := n.Send(context.Background(), frostEvent()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestSendNetworkFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	n := NewTelegram(TelegramConfig{Token: "t", ChatID: "42", BaseURL: srv.URL})
	if err := n.Send(context.Background(), frostEvent()); err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}
}
