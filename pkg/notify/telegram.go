package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
)

// Telegram posts run updates to a chat via the bot API. Notifications are
// optional: without a token and chat id every call is a logged no-op, and
// delivery failures never propagate to the pipeline.
type Telegram struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
}

// NewTelegram creates a notifier; empty token or chat id disables it
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		token:   token,
		chatID:  chatID,
		apiBase: "https://api.telegram.org",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether credentials are configured
func (t *Telegram) Enabled() bool { return t.token != "" && t.chatID != "" }

// Send delivers a plain-text message, best effort
func (t *Telegram) Send(ctx context.Context, text string) {
	if !t.Enabled() {
		lgr.Printf("[WARN] telegram notification skipped, credentials not configured")
		return
	}

	payload, err := json.Marshal(map[string]string{"chat_id": t.chatID, "text": text})
	if err != nil {
		lgr.Printf("[WARN] failed to encode telegram payload: %v", err)
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		lgr.Printf("[WARN] failed to build telegram request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		lgr.Printf("[WARN] telegram delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		lgr.Printf("[WARN] telegram api returned %d: %s", resp.StatusCode, string(body))
	}
}

// Sendf formats and delivers a message
func (t *Telegram) Sendf(ctx context.Context, format string, args ...any) {
	t.Send(ctx, fmt.Sprintf(format, args...))
}
