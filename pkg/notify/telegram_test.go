package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegram_Send(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tg := NewTelegram("test-token", "12345")
	tg.apiBase = server.URL

	tg.Send(context.Background(), "run finished: 12 listings")
	assert.Equal(t, "12345", got["chat_id"])
	assert.Equal(t, "run finished: 12 listings", got["text"])
}

func TestTelegram_SendDisabled(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	tg := NewTelegram("", "")
	tg.apiBase = server.URL

	assert.False(t, tg.Enabled())
	tg.Send(context.Background(), "should not be delivered")
	assert.False(t, called)
}

func TestTelegram_SendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"bot was blocked"}`))
	}))
	defer server.Close()

	tg := NewTelegram("test-token", "12345")
	tg.apiBase = server.URL

	// failures are swallowed, never propagated
	tg.Send(context.Background(), "message")
}

func TestTelegram_SendUnreachable(t *testing.T) {
	tg := NewTelegram("test-token", "12345")
	tg.apiBase = "http://127.0.0.1:1"

	tg.Send(context.Background(), "message")
}

func TestTelegram_Sendf(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	tg := NewTelegram("test-token", "12345")
	tg.apiBase = server.URL

	tg.Sendf(context.Background(), "stage %s failed after %d attempts", "harvest", 3)
	assert.Equal(t, "stage harvest failed after 3 attempts", got["text"])
}
