package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agencyos/meeting-scribe/pkg/config"
)

func newTestClient(baseURL string) *ClaudeClient {
	return NewClaudeClient(&config.AnthropicConfig{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 1024,
		Timeout:   5 * time.Second,
	})
}

func messagesResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": text}},
		"usage":   map[string]int{"input_tokens": 10, "output_tokens": 5},
	}
}

func TestProcess_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != messagesPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Fatal("missing api key header")
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Fatal("missing version header")
		}
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "analyze this" {
			t.Fatalf("unexpected messages %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(messagesResponse(`{"ok": true}`))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	out, err := client.Process(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"ok": true}` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestProcess_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(messagesResponse("recovered"))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	out, err := client.Process(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "recovered" {
		t.Fatalf("unexpected output %q", out)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestProcess_UnauthorizedIsPermanent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	if _, err := client.Process(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("401 must not be retried, got %d calls", calls)
	}
}

func TestProcess_ContextCancelStopsRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	client := newTestClient(ts.URL)
	start := time.Now()
	if _, err := client.Process(ctx, "prompt"); err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("retries should stop at the context deadline")
	}
}

func TestProcess_EmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"content": []interface{}{}})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	if _, err := client.Process(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty content")
	}
}
