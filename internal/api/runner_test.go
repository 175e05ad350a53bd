package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestRunner(t *testing.T, handler http.HandlerFunc) *Runner {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	retries := 0
	client, err := NewClient(ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: &retries,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return NewRunner(client)
}

func TestRunner_Complete(t *testing.T) {
	var body map[string]any
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path = %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-20250514",
  "content": [{"type": "text", "text": "PASS\n"}, {"type": "text", "text": "All aligned."}],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 12, "output_tokens": 7}
}`)
	})

	got, err := runner.Complete(context.Background(), "You are a reviewer.", "Review this.")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "PASS\nAll aligned." {
		t.Errorf("Complete() = %q", got)
	}

	if body["temperature"] != 0.2 {
		t.Errorf("temperature = %v, want 0.2", body["temperature"])
	}
	if _, ok := body["system"]; !ok {
		t.Error("system prompt was not sent")
	}

	input, output := runner.Client().Tracker().Total()
	if input != 12 || output != 7 {
		t.Errorf("tracked tokens = %d/%d, want 12/7", input, output)
	}
}

func TestRunner_CompleteAPIError(t *testing.T) {
	runner := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"type": "error", "error": {"type": "invalid_request_error", "message": "bad model"}}`)
	})

	_, err := runner.Complete(context.Background(), "", "hello")
	if err == nil {
		t.Fatal("Complete() error = nil, want API error")
	}
	if !strings.Contains(err.Error(), "API call failed") {
		t.Errorf("error = %v", err)
	}
	if runner.Client().Tracker().Calls() != 0 {
		t.Error("failed call was tracked")
	}
}
