package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClient_WithAPIKey(t *testing.T) {
	client, err := NewClient(ClientConfig{
		APIKey: "test-key-123",
		Model:  anthropic.ModelClaudeHaiku4_5_20251001,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Model() != anthropic.ModelClaudeHaiku4_5_20251001 {
		t.Errorf("Model = %q, want %q", client.Model(), anthropic.ModelClaudeHaiku4_5_20251001)
	}
	if client.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}

func TestNewClient_DefaultModel(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Model() != DefaultModel {
		t.Errorf("Model = %q, want %q", client.Model(), DefaultModel)
	}
	if client.maxTokens != DefaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", client.maxTokens, DefaultMaxTokens)
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClient(ClientConfig{})
	if err == nil {
		t.Fatal("NewClient should fail without API key")
	}
	expected := "ANTHROPIC_API_KEY environment variable is not set"
	if err.Error() != expected {
		t.Errorf("Error = %q, want %q", err.Error(), expected)
	}
}

func TestNewClient_WithEnvVar(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-test-key")

	if _, err := NewClient(ClientConfig{}); err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	tests := []struct {
		in   anthropic.Model
		want anthropic.Model
	}{
		{anthropic.ModelClaudeSonnet4_5_20250929, "us.anthropic.claude-sonnet-4-5-20250929-v1:0"},
		{anthropic.ModelClaudeHaiku4_5_20251001, "us.anthropic.claude-haiku-4-5-20251001-v1:0"},
		{"custom-model", "custom-model"},
	}
	for _, tt := range tests {
		if got := translateModelForBedrock(tt.in); got != tt.want {
			t.Errorf("translateModelForBedrock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// messagesServer answers /v1/messages with the given content blocks.
func messagesServer(t *testing.T, status int, content string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if gotPrompt != nil {
			body, _ := io.ReadAll(r.Body)
			var req struct {
				Messages []struct {
					Content []struct {
						Text string `json:"text"`
					} `json:"content"`
				} `json:"messages"`
			}
			if err := json.Unmarshal(body, &req); err == nil && len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
				*gotPrompt = req.Messages[0].Content[0].Text
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
			return
		}
		_, _ = io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": `+content+`,
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 7}
		}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	var prompt string
	srv := messagesServer(t, http.StatusOK, `[{"type":"text","text":"Hello "},{"type":"text","text":"there"}]`, &prompt)

	client, err := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	got, err := client.Complete(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Hello there" {
		t.Errorf("Complete = %q, want %q", got, "Hello there")
	}
	if prompt != "classify this" {
		t.Errorf("prompt sent = %q", prompt)
	}

	in, out := client.Tracker().Total()
	if in != 12 || out != 7 {
		t.Errorf("tracked tokens = (%d, %d), want (12, 7)", in, out)
	}
	if client.Tracker().Calls() != 1 {
		t.Errorf("Calls = %d, want 1", client.Tracker().Calls())
	}
}

func TestComplete_NoText(t *testing.T) {
	srv := messagesServer(t, http.StatusOK, `[]`, nil)

	client, err := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Complete(context.Background(), "x")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("err = %v, want ErrEmptyCompletion", err)
	}
}

func TestComplete_APIError(t *testing.T) {
	srv := messagesServer(t, http.StatusInternalServerError, "", nil)

	client, err := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error from failing API")
	}
	if client.Tracker().Calls() != 0 {
		t.Errorf("failed calls should not be tracked")
	}
}

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.Add(1_000_000, 0)
	tracker.Add(0, 1_000_000)

	in, out := tracker.Total()
	if in != 1_000_000 || out != 1_000_000 {
		t.Errorf("Total = (%d, %d)", in, out)
	}
	if tracker.Calls() != 2 {
		t.Errorf("Calls = %d, want 2", tracker.Calls())
	}
	if cost := tracker.Cost(); cost != 18.0 {
		t.Errorf("Cost = %v, want 18", cost)
	}
}
