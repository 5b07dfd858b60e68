package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mshibata/chienowa/config"
)

func TestOpenAIClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Temperature != 0.5 || req.Model != "gpt-4o" {
			t.Errorf("request fields not forwarded: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello"}},
			},
			"usage": map[string]int{
				"prompt_tokens":     12,
				"completion_tokens": 3,
				"total_tokens":      15,
			},
		})
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key", srv.URL, 5*time.Second)
	got, err := client.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-4o",
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Temperature: 0.5,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "hello" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
	if got.Usage.TotalTokens != 15 || got.Usage.PromptTokens != 12 {
		t.Fatalf("usage not parsed: %+v", got.Usage)
	}
}

func TestOpenAIClient_CompletionsPathAppended(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	// The configured base URL is an API root, as in the config default
	// "https://api.openai.com/v1"; the client must append the chat
	// completions path rather than post to the root itself.
	for _, base := range []string{srv.URL + "/v1", srv.URL + "/v1/"} {
		client := NewOpenAIClient("k", base, 5*time.Second)
		if _, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"}); err != nil {
			t.Fatalf("unexpected error for base %q: %v", base, err)
		}
		if gotPath != "/v1/chat/completions" {
			t.Fatalf("base %q posted to %q, want /v1/chat/completions", base, gotPath)
		}
	}
}

func TestOpenAIClient_DefaultBaseURLMatchesConfigDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHIENOWA_LLM_API_KEY", "sk-test")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.BaseURL != defaultOpenAIBaseURL {
		t.Fatalf("config default base URL %q diverged from client default %q",
			cfg.LLM.BaseURL, defaultOpenAIBaseURL)
	}
	client := NewOpenAIClient("k", cfg.LLM.BaseURL, time.Second)
	if client.endpoint != defaultOpenAIBaseURL+chatCompletionsPath {
		t.Fatalf("default wiring targets %q, want %q", client.endpoint, defaultOpenAIBaseURL+chatCompletionsPath)
	}
}

func TestOpenAIClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("k", srv.URL, 5*time.Second)
	_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"})
	if err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("k", srv.URL, 5*time.Second)
	_, err := client.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"})
	if err == nil {
		t.Fatalf("expected error on empty choices")
	}
}
