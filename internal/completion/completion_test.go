package completion_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/completion"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newClient(t *testing.T, handler http.HandlerFunc) completion.System {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &completion.Config{
		BaseURL:     srv.URL,
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		MaxTokens:   800,
		Timeout:     "5s",
	}
	return completion.NewClient(cfg, discard)
}

func TestCompleteSuccess(t *testing.T) {
	var gotReq map[string]any

	sys := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("auth = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"content": `{"foi_absolvido":true}`},
			}},
		})
	})

	content, err := sys.Complete(context.Background(), completion.Request{
		System: "analista",
		User:   "decisões",
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if content != `{"foi_absolvido":true}` {
		t.Errorf("content = %q", content)
	}

	if gotReq["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", gotReq["model"])
	}
	format, _ := gotReq["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", gotReq["response_format"])
	}
	messages, _ := gotReq["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
}

func TestCompleteErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, completion.ErrAuthRejected},
		{"rate limited", http.StatusTooManyRequests, completion.ErrRateLimited},
		{"server error", http.StatusServiceUnavailable, completion.ErrUnavailable},
		{"unexpected status", http.StatusBadRequest, completion.ErrCompletion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := sys.Complete(context.Background(), completion.Request{User: "x"})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	sys := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := sys.Complete(context.Background(), completion.Request{User: "x"})
	if !errors.Is(err, completion.ErrEmptyChoice) {
		t.Errorf("error = %v, want ErrEmptyChoice", err)
	}
}

func TestConfigEndpoint(t *testing.T) {
	cfg := &completion.Config{BaseURL: "https://api.openai.com/v1/"}
	if got := cfg.Endpoint(); got != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("Endpoint = %q", got)
	}
}
