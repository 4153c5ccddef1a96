package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-blueprint-be/pkg/llm"
)

func TestChatSendsTokenCeiling(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: `{"ok":true}`},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	out, err := p.Chat(context.Background(),
		[]llm.Message{
			{Role: "system", Content: "You produce JSON."},
			{Role: "user", Content: "section 1"},
		},
		llm.WithMaxTokens(2048),
	)
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("response = %q", out)
	}
	if got.Options == nil || got.Options.NumPredict != 2048 {
		t.Errorf("num_predict not propagated, got %+v", got.Options)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("messages not forwarded as-is: %+v", got.Messages)
	}
	if got.Stream {
		t.Error("stream should be disabled")
	}
}

func TestChatPropagatesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing-model")
	_, err := p.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
