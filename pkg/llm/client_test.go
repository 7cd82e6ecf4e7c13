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
	"time"

	"github.com/sirupsen/logrus"
)

type stubProvider struct {
	reply string
	err   error
	last  CompletionRequest
}

func (s *stubProvider) Complete(_ context.Context, req CompletionRequest) (string, error) {
	s.last = req
	return s.reply, s.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestClientSubmitUsesFixedModel(t *testing.T) {
	provider := &stubProvider{reply: "hello"}
	client := NewClient(provider, "", 0, time.Second, quietLogger())

	got := client.Submit(context.Background(), "prompt text")
	if got != "hello" {
		t.Errorf("Expected 'hello', got '%s'", got)
	}

	if provider.last.Model != DefaultModel {
		t.Errorf("Expected model '%s', got '%s'", DefaultModel, provider.last.Model)
	}

	if provider.last.Temperature != DefaultTemperature {
		t.Errorf("Expected temperature %v, got %v", DefaultTemperature, provider.last.Temperature)
	}

	if provider.last.Prompt != "prompt text" {
		t.Errorf("Expected prompt to be passed through, got '%s'", provider.last.Prompt)
	}
}

func TestClientSubmitSwallowsErrors(t *testing.T) {
	provider := &stubProvider{reply: "partial", err: errors.New("quota exceeded")}
	client := NewClient(provider, "gemini-1.5-pro", 0.2, 0, quietLogger())

	got := client.Submit(context.Background(), "prompt")
	if got != "" {
		t.Errorf("Expected empty string on failure, got '%s'", got)
	}
}

func TestGeminiProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}

		if r.URL.Path != "/models/gemini-1.5-flash:generateContent" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		if r.Header.Get("X-Goog-Api-Key") != "test-key" {
			t.Errorf("Expected API key header, got '%s'", r.Header.Get("X-Goog-Api-Key"))
		}

		var body geminiRequest
		err := json.NewDecoder(r.Body).Decode(&body)
		if err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}

		if body.GenerationConfig.Temperature != 0.4 {
			t.Errorf("Expected temperature 0.4, got %v", body.GenerationConfig.Temperature)
		}

		if body.Contents[0].Parts[0].Text != "Say hi" {
			t.Errorf("Unexpected prompt: %s", body.Contents[0].Parts[0].Text)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi "},{"text":"there"}]}}]}`))
	}))
	defer server.Close()

	provider := NewGeminiProvider("test-key", server.URL, 5*time.Second)
	text, err := provider.Complete(context.Background(), CompletionRequest{
		Prompt:      "Say hi",
		Model:       "gemini-1.5-flash",
		Temperature: 0.4,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if text != "Hi there" {
		t.Errorf("Expected 'Hi there', got '%s'", text)
	}
}

func TestGeminiProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	provider := NewGeminiProvider("test-key", server.URL, 5*time.Second)
	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p", Model: "m"})
	if err == nil {
		t.Fatal("Expected error for 429 response")
	}

	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status in error, got: %v", err)
	}
}

func TestOpenAIProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"from openai"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", server.URL+"/v1")
	text, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p", Model: "gpt-4o-mini", Temperature: 0.4})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if text != "from openai" {
		t.Errorf("Expected 'from openai', got '%s'", text)
	}
}

func TestAnthropicProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("Expected API key header, got '%s'", r.Header.Get("X-Api-Key"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-20250514","content":[{"type":"text","text":"from claude"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer server.Close()

	provider := NewAnthropicProvider("test-key", server.URL)
	text, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p", Model: "claude-sonnet-4-20250514", Temperature: 0.4})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if text != "from claude" {
		t.Errorf("Expected 'from claude', got '%s'", text)
	}
}
