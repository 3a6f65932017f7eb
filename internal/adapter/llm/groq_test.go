package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, baseURL string) *GroqClient {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "test-key")
	c, err := NewGroqClient(Config{BaseURL: baseURL, Model: "test-model", Temperature: 0.7})
	if err != nil {
		t.Fatalf("NewGroqClient: %v", err)
	}
	return c
}

func TestGenerateWithSystemSendsBothMessages(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"an itinerary"}}]}`))
	}))
	defer server.Close()

	out, err := newTestClient(t, server.URL).GenerateWithSystem("you plan trips", "plan Paris")
	if err != nil {
		t.Fatalf("GenerateWithSystem: %v", err)
	}
	if out != "an itinerary" {
		t.Errorf("unexpected output %q", out)
	}

	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != "you plan trips" {
		t.Errorf("unexpected system message %+v", got.Messages[0])
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "plan Paris" {
		t.Errorf("unexpected user message %+v", got.Messages[1])
	}
	if got.Model != "test-model" {
		t.Errorf("unexpected model %q", got.Model)
	}
}

func TestGenerateReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Generate("hello")
	if err == nil {
		t.Fatal("expected error from API error payload")
	}
}

func TestNewGroqClientRequiresAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	if _, err := NewGroqClient(Config{}); err == nil {
		t.Fatal("expected error when API key env is unset")
	}
}
