package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embeddingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenAIEmbedder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("TEST_EMBED_KEY", "test-key")
	emb, err := NewOpenAIEmbedder("TEST_EMBED_KEY", "text-embedding-3-small", Options{
		BaseURL:   srv.URL,
		Dimension: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	return srv, emb
}

func TestEmbedPreservesInputOrder(t *testing.T) {
	// Respond with embeddings deliberately out of order; the index
	// field must restore input order.
	_, emb := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}

		resp := embeddingResponse{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{
				Index:     i,
				Embedding: []float32{float32(i), 0, 0},
			})
		}
		json.NewEncoder(w).Encode(resp)
	})

	vectors, err := emb.Embed([]string{"paris", "roma", "madrid"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for i, vec := range vectors {
		if vec[0] != float32(i) {
			t.Errorf("vector %d out of order: got leading component %f", i, vec[0])
		}
	}
}

func TestEmbedServerError(t *testing.T) {
	_, emb := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	})

	if _, err := emb.Embed([]string{"paris"}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	_, emb := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	vectors, err := emb.Embed(nil)
	if err != nil {
		t.Fatal(err)
	}
	if vectors != nil {
		t.Errorf("expected nil result, got %v", vectors)
	}
}

func TestNewOpenAIEmbedderMissingKey(t *testing.T) {
	t.Setenv("TEST_EMBED_MISSING", "")
	if _, err := NewOpenAIEmbedder("TEST_EMBED_MISSING", "text-embedding-3-small", Options{}); err == nil {
		t.Fatal("expected error when API key env is unset")
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	emb := NewMockEmbedder(16)

	a, err := emb.Embed([]string{"the colosseum"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := emb.Embed([]string{"the colosseum"})
	if err != nil {
		t.Fatal(err)
	}

	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("component %d differs between runs", i)
		}
	}
}
