package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, dims int, status int) (*httptest.Server, *[]int) {
	t.Helper()
	var batchSizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
			return
		}
		batchSizes = append(batchSizes, len(req.Input))
		resp := embeddingResponse{}
		// reverse order to check index handling
		for i := len(req.Input) - 1; i >= 0; i-- {
			vec := make([]float32, dims)
			vec[0] = float32(len(req.Input[i]))
			resp.Data = append(resp.Data, embeddingData{Embedding: vec, Index: i})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &batchSizes
}

func TestOpenAIEmbedder_EmbedBatch(t *testing.T) {
	srv, sizes := newTestServer(t, 4, http.StatusOK)
	e, err := NewOpenAIEmbedder("test-key", "custom-model", srv.URL, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = string(make([]byte, i%7+1))
	}
	out, err := e.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 150 {
		t.Fatalf("len = %d", len(out))
	}
	for i, v := range out {
		if int(v[0]) != len(texts[i]) {
			t.Fatalf("out[%d] misordered: %v", i, v)
		}
	}
	if len(*sizes) != 2 || (*sizes)[0] != 100 || (*sizes)[1] != 50 {
		t.Errorf("batch sizes = %v", *sizes)
	}
}

func TestOpenAIEmbedder_rateLimit(t *testing.T) {
	srv, _ := newTestServer(t, 4, http.StatusTooManyRequests)
	e, _ := NewOpenAIEmbedder("test-key", "custom-model", srv.URL, 4)
	_, err := e.Embed(context.Background(), "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.RateLimited() || apiErr.Message != "slow down" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestOpenAIEmbedder_dimensionMismatch(t *testing.T) {
	srv, _ := newTestServer(t, 3, http.StatusOK)
	e, _ := NewOpenAIEmbedder("test-key", "custom-model", srv.URL, 4)
	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestNewOpenAIEmbedder_requiresKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder("  ", "text-embedding-3-small", "", 0); err == nil {
		t.Error("expected error for empty key")
	}
	e, err := NewOpenAIEmbedder("k", "text-embedding-3-small", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() != 1536 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
}
