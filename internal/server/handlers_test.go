package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/ruiji/internal/config"
	"github.com/hyperjump/ruiji/internal/embedding"
	"github.com/hyperjump/ruiji/internal/models"
	"github.com/hyperjump/ruiji/internal/semantic"
)

func testServer(t *testing.T) (*Server, *semantic.Index) {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Provider = "mock"
	ix := semantic.New(embedding.NewMockEmbedder(32))
	return NewServer(ix, cfg, zap.NewNop()), ix
}

func seedCorpus(t *testing.T, ix *semantic.Index) {
	t.Helper()
	err := ix.Index(context.Background(), []models.DocumentInput{
		{Content: "the cat sat on the mat"},
		{Content: "a dog played in the park"},
		{Content: "cats and dogs are pets"},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHandleSearch(t *testing.T) {
	s, ix := testServer(t)
	seedCorpus(t, ix)
	router := s.Router()

	body, _ := json.Marshal(models.SearchQuery{Query: "the cat sat on the mat", TopK: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("results: %+v", resp)
	}
	if resp.Results[0].Document.Position != 0 {
		t.Errorf("top result: %+v", resp.Results[0].Document)
	}
}

func TestHandleSearch_ConfiguredDefaults(t *testing.T) {
	s, ix := testServer(t)
	s.config.Search.DefaultTopK = 2
	s.config.Search.MinScore = 0.99
	seedCorpus(t, ix)
	router := s.Router()

	// No top_k or min_score in the request: the configured values apply.
	body, _ := json.Marshal(models.SearchQuery{Query: "the cat sat on the mat"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// Only the exact-match document scores above 0.99, so the global
	// min_score prunes the rest even with default_top_k = 2.
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("results: %+v", resp)
	}
	if resp.Results[0].Document.Position != 0 || resp.Results[0].Rank != 1 {
		t.Errorf("top result: %+v", resp.Results[0])
	}
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	s, ix := testServer(t)
	seedCorpus(t, ix)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte(`{"query":""}`)))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: %d", rec.Code)
	}
}

func TestHandleSearch_BadBody(t *testing.T) {
	s, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: %d", rec.Code)
	}
}

func TestHandleSimilar(t *testing.T) {
	s, ix := testServer(t)
	seedCorpus(t, ix)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/similar/0?top_k=2", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	for _, res := range resp.Results {
		if res.Document.Position == 0 {
			t.Error("similar results include the query document")
		}
	}
}

func TestHandleSimilar_OutOfRange(t *testing.T) {
	s, ix := testServer(t)
	seedCorpus(t, ix)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/similar/99", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: %d", rec.Code)
	}
}

func TestHandleReplaceCorpus(t *testing.T) {
	s, ix := testServer(t)
	seedCorpus(t, ix)

	body, _ := json.Marshal([]models.DocumentInput{{Content: "only document"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/corpus", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}
	if ix.Size() != 1 {
		t.Errorf("corpus not replaced: size %d", ix.Size())
	}
}

func TestHandleListCorpusAndGetDocument(t *testing.T) {
	s, ix := testServer(t)
	seedCorpus(t, ix)
	router := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/corpus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status: %d", rec.Code)
	}
	var doc models.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Position != 1 || doc.Content != "a dog played in the park" {
		t.Errorf("document: %+v", doc)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/42", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing document status: %d", rec.Code)
	}
}

func TestHandleHealthAndStatus(t *testing.T) {
	s, ix := testServer(t)
	seedCorpus(t, ix)
	router := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status status: %d", rec.Code)
	}
	var status struct {
		Documents  int `json:"documents"`
		Dimensions int `json:"dimensions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Documents != 3 || status.Dimensions != 32 {
		t.Errorf("status: %+v", status)
	}
}
