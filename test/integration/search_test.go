// Package integration provides end-to-end tests over the full stack
// (loader, embedder, index, HTTP server).
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/ruiji/internal/config"
	"github.com/hyperjump/ruiji/internal/corpus"
	"github.com/hyperjump/ruiji/internal/embedding"
	"github.com/hyperjump/ruiji/internal/models"
	"github.com/hyperjump/ruiji/internal/semantic"
	"github.com/hyperjump/ruiji/internal/server"
)

const toyCorpus = `the cat sat on the mat
a dog played in the park
cats and dogs are pets
the weather is sunny today
I love programming in Python
machine learning is fascinating
the stock market crashed yesterday
she cooked a delicious pasta dinner
the football match ended in a draw
scientists discovered a new species
the museum has ancient artifacts
he plays guitar in a band
the recipe requires fresh basil
astronomy reveals distant galaxies
the marathon route passes downtown
`

func TestIntegration_LoadIndexSearch(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.lines")
	if err := os.WriteFile(corpusPath, []byte(toyCorpus), 0644); err != nil {
		t.Fatal(err)
	}

	loader := corpus.NewLoader()
	inputs, err := loader.LoadLines(corpusPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 15 {
		t.Fatalf("corpus size: %d, want 15", len(inputs))
	}

	embedder := embedding.NewMockEmbedder(64)
	defer embedder.Close()
	ix := semantic.New(embedder)
	ctx := context.Background()
	if err := ix.Index(ctx, inputs); err != nil {
		t.Fatal(err)
	}

	// Every document is its own best match.
	for i, in := range inputs {
		results, err := ix.Search(ctx, in.Content, 1)
		if err != nil {
			t.Fatal(err)
		}
		if results[0].Document.Position != i {
			t.Errorf("document %d: top result %d", i, results[0].Document.Position)
		}
	}

	// MostSimilar never returns the queried document.
	results, err := ix.MostSimilar(ctx, 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Fatalf("similar results: %d", len(results))
	}
	for _, r := range results {
		if r.Document.Position == 0 {
			t.Error("self in similar results")
		}
	}
}

func TestIntegration_HTTPRoundTrip(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Provider = "mock"

	embedder := embedding.NewMockEmbedder(32)
	defer embedder.Close()
	ix := semantic.New(embedder)
	srv := server.NewServer(ix, cfg, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	// Replace corpus over HTTP.
	inputs := []models.DocumentInput{
		{Content: "the cat sat on the mat"},
		{Content: "a dog played in the park"},
		{Content: "cats and dogs are pets"},
	}
	body, _ := json.Marshal(inputs)
	resp, err := http.Post(ts.URL+"/api/v1/corpus", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("corpus status: %d", resp.StatusCode)
	}

	// Search over HTTP.
	body, _ = json.Marshal(models.SearchQuery{Query: "a dog played in the park", TopK: 1})
	resp, err = http.Post(ts.URL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status: %d", resp.StatusCode)
	}
	var searchResp models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		t.Fatal(err)
	}
	if searchResp.Total != 1 || searchResp.Results[0].Document.Position != 1 {
		t.Fatalf("search response: %+v", searchResp)
	}
}
