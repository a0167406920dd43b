package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/ruiji/internal/embedding"
	"github.com/hyperjump/ruiji/internal/models"
	"github.com/hyperjump/ruiji/internal/semantic"
	"github.com/hyperjump/ruiji/internal/vector"
)

func BenchmarkBruteForceRank(b *testing.B) {
	table := make([][]float32, 1000)
	for i := range table {
		table[i] = make([]float32, 384)
		table[i][i%384] = 1
	}
	query := make([]float32, 384)
	query[0] = 1
	ranker := vector.BruteForce{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ranker.Rank(query, table, 10)
	}
}

func BenchmarkIndexSearch(b *testing.B) {
	embedder := embedding.NewMockEmbedder(384)
	ix := semantic.New(embedder)
	ctx := context.Background()
	inputs := make([]models.DocumentInput, 1000)
	for i := range inputs {
		inputs[i] = models.DocumentInput{Content: fmt.Sprintf("document number %d about topic %d", i, i%20)}
	}
	if err := ix.Index(ctx, inputs); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ix.Search(ctx, "document about topic 7", 10); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIndexBuild(b *testing.B) {
	embedder := embedding.NewMockEmbedder(128)
	ctx := context.Background()
	inputs := make([]models.DocumentInput, 100)
	for i := range inputs {
		inputs[i] = models.DocumentInput{Content: fmt.Sprintf("corpus document %d", i)}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix := semantic.New(embedder)
		if err := ix.Index(ctx, inputs); err != nil {
			b.Fatal(err)
		}
	}
}
