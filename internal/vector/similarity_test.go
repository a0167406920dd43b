package vector

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero norm a", []float32{0, 0}, []float32{1, 0}, 0},
		{"zero norm b", []float32{1, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"scale invariant", []float32{2, 0}, []float32{5, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDotAndL2Norm(t *testing.T) {
	if got := Dot([]float32{1, 2, 3}, []float32{4, 5, 6}); got != 32 {
		t.Errorf("Dot = %v", got)
	}
	if got := L2Norm([]float32{3, 4}); math.Abs(got-5) > 1e-9 {
		t.Errorf("L2Norm = %v", got)
	}
}

func TestBruteForce_Rank(t *testing.T) {
	table := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	hits := BruteForce{}.Rank([]float32{1, 0, 0}, table, 2)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Position != 0 {
		t.Errorf("top hit should be position 0, got %d", hits[0].Position)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not sorted by descending score")
	}
}

func TestBruteForce_Rank_TieOrder(t *testing.T) {
	// All table vectors identical: scores tie, positions must come back ascending.
	table := [][]float32{
		{0, 1},
		{0, 1},
		{0, 1},
	}
	hits := BruteForce{}.Rank([]float32{0, 1}, table, 3)
	for i, h := range hits {
		if h.Position != i {
			t.Fatalf("tie order broken: hits=%v", hits)
		}
	}
}

func TestBruteForce_Rank_Clamp(t *testing.T) {
	table := [][]float32{{1, 0}}
	if hits := (BruteForce{}).Rank([]float32{1, 0}, table, 10); len(hits) != 1 {
		t.Errorf("k clamp: got %d hits", len(hits))
	}
	if hits := (BruteForce{}).Rank([]float32{1, 0}, nil, 3); hits != nil {
		t.Errorf("empty table: got %v", hits)
	}
	if hits := (BruteForce{}).Rank([]float32{1, 0}, table, 0); hits != nil {
		t.Errorf("k=0: got %v", hits)
	}
}
