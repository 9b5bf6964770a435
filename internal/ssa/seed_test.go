package ssa

import (
	"context"
	"testing"

	"github.com/hynous/memory-core/internal/model"
)

func TestHybridSeed_FusesAndCapsAtMaxSeeds(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < MaxSeeds+10; i++ {
		id := string(rune('a' + i))
		store.addNode(&model.Node{ID: id}, nil)
		store.vecScore[id] = 0.95
		store.bm25Score[id] = 1.0
	}
	seeds, err := HybridSeed(context.Background(), store, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seeds) != MaxSeeds {
		t.Fatalf("expected %d seeds, got %d", MaxSeeds, len(seeds))
	}
}

func TestHybridSeed_DropsBelowThreshold(t *testing.T) {
	store := newFakeStore()
	store.addNode(&model.Node{ID: "low"}, nil)
	store.vecScore["low"] = 0.1
	store.bm25Score["low"] = 0.1

	seeds, err := HybridSeed(context.Background(), store, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seeds) != 0 {
		t.Fatalf("expected no seeds below threshold, got %d", len(seeds))
	}
}

func TestHybridSeed_AppliesNodePredicate(t *testing.T) {
	store := newFakeStore()
	store.addNode(&model.Node{ID: "keep", Kind: model.KindConcept}, nil)
	store.addNode(&model.Node{ID: "drop", Kind: model.KindRaw}, nil)
	store.vecScore["keep"] = 0.9
	store.vecScore["drop"] = 0.9

	predicate := func(n *model.Node) bool { return n.Kind == model.KindConcept }
	seeds, err := HybridSeed(context.Background(), store, nil, nil, predicate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seeds) != 1 || seeds[0].NodeID != "keep" {
		t.Fatalf("expected only 'keep' to survive the predicate, got %+v", seeds)
	}
}

func TestHybridSeed_SortedDescendingByFused(t *testing.T) {
	store := newFakeStore()
	store.addNode(&model.Node{ID: "hi"}, nil)
	store.addNode(&model.Node{ID: "mid"}, nil)
	store.vecScore["hi"] = 0.95
	store.vecScore["mid"] = 0.70
	store.bm25Score["hi"] = 1.0
	store.bm25Score["mid"] = 0.5

	seeds, err := HybridSeed(context.Background(), store, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seeds) < 2 {
		t.Fatalf("expected at least 2 seeds, got %d", len(seeds))
	}
	for i := 1; i < len(seeds); i++ {
		if seeds[i].Fused > seeds[i-1].Fused {
			t.Fatalf("seeds not sorted descending: %+v", seeds)
		}
	}
}

func TestCombineVectors_Average(t *testing.T) {
	got := CombineVectors([][]float32{{0, 2}, {2, 4}}, CombineAverage)
	if got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected average [1,3], got %v", got)
	}
}

func TestCombineVectors_MaxPooling(t *testing.T) {
	got := CombineVectors([][]float32{{0, 5}, {3, 2}}, CombineMaxPooling)
	if got[0] != 3 || got[1] != 5 {
		t.Fatalf("expected max-pooled [3,5], got %v", got)
	}
}

func TestCombineVectors_SingleQueryIsIdentity(t *testing.T) {
	v := []float32{1, 2, 3}
	got := CombineVectors([][]float32{v}, CombineAverage)
	if len(got) != 3 || got[0] != 1 {
		t.Fatalf("expected identity passthrough, got %v", got)
	}
}

func TestCombineBM25Terms_DedupesAcrossQueries(t *testing.T) {
	terms := CombineBM25Terms([]string{"the quick fox", "quick brown fox"})
	seen := map[string]int{}
	for _, term := range terms {
		seen[term]++
	}
	for term, count := range seen {
		if count > 1 {
			t.Fatalf("expected term %q to appear once, appeared %d times", term, count)
		}
	}
}
