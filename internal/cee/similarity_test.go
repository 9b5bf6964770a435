package cee

import (
	"context"
	"testing"

	"github.com/hynous/memory-core/internal/ports"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	a := []float32{1, 0, 0}
	got := CosineSimilarity(a, a)
	if got < 0.999 || got > 1.001 {
		t.Fatalf("expected ~1.0 for identical vectors, got %v", got)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	got := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if got != 0 {
		t.Fatalf("expected 0 for orthogonal vectors, got %v", got)
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	got := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	if got != 0 {
		t.Fatalf("expected 0 for a zero vector rather than NaN, got %v", got)
	}
}

type fakeStore struct {
	ports.StorePort
	recent  []string
	vectors map[string][]float32
}

func (f *fakeStore) RecentlyEmbedded(ctx context.Context, limit int) ([]string, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeStore) GetNodeForReranking(ctx context.Context, id string) (*ports.RerankRecord, error) {
	v, ok := f.vectors[id]
	if !ok {
		return nil, nil
	}
	return &ports.RerankRecord{ID: id, Vector: v}, nil
}

func TestMaintainSimilarity_CreatesEdgeAboveThreshold(t *testing.T) {
	store := &fakeStore{
		recent: []string{"node_a", "node_b", "node_new"},
		vectors: map[string][]float32{
			"node_a": {1, 0, 0},
			"node_b": {0, 1, 0},
		},
	}
	edges, err := MaintainSimilarity(context.Background(), store, "node_new", []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edges) != 1 || edges[0].TargetID != "node_a" {
		t.Fatalf("expected one edge to node_a, got %+v", edges)
	}
	if !edges[0].Dedup {
		t.Fatalf("expected dedup flag for a near-identical vector")
	}
}

func TestMaintainSimilarity_ExcludesSelf(t *testing.T) {
	store := &fakeStore{
		recent:  []string{"node_new"},
		vectors: map[string][]float32{"node_new": {1, 0, 0}},
	}
	edges, err := MaintainSimilarity(context.Background(), store, "node_new", []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("expected no self-edge, got %+v", edges)
	}
}
