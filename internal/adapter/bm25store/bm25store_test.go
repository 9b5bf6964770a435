package bm25store

import (
	"context"
	"testing"

	"github.com/hynous/memory-core/internal/model"
)

func TestIndexNode_BM25SearchFindsMatchingBody(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.IndexNode(ctx, model.Node{ID: "n1", Title: "Onboarding notes", Body: "the kubernetes cluster migration plan"}); err != nil {
		t.Fatalf("index n1: %v", err)
	}
	if err := idx.IndexNode(ctx, model.Node{ID: "n2", Title: "Grocery list", Body: "milk eggs bread"}); err != nil {
		t.Fatalf("index n2: %v", err)
	}

	hits, err := idx.BM25Search(ctx, []string{"kubernetes", "migration"}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	if hits[0].NodeID != "n1" {
		t.Fatalf("expected n1 to rank first, got %q", hits[0].NodeID)
	}
	if hits[0].Score <= 0 {
		t.Fatalf("expected a positive bm25 score, got %f", hits[0].Score)
	}
}

func TestBM25Search_EmptyTermsReturnsNil(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer idx.Close()

	hits, err := idx.BM25Search(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != nil {
		t.Fatalf("expected nil hits, got %v", hits)
	}
}

func TestDeleteNode_RemovesFromResults(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.IndexNode(ctx, model.Node{ID: "n1", Title: "Project notes", Body: "quarterly roadmap review"}); err != nil {
		t.Fatalf("index: %v", err)
	}
	if err := idx.DeleteNode(ctx, "n1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	hits, err := idx.BM25Search(ctx, []string{"roadmap"}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits after delete, got %v", hits)
	}
}
