package ssa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

func TestExecute_EmptyGraphReturnsEmptyResultWithZeroSeeds(t *testing.T) {
	store := newFakeStore()
	deps := Deps{Store: store, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow)}

	result, err := Execute(context.Background(), deps, Request{Queries: []string{"test"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.RelevantNodes) != 0 {
		t.Fatalf("expected no relevant nodes on an empty graph, got %v", result.RelevantNodes)
	}
	if result.Metrics.SeedsFound != 0 {
		t.Fatalf("expected seeds_found=0, got %d", result.Metrics.SeedsFound)
	}
}

func TestExecute_NoQueriesIsRejected(t *testing.T) {
	store := newFakeStore()
	deps := Deps{Store: store, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow)}

	_, err := Execute(context.Background(), deps, Request{})
	if !errors.Is(err, ErrNoQueries) {
		t.Fatalf("expected ErrNoQueries, got %v", err)
	}
}

func TestExecute_InvalidFilterRejectedBeforeAnyStoreCall(t *testing.T) {
	store := newFakeStore()
	deps := Deps{Store: store, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow)}

	_, err := Execute(context.Background(), deps, Request{
		Queries: []string{"test"},
		Filters: &FilterSpec{ConnectedTo: "n1", WithinHops: 99},
	})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func buildPopulatedStore() *fakeStore {
	store := newFakeStore()
	store.avgDegree = 2
	store.addNode(&model.Node{ID: "seed1", Kind: model.KindConcept, CreatedAt: testNow}, &ports.RerankRecord{
		ID: "seed1", LastAccessed: testNow, Category: model.CategoryGeneral,
	})
	store.addNode(&model.Node{ID: "hop1", Kind: model.KindConcept, CreatedAt: testNow}, &ports.RerankRecord{
		ID: "hop1", LastAccessed: testNow, Category: model.CategoryGeneral,
	})
	store.addEdge(model.Edge{From: "seed1", To: "hop1", Type: model.EdgeSupports})
	store.vecScore["seed1"] = 0.95
	store.bm25Score["seed1"] = 1.0
	return store
}

func TestExecute_PopulatedGraphProducesRankedResult(t *testing.T) {
	store := buildPopulatedStore()
	deps := Deps{Store: store, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow)}

	result, err := Execute(context.Background(), deps, Request{Queries: []string{"test"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Metrics.SeedsFound == 0 {
		t.Fatal("expected at least one seed on a populated graph")
	}
	if len(result.RelevantNodes) == 0 {
		t.Fatal("expected at least one relevant node")
	}
}

func TestExecute_IsDeterministicForFixedInputs(t *testing.T) {
	store1 := buildPopulatedStore()
	store2 := buildPopulatedStore()
	deps1 := Deps{Store: store1, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow)}
	deps2 := Deps{Store: store2, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow)}

	r1, err := Execute(context.Background(), deps1, Request{Queries: []string{"test"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := Execute(context.Background(), deps2, Request{Queries: []string{"test"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r1.RelevantNodes) != len(r2.RelevantNodes) {
		t.Fatalf("expected identical result lengths, got %d and %d", len(r1.RelevantNodes), len(r2.RelevantNodes))
	}
	for i := range r1.RelevantNodes {
		if r1.RelevantNodes[i] != r2.RelevantNodes[i] {
			t.Fatalf("expected identical ordering at index %d: %s vs %s", i, r1.RelevantNodes[i], r2.RelevantNodes[i])
		}
	}
}

func TestExecute_RespectsNodesAndHopsBounds(t *testing.T) {
	store := newFakeStore()
	store.avgDegree = 2
	store.addNode(&model.Node{ID: "seed1"}, &ports.RerankRecord{ID: "seed1", LastAccessed: testNow})
	store.vecScore["seed1"] = 0.95
	store.bm25Score["seed1"] = 1.0
	for i := 0; i < 20; i++ {
		id := "n" + string(rune('a'+i))
		store.addNode(&model.Node{ID: id}, &ports.RerankRecord{ID: id, LastAccessed: testNow})
		store.addEdge(model.Edge{From: "seed1", To: id, Type: model.EdgeRelatesTo})
	}

	cfg := DefaultSpreadConfig()
	cfg.MaxNodes = 5
	deps := Deps{Store: store, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow), SpreadConfig: cfg}

	result, err := Execute(context.Background(), deps, Request{Queries: []string{"test"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Metrics.NodesActivated > cfg.MaxNodes {
		t.Fatalf("expected nodes_activated <= %d, got %d", cfg.MaxNodes, result.Metrics.NodesActivated)
	}
	if result.Metrics.HopsCompleted > cfg.MaxHops {
		t.Fatalf("expected hops_completed <= %d, got %d", cfg.MaxHops, result.Metrics.HopsCompleted)
	}
}

func TestExecute_LimitDefaultsAndCaps(t *testing.T) {
	store := buildPopulatedStore()
	deps := Deps{Store: store, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow)}

	result, err := Execute(context.Background(), deps, Request{Queries: []string{"test"}, Limit: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.RelevantNodes) > MaxLimit {
		t.Fatalf("expected result capped at MaxLimit=%d, got %d", MaxLimit, len(result.RelevantNodes))
	}
}

func TestExecute_IncludeConnectionsPopulatesConnectionsField(t *testing.T) {
	store := buildPopulatedStore()
	deps := Deps{Store: store, Embed: fakeEmbed{dims: 4}, Now: fixedClock(testNow)}

	result, err := Execute(context.Background(), deps, Request{Queries: []string{"test"}, IncludeConnections: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.RelevantNodes) >= 2 && len(result.Connections) == 0 {
		t.Fatal("expected at least one connection among co-activated nodes")
	}
}

func TestExecute_DeadlineAppliedToSpread(t *testing.T) {
	store := buildPopulatedStore()
	deps := Deps{Store: store, Embed: fakeEmbed{dims: 4}, Now: func() time.Time { return testNow }}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := Execute(ctx, deps, Request{Queries: []string{"test"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
