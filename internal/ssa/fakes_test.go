package ssa

import (
	"context"
	"sort"
	"time"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// fakeStore is an in-memory ports.StorePort for SSA tests: nodes, directed
// edges, and precomputed vector/BM25 scores, all keyed by node id.
type fakeStore struct {
	nodes     map[string]*model.Node
	rerank    map[string]*ports.RerankRecord
	edgesFrom map[string][]model.Edge
	vecScore  map[string]float64
	bm25Score map[string]float64
	avgDegree float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nodes:     map[string]*model.Node{},
		rerank:    map[string]*ports.RerankRecord{},
		edgesFrom: map[string][]model.Edge{},
		vecScore:  map[string]float64{},
		bm25Score: map[string]float64{},
		avgDegree: 2,
	}
}

func (s *fakeStore) addNode(n *model.Node, rec *ports.RerankRecord) {
	s.nodes[n.ID] = n
	s.rerank[n.ID] = rec
}

func (s *fakeStore) addEdge(e model.Edge) {
	s.edgesFrom[e.From] = append(s.edgesFrom[e.From], e)
}

func (s *fakeStore) GetNode(_ context.Context, id string) (*model.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, nil
	}
	return n, nil
}

func (s *fakeStore) GetNeighbors(_ context.Context, nodeID string) ([]ports.NeighborEdge, error) {
	var out []ports.NeighborEdge
	for _, e := range s.edgesFrom[nodeID] {
		n, ok := s.nodes[e.To]
		if !ok {
			continue
		}
		out = append(out, ports.NeighborEdge{Node: *n, Edge: e, Weight: edgeWeight(e)})
	}
	return out, nil
}

func (s *fakeStore) VectorSearch(_ context.Context, _ []float32, limit int) ([]ports.ScoredHit, error) {
	var hits []ports.ScoredHit
	for id, sc := range s.vecScore {
		hits = append(hits, ports.ScoredHit{NodeID: id, Score: sc})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *fakeStore) BM25Search(_ context.Context, _ []string, limit int) ([]ports.ScoredHit, error) {
	var hits []ports.ScoredHit
	for id, sc := range s.bm25Score {
		hits = append(hits, ports.ScoredHit{NodeID: id, Score: sc})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *fakeStore) GetGraphMetrics(_ context.Context) (ports.GraphMetrics, error) {
	return ports.GraphMetrics{TotalNodes: len(s.nodes), AvgDegree: s.avgDegree}, nil
}

func (s *fakeStore) GetNodeForReranking(_ context.Context, id string) (*ports.RerankRecord, error) {
	r, ok := s.rerank[id]
	if !ok {
		return nil, nil
	}
	return r, nil
}

func (s *fakeStore) RecentlyEmbedded(_ context.Context, limit int) ([]string, error) {
	var ids []string
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *fakeStore) Commit(_ context.Context, _ []model.StagingRecord, _ []model.Edge) (ports.CommitResult, error) {
	return ports.CommitResult{}, nil
}

// fakeEmbed returns a fixed-width zero vector per text, enough for
// CombineVectors and downstream plumbing; SSA tests drive relevance through
// fakeStore's precomputed vecScore/bm25Score instead of real embeddings.
type fakeEmbed struct {
	dims int
}

func (f fakeEmbed) Embed(_ context.Context, texts []string) ([]ports.EmbedResult, error) {
	out := make([]ports.EmbedResult, len(texts))
	for i := range texts {
		out[i] = ports.EmbedResult{Vector: make([]float32, f.dims), Dimensions: f.dims}
	}
	return out, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
