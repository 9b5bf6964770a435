// Package store composes the three persistence adapters — Neo4j, Qdrant,
// and Bleve — into the single ports.StorePort the CORE depends on. Neo4j is
// the system of record for Commit; the vector and keyword indexes are
// read-model projections rebuilt from it, matching the teacher's ingest
// pipeline, which writes the graph store first and treats the vector store
// as a second, independently-failing step (engine/ingest.NewStore).
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hynous/memory-core/internal/adapter/bm25store"
	"github.com/hynous/memory-core/internal/adapter/neo4jstore"
	"github.com/hynous/memory-core/internal/adapter/qdrantstore"
	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// Store implements ports.StorePort by delegating to Neo4j, Qdrant, and
// Bleve for their respective concerns.
type Store struct {
	Graph  *neo4jstore.GraphStore
	Vector *qdrantstore.VectorStore
	BM25   *bm25store.Index
	Logger *slog.Logger
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Store) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return s.Graph.GetNode(ctx, id)
}

func (s *Store) GetNeighbors(ctx context.Context, nodeID string) ([]ports.NeighborEdge, error) {
	return s.Graph.GetNeighbors(ctx, nodeID)
}

func (s *Store) VectorSearch(ctx context.Context, vector []float32, limit int) ([]ports.ScoredHit, error) {
	return s.Vector.VectorSearch(ctx, vector, limit)
}

func (s *Store) BM25Search(ctx context.Context, terms []string, limit int) ([]ports.ScoredHit, error) {
	return s.BM25.BM25Search(ctx, terms, limit)
}

func (s *Store) GetGraphMetrics(ctx context.Context) (ports.GraphMetrics, error) {
	return s.Graph.GetGraphMetrics(ctx)
}

func (s *Store) GetNodeForReranking(ctx context.Context, id string) (*ports.RerankRecord, error) {
	return s.Graph.GetNodeForReranking(ctx, id)
}

func (s *Store) RecentlyEmbedded(ctx context.Context, limit int) ([]string, error) {
	return s.Vector.RecentlyEmbedded(ctx, limit)
}

// Commit persists staged nodes and edges to Neo4j atomically, then
// propagates each node's embedding and text into the vector and keyword
// read-models. A graph-write failure fails the commit outright; a
// projection-write failure is logged and does not roll back the graph
// write, since the node is already durably committed and the projections
// self-heal on the next RecentlyEmbedded-driven or re-ingestion pass.
func (s *Store) Commit(ctx context.Context, staged []model.StagingRecord, edges []model.Edge) (ports.CommitResult, error) {
	created := make([]string, 0, len(staged))
	updated := make([]string, 0, len(staged))
	for _, rec := range staged {
		existing, err := s.Graph.GetNode(ctx, rec.Node.ID)
		if err != nil {
			return ports.CommitResult{}, fmt.Errorf("store: precheck node %s: %w", rec.Node.ID, err)
		}
		if existing == nil {
			created = append(created, rec.Node.ID)
		} else {
			updated = append(updated, rec.Node.ID)
		}
	}

	if err := s.Graph.CommitBatch(ctx, staged, edges); err != nil {
		return ports.CommitResult{}, err
	}

	log := s.logger()
	for _, rec := range staged {
		if rec.Node.Embedding != nil && len(rec.Node.Embedding.Vector) > 0 {
			if err := s.Vector.Upsert(ctx, rec.Node.ID, rec.Node.Embedding.Vector); err != nil {
				log.Warn("store: vector projection failed", "node_id", rec.Node.ID, "error", err)
			}
		}
		if err := s.BM25.IndexNode(ctx, rec.Node); err != nil {
			log.Warn("store: bm25 projection failed", "node_id", rec.Node.ID, "error", err)
		}
	}

	linked := make([]string, 0, len(edges))
	for _, e := range edges {
		linked = append(linked, e.ID)
	}

	return ports.CommitResult{
		CreatedIDs:    created,
		UpdatedIDs:    updated,
		LinkedEdgeIDs: linked,
	}, nil
}

var _ ports.StorePort = (*Store)(nil)
