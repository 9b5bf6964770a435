package cee

import (
	"context"
	"math"
	"sort"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// SimilarityDims is the default truncation width used for all similarity
// and comparison work, per spec.md §4.3 Matryoshka.
const SimilarityDims = 512

const (
	// SimilarToThreshold is the cosine floor above which a similar_to edge
	// is created.
	SimilarToThreshold = 0.90
	// DedupSignalThreshold additionally emits a dedup-check signal.
	DedupSignalThreshold = 0.95
	// StaleThreshold is the floor below which an existing similar_to edge
	// is pruned during periodic maintenance.
	StaleThreshold = 0.80
	// SeedFloor is SSA seeding's separate, lower similarity floor.
	SeedFloor = 0.60
	// RecentWindow bounds how many of the most recently embedded nodes a
	// new commit is compared against.
	RecentWindow = 100
)

// CosineSimilarity computes cosine similarity with sum-checked
// denominators: a zero vector on either side yields 0 rather than NaN.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// SimilarityEdge describes a computed pairing ready for the store port.
type SimilarityEdge struct {
	TargetID   string
	Similarity float64
	Dedup      bool
}

// MaintainSimilarity compares the 512-truncated vector of a freshly
// committed node against the store's most recently embedded nodes, and
// returns the similar_to edges that should exist. It does not write to the
// store itself; the caller applies the returned edges via the store port.
func MaintainSimilarity(ctx context.Context, store ports.StorePort, nodeID string, vec []float32) ([]SimilarityEdge, error) {
	truncated := model.Truncate(vec, SimilarityDims)

	recent, err := recentEmbedded(ctx, store, nodeID, RecentWindow)
	if err != nil {
		return nil, err
	}

	var edges []SimilarityEdge
	for _, r := range recent {
		sim := CosineSimilarity(truncated, model.Truncate(r.Vector, SimilarityDims))
		if sim >= SimilarToThreshold {
			edges = append(edges, SimilarityEdge{
				TargetID:   r.NodeID,
				Similarity: sim,
				Dedup:      sim >= DedupSignalThreshold,
			})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Similarity > edges[j].Similarity })
	return edges, nil
}

// recentNode is the minimal shape MaintainSimilarity needs from the store's
// recently-embedded set.
type recentNode struct {
	NodeID string
	Vector []float32
}

// recentEmbedded fetches the most recent embedded nodes excluding the node
// currently being committed. It is a thin adapter over the store port's
// reranking accessor, which already exposes per-node vectors.
func recentEmbedded(ctx context.Context, store ports.StorePort, excludeID string, limit int) ([]recentNode, error) {
	ids, err := store.RecentlyEmbedded(ctx, limit+1)
	if err != nil {
		return nil, err
	}
	out := make([]recentNode, 0, len(ids))
	for _, id := range ids {
		if id == excludeID {
			continue
		}
		rec, err := store.GetNodeForReranking(ctx, id)
		if err != nil {
			continue
		}
		if rec == nil || len(rec.Vector) == 0 {
			continue
		}
		out = append(out, recentNode{NodeID: id, Vector: rec.Vector})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
