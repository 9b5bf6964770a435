package ssa

import (
	"context"
	"sort"

	"github.com/hynous/memory-core/internal/cee"
	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// MaxSeeds is the top-k kept after fusion, per spec.md §4.4.
const MaxSeeds = 15

// SeedThreshold is the fused-score floor a candidate must clear to survive.
const SeedThreshold = 0.60

// HybridSeed runs Step 2: request max_seeds*3 candidates from each index,
// normalize BM25 by its batch max, fuse with cee.Fuse's dense/BM25 weights,
// drop anything below SeedThreshold or failing the node predicate, and keep
// the top MaxSeeds by fused score.
func HybridSeed(ctx context.Context, store ports.StorePort, queryVec []float32, bm25Terms []string, predicate func(*model.Node) bool) ([]SeedCandidate, error) {
	want := MaxSeeds * 3

	vectorHits, err := store.VectorSearch(ctx, queryVec, want)
	if err != nil {
		return nil, err
	}
	bm25Hits, err := store.BM25Search(ctx, bm25Terms, want)
	if err != nil {
		return nil, err
	}

	bm25Max := 0.0
	for _, h := range bm25Hits {
		if h.Score > bm25Max {
			bm25Max = h.Score
		}
	}

	vecByID := make(map[string]float64, len(vectorHits))
	for _, h := range vectorHits {
		vecByID[h.NodeID] = h.Score
	}
	bm25ByID := make(map[string]float64, len(bm25Hits))
	for _, h := range bm25Hits {
		if bm25Max > 0 {
			bm25ByID[h.NodeID] = h.Score / bm25Max
		} else {
			bm25ByID[h.NodeID] = 0
		}
	}

	seen := make(map[string]bool, len(vecByID)+len(bm25ByID))
	var candidates []SeedCandidate
	addCandidate := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		v := vecByID[id]
		b := bm25ByID[id]
		candidates = append(candidates, SeedCandidate{
			NodeID:      id,
			VectorScore: v,
			BM25Score:   b,
			Fused:       cee.Fuse(v, b),
		})
	}
	for _, h := range vectorHits {
		addCandidate(h.NodeID)
	}
	for _, h := range bm25Hits {
		addCandidate(h.NodeID)
	}

	var survivors []SeedCandidate
	for _, c := range candidates {
		if c.Fused < SeedThreshold {
			continue
		}
		if predicate != nil {
			n, err := store.GetNode(ctx, c.NodeID)
			if err != nil || !predicate(n) {
				continue
			}
		}
		survivors = append(survivors, c)
	}

	sort.Slice(survivors, func(i, j int) bool { return survivors[i].Fused > survivors[j].Fused })
	if len(survivors) > MaxSeeds {
		survivors = survivors[:MaxSeeds]
	}
	return survivors, nil
}

// CombineVectors implements Step 1's multi-query combination: average is the
// mean vector, max_pooling is the component-wise max.
func CombineVectors(vectors [][]float32, combination QueryCombination) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	if len(vectors) == 1 {
		return vectors[0]
	}
	dims := len(vectors[0])
	out := make([]float32, dims)
	if combination == CombineMaxPooling {
		for i := 0; i < dims; i++ {
			max := vectors[0][i]
			for _, v := range vectors[1:] {
				if i < len(v) && v[i] > max {
					max = v[i]
				}
			}
			out[i] = max
		}
		return out
	}
	for i := 0; i < dims; i++ {
		var sum float32
		for _, v := range vectors {
			if i < len(v) {
				sum += v[i]
			}
		}
		out[i] = sum / float32(len(vectors))
	}
	return out
}

// CombineBM25Terms unions and dedupes BM25 terms extracted from each query.
func CombineBM25Terms(queries []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range queries {
		for _, t := range cee.Tokenize(q) {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
