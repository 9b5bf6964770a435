package ssa

import (
	"context"

	"github.com/hynous/memory-core/internal/ports"
)

// serendipityPreset names the (max_similarity, min_graph_activation, count)
// triple per spec.md §4.4's serendipity thresholds.
type serendipityPreset struct {
	maxSimilarity float64
	minGraph      float64
	count         int
}

var serendipityPresets = map[SerendipityLevel]serendipityPreset{
	SerendipityOff:    {0, 0, 0},
	SerendipityLow:    {0.4, 0.5, 2},
	SerendipityMedium: {0.3, 0.5, 5},
	SerendipityHigh:   {0.2, 0.5, 10},
}

// BuildConnections returns the edges internal to the activated, filter-passing
// node set, for IncludeConnections responses.
func BuildConnections(ctx context.Context, store ports.StorePort, scored []ScoredNode, filter *CompiledFilter) ([]ConnectionEdge, error) {
	inSet := make(map[string]bool, len(scored))
	for _, s := range scored {
		inSet[s.ID] = true
	}

	seen := make(map[string]bool)
	var out []ConnectionEdge
	for _, s := range scored {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		neighbors, err := store.GetNeighbors(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbors {
			if !inSet[nb.Node.ID] {
				continue
			}
			if filter.Edge != nil && !filter.Edge(nb.Edge) {
				continue
			}
			key := nb.Edge.PairKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ConnectionEdge{From: nb.Edge.From, To: nb.Edge.To, Type: nb.Edge.Type})
		}
	}
	return out, nil
}

// Serendipity selects nodes that are graph-relevant but not semantically
// close to the query: low vector similarity, meaningful residual activation.
// Candidates are drawn from the reranked (non-top) pool, ordered by graph
// activation descending, per the level's preset.
func Serendipity(scored []ScoredNode, alreadyReturned map[string]bool, level SerendipityLevel) []string {
	preset, ok := serendipityPresets[level]
	if !ok || preset.count == 0 {
		return nil
	}

	var candidates []ScoredNode
	for _, s := range scored {
		if alreadyReturned[s.ID] {
			continue
		}
		if s.Semantic >= preset.maxSimilarity {
			continue
		}
		if s.Graph < preset.minGraph {
			continue
		}
		candidates = append(candidates, s)
	}

	sortByGraphDesc(candidates)
	if len(candidates) > preset.count {
		candidates = candidates[:preset.count]
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}

func sortByGraphDesc(nodes []ScoredNode) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j-1].Graph < nodes[j].Graph; j-- {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
		}
	}
}
