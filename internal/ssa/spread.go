package ssa

import (
	"context"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// edgeWeight returns the SSA spread weight for an edge: similar_to uses its
// own stored cosine-derived weight; every other type uses the fixed table
// in model.BaseWeight.
func edgeWeight(e model.Edge) float64 {
	if e.Type == model.EdgeSimilarTo {
		return e.Weight
	}
	return model.BaseWeight(e.Type)
}

// Spread runs Step 3: bounded BFS activation spread from the seed set,
// honoring cooperative cancellation between hops.
func Spread(ctx context.Context, store ports.StorePort, seeds []SeedCandidate, filter *CompiledFilter, cfg SpreadConfig) (*SpreadResult, error) {
	activations := make(map[string]*Activation, len(seeds))
	frontier := make([]string, 0, len(seeds))
	for _, s := range seeds {
		a := &Activation{
			NodeID:      s.NodeID,
			Activation:  cfg.InitialActivation * s.Fused,
			HopDistance: 0,
			Path:        []string{s.NodeID},
			IsSeed:      true,
			VectorScore: s.VectorScore,
			BM25Score:   s.BM25Score,
		}
		activations[s.NodeID] = a
		frontier = append(frontier, s.NodeID)
	}

	result := &SpreadResult{Activations: activations}
	hop := 0
	for hop = 1; hop <= cfg.MaxHops; hop++ {
		if ctx.Err() != nil {
			result.HopsCompleted = hop - 1
			result.TerminationReason = "max_hops"
			return result, nil
		}

		var nextFrontier []string
		capped := false
		for _, nodeID := range frontier {
			a := activations[nodeID]
			if a.Activation < cfg.MinThreshold {
				continue
			}
			neighbors, err := store.GetNeighbors(ctx, nodeID)
			if err != nil {
				return nil, err
			}
			for _, nb := range neighbors {
				if filter.Edge != nil && !filter.Edge(nb.Edge) {
					continue
				}
				if filter.Node != nil && !filter.Node(&nb.Node) {
					continue
				}
				spread := a.Activation * edgeWeight(nb.Edge) * cfg.HopDecay
				if spread < cfg.MinThreshold {
					continue
				}

				if existing, ok := activations[nb.Node.ID]; ok {
					switch cfg.Aggregation {
					case "max":
						if spread > existing.Activation {
							existing.Activation = spread
						}
					default: // "sum"
						existing.Activation += spread
					}
					if hop < existing.HopDistance {
						existing.HopDistance = hop
						existing.Path = append(append([]string{}, a.Path...), nb.Node.ID)
					}
					continue
				}

				newActivation := &Activation{
					NodeID:      nb.Node.ID,
					Activation:  spread,
					HopDistance: hop,
					Path:        append(append([]string{}, a.Path...), nb.Node.ID),
				}
				activations[nb.Node.ID] = newActivation
				nextFrontier = append(nextFrontier, nb.Node.ID)
				result.NodesVisited++
				if len(activations) >= cfg.MaxNodes {
					capped = true
					break
				}
			}
			if capped {
				break
			}
		}

		if capped {
			result.HopsCompleted = hop
			result.TerminationReason = "max_nodes"
			return result, nil
		}
		if len(nextFrontier) == 0 {
			result.HopsCompleted = hop
			result.TerminationReason = "no_spread"
			return result, nil
		}
		frontier = nextFrontier
	}

	result.HopsCompleted = cfg.MaxHops
	result.TerminationReason = "max_hops"
	return result, nil
}

// ApplyQueryRelevanceFloor drops any activated node that is not a seed and
// has zero vector and zero BM25 score, removing hub-only artifacts.
func ApplyQueryRelevanceFloor(result *SpreadResult) {
	for id, a := range result.Activations {
		if !a.IsSeed && a.VectorScore == 0 && a.BM25Score == 0 {
			delete(result.Activations, id)
		}
	}
}

// NormalizeActivations divides each surviving activation by the max across
// the surviving set, so graph scores are relative to what remains.
func NormalizeActivations(result *SpreadResult) {
	max := 0.0
	for _, a := range result.Activations {
		if a.Activation > max {
			max = a.Activation
		}
	}
	if max == 0 {
		return
	}
	for _, a := range result.Activations {
		a.Activation = a.Activation / max
	}
}
