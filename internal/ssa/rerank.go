package ssa

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// weights is the six-component weight profile: semantic, keyword, graph,
// recency, authority, affinity, in that order, summing to ~1.
type weights [6]float64

var (
	profileLesson  = weights{0.20, 0.25, 0.35, 0.05, 0.10, 0.05}
	profileSignal  = weights{0.10, 0.10, 0.10, 0.60, 0.05, 0.05}
	profileEpisode = weights{0.15, 0.10, 0.25, 0.40, 0.05, 0.05}
	profileDefault = weights{0.30, 0.10, 0.10, 0.10, 0.30, 0.10}
)

// weightProfileFor selects a named weight profile by subtype prefix, per
// spec.md §4.4.
func weightProfileFor(subtype string) weights {
	switch {
	case strings.HasPrefix(subtype, "custom:lesson"):
		return profileLesson
	case strings.HasPrefix(subtype, "custom:signal"):
		return profileSignal
	case strings.HasPrefix(subtype, "custom:episode"):
		return profileEpisode
	default:
		return profileDefault
	}
}

// recencyHalfLife is the category-specific half-life from spec.md §4.4 /
// Glossary.
func recencyHalfLife(category model.ContentCategory) time.Duration {
	switch category {
	case model.CategoryIdentity, model.CategoryDocument:
		return 48 * time.Hour
	case model.CategoryAcademic, model.CategoryWork:
		return 24 * time.Hour
	case model.CategoryConversation:
		return 6 * time.Hour
	case model.CategoryTemporal:
		return 12 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func recencyScore(now, lastAccessed time.Time, category model.ContentCategory) float64 {
	if lastAccessed.IsZero() {
		return 0
	}
	elapsed := now.Sub(lastAccessed)
	if elapsed < 0 {
		elapsed = 0
	}
	halfLife := recencyHalfLife(category)
	return math.Pow(0.5, elapsed.Hours()/halfLife.Hours())
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rerank runs Step 4: fetches the thin rerank projection for each surviving
// activated node, computes the six component scores, applies the subtype's
// weight profile, and returns nodes sorted by score descending.
func Rerank(ctx context.Context, store ports.StorePort, spread *SpreadResult, now time.Time) ([]ScoredNode, error) {
	maxAccess := 0
	records := make(map[string]*ports.RerankRecord, len(spread.Activations))
	for id := range spread.Activations {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rec, err := store.GetNodeForReranking(ctx, id)
		if err != nil || rec == nil {
			continue
		}
		records[id] = rec
		if rec.AccessCount > maxAccess {
			maxAccess = rec.AccessCount
		}
	}

	graphMetrics, err := store.GetGraphMetrics(ctx)
	if err != nil {
		return nil, err
	}
	avgDegree := graphMetrics.AvgDegree
	if avgDegree <= 0 {
		avgDegree = 1
	}

	var out []ScoredNode
	for id, rec := range records {
		a := spread.Activations[id]
		sn := ScoredNode{
			ID:               id,
			SemanticScore:    a.VectorScore,
			BM25Score:        a.BM25Score,
			GraphScore:       a.Activation,
			LastAccessed:     rec.LastAccessed,
			CreatedAt:        rec.CreatedAt,
			AccessCount:      rec.AccessCount,
			InboundEdgeCount: rec.InboundEdgeCount,
			Subtype:          rec.Subtype,
			Category:         rec.Category,
		}

		sn.Semantic = sn.SemanticScore
		sn.Keyword = sn.BM25Score
		sn.Graph = sn.GraphScore
		sn.Recency = recencyScore(now, rec.LastAccessed, rec.Category)
		sn.Authority = clamp01(float64(rec.InboundEdgeCount) / avgDegree)
		if maxAccess > 0 {
			sn.Affinity = math.Log(1+float64(rec.AccessCount)) / math.Log(1+float64(maxAccess))
		}

		w := weightProfileFor(rec.Subtype)
		components := [6]float64{sn.Semantic, sn.Keyword, sn.Graph, sn.Recency, sn.Authority, sn.Affinity}
		names := [6]string{"semantic", "keyword", "graph", "recency", "authority", "affinity"}

		var score float64
		bestIdx := 0
		bestWeighted := -1.0
		for i, c := range components {
			weighted := w[i] * c
			score += weighted
			if weighted > bestWeighted {
				bestWeighted = weighted
				bestIdx = i
			}
		}
		sn.Score = score
		sn.PrimarySignal = names[bestIdx]
		sn.Explanations = []string{explanationFor(names[bestIdx], components[bestIdx])}

		out = append(out, sn)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func explanationFor(signal string, value float64) string {
	pct := int(value * 100)
	switch signal {
	case "semantic":
		return fmt.Sprintf("Strong semantic match (%d%% similarity)", pct)
	case "keyword":
		return fmt.Sprintf("Strong keyword match (%d%% relevance)", pct)
	case "graph":
		return fmt.Sprintf("Strongly connected in the graph (%d%% activation)", pct)
	case "recency":
		return fmt.Sprintf("Recently accessed (%d%% recency)", pct)
	case "authority":
		return fmt.Sprintf("Well-referenced node (%d%% authority)", pct)
	default:
		return fmt.Sprintf("Frequently accessed (%d%% affinity)", pct)
	}
}
