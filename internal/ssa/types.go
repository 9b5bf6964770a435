// Package ssa implements Seeded Spreading Activation retrieval: hybrid
// vector+BM25 seeding, bounded activation spread over the typed edge graph,
// and multi-signal reranking.
package ssa

import (
	"time"

	"github.com/hynous/memory-core/internal/model"
)

// QueryCombination selects how multiple query vectors are combined.
type QueryCombination string

const (
	CombineAverage    QueryCombination = "average"
	CombineMaxPooling QueryCombination = "max_pooling"
)

// SerendipityLevel names a preset for extras.Serendipity.
type SerendipityLevel string

const (
	SerendipityOff    SerendipityLevel = "off"
	SerendipityLow    SerendipityLevel = "low"
	SerendipityMedium SerendipityLevel = "medium"
	SerendipityHigh   SerendipityLevel = "high"
)

// Request is SSA's input per spec.md §4.4.
type Request struct {
	Queries            []string
	Filters            *FilterSpec
	SerendipityLevel   SerendipityLevel
	QueryCombination   QueryCombination
	Limit              int
	IncludeConnections bool
}

// DateRangeSpec bounds node CreatedAt.
type DateRangeSpec struct {
	After  *time.Time
	Before *time.Time
}

// SpreadConfig holds the activation-spread tunables, defaulted per
// spec.md §4.4.
type SpreadConfig struct {
	InitialActivation float64
	HopDecay          float64
	MinThreshold      float64
	MaxHops           int
	MaxNodes          int
	Aggregation       string // "sum" | "max"
}

// DefaultSpreadConfig matches spec.md §4.4's listed defaults.
func DefaultSpreadConfig() SpreadConfig {
	return SpreadConfig{
		InitialActivation: 0.5,
		HopDecay:          0.5,
		MinThreshold:      0.05,
		MaxHops:           3,
		MaxNodes:          200,
		Aggregation:       "sum",
	}
}

// SeedCandidate is one hybrid-seeding survivor.
type SeedCandidate struct {
	NodeID      string
	VectorScore float64
	BM25Score   float64
	Fused       float64
}

// Activation is one spread-activated node's state.
type Activation struct {
	NodeID      string
	Activation  float64
	HopDistance int
	Path        []string
	IsSeed      bool
	VectorScore float64
	BM25Score   float64
}

// SpreadResult is Step 3's output.
type SpreadResult struct {
	Activations       map[string]*Activation
	NodesVisited      int
	HopsCompleted     int
	TerminationReason string
}

// ScoredNode is Step 4's per-node working record.
type ScoredNode struct {
	ID               string
	SemanticScore    float64
	BM25Score        float64
	GraphScore       float64
	LastAccessed     time.Time
	CreatedAt        time.Time
	AccessCount      int
	InboundEdgeCount int
	Subtype          string
	Category         model.ContentCategory

	Semantic  float64
	Keyword   float64
	Graph     float64
	Recency   float64
	Authority float64
	Affinity  float64

	Score         float64
	PrimarySignal string
	Explanations  []string
}

// ConnectionEdge is one edge internal to the activated, filter-passing set.
type ConnectionEdge struct {
	From string
	To   string
	Type model.EdgeType
}

// Metrics records SSA's per-stage timing and bookkeeping.
type Metrics struct {
	SeedsFound        int
	NodesActivated    int
	HopsCompleted     int
	TerminationReason string
	SeedMs            int64
	SpreadMs          int64
	RerankMs          int64
	TotalMs           int64
}

// Result is SSA's final, assembled output.
type Result struct {
	RelevantNodes []string
	Scored        []ScoredNode
	Connections   []ConnectionEdge
	Serendipity   []string
	Metrics       Metrics
}
