// Package ports declares the narrow external interfaces the CORE depends on.
// Concrete implementations live under internal/adapter/*; the CORE never
// imports an adapter package directly.
package ports

import (
	"context"
	"time"

	"github.com/hynous/memory-core/internal/model"
)

// NeighborEdge is one hop returned by StorePort.GetNeighbors.
type NeighborEdge struct {
	Node   model.Node
	Edge   model.Edge
	Weight float64
}

// ScoredHit is a single search hit; Score semantics are documented per method.
type ScoredHit struct {
	NodeID string
	Score  float64
}

// GraphMetrics summarizes global graph shape, used by the reranker's
// authority signal.
type GraphMetrics struct {
	TotalNodes int
	TotalEdges int
	AvgDegree  float64
}

// RerankRecord is the thin projection of a node needed by the SSA reranker
// and by CEE similarity maintenance.
type RerankRecord struct {
	ID               string
	LastAccessed     time.Time
	CreatedAt        time.Time
	AccessCount      int
	InboundEdgeCount int
	Subtype          string
	// Category drives the reranker's recency half-life table.
	Category model.ContentCategory
	// Vector is the node's stored embedding, if any, used for similarity
	// comparisons. Nil when the node has no embedding.
	Vector []float32
}

// StorePort is the persistence boundary: node/edge reads, vector and BM25
// search, graph metrics, and commit. The CORE makes no locking assumptions;
// SSA reads are expected to observe "some prefix of committed state."
type StorePort interface {
	GetNode(ctx context.Context, id string) (*model.Node, error)
	GetNeighbors(ctx context.Context, nodeID string) ([]NeighborEdge, error)
	// VectorSearch returns hits in cosine-similarity-descending order, Score in [0,1].
	VectorSearch(ctx context.Context, vector []float32, limit int) ([]ScoredHit, error)
	// BM25Search returns hits with Score >= 0, not normalized.
	BM25Search(ctx context.Context, terms []string, limit int) ([]ScoredHit, error)
	GetGraphMetrics(ctx context.Context) (GraphMetrics, error)
	GetNodeForReranking(ctx context.Context, id string) (*RerankRecord, error)
	// RecentlyEmbedded returns up to limit node ids most recently embedded,
	// newest first, for CEE similarity-edge maintenance.
	RecentlyEmbedded(ctx context.Context, limit int) ([]string, error)
	// Commit persists staged nodes and edges atomically from the caller's
	// point of view: any failure means no partial commit.
	Commit(ctx context.Context, staged []model.StagingRecord, edges []model.Edge) (CommitResult, error)
}

// CommitResult reports what a Commit call actually did.
type CommitResult struct {
	CreatedIDs []string
	UpdatedIDs []string
	LinkedEdgeIDs []string
}

// EmbedPort embeds a batch of texts. The CORE passes either one
// query-combined text or one text per node.
type EmbedPort interface {
	Embed(ctx context.Context, texts []string) ([]EmbedResult, error)
}

// EmbedResult is a single embedding outcome, possibly degraded.
type EmbedResult struct {
	Vector      []float32
	Dimensions  int
	Model       string
	Provisional bool
	Degraded    bool
	Err         error
}

// BehaviorPort reads and records the per-user behavior model.
type BehaviorPort interface {
	Load(ctx context.Context, userID string) (*model.UserBehaviorModel, error)
	RecordPrompt(ctx context.Context, userID string, wasShown bool)
	RecordSave(ctx context.Context, userID string, wasSaved bool)
}

// LLMClassification is the partial classification result produced by the
// LLM fallback stub.
type LLMClassification struct {
	Intent      string
	SaveSignal  string
	Confidence  float64
}

// LLMPort is the stub classification fallback. Its behavior beyond the
// default implementation is deliberately unspecified (spec.md §9).
type LLMPort interface {
	ClassifyText(ctx context.Context, text string) (LLMClassification, error)
}

// HashPort produces the audit log's content hash. The CORE never stores raw
// rejected text, only this hash.
type HashPort interface {
	Hash(data []byte) string
}

// EventPort publishes a fire-and-forget notification; failures are
// log-and-swallow and must never fail a commit (spec.md §7).
type EventPort interface {
	Publish(ctx context.Context, subject string, payload any) error
}
