// Package model defines the core data types of the memory graph: nodes,
// edges, embeddings, staging records, and the temporal and behavior models
// that ride alongside them.
package model

import (
	"strings"
	"time"
)

// NodeKind is the closed set of node kinds.
type NodeKind string

const (
	KindConcept  NodeKind = "concept"
	KindEpisode  NodeKind = "episode"
	KindChunk    NodeKind = "chunk"
	KindSection  NodeKind = "section"
	KindNote     NodeKind = "note"
	KindRaw      NodeKind = "raw"
	KindDocument NodeKind = "document"
)

// ValidNodeKinds is the recognised set of node kinds.
var ValidNodeKinds = map[NodeKind]bool{
	KindConcept: true, KindEpisode: true, KindChunk: true,
	KindSection: true, KindNote: true, KindRaw: true, KindDocument: true,
}

// ContentCategory is the coarse kind of information a node carries.
type ContentCategory string

const (
	CategoryIdentity     ContentCategory = "identity"
	CategoryAcademic     ContentCategory = "academic"
	CategoryConversation ContentCategory = "conversation"
	CategoryWork         ContentCategory = "work"
	CategoryTemporal     ContentCategory = "temporal"
	CategoryDocument     ContentCategory = "document"
	CategoryGeneral      ContentCategory = "general"
)

// ValidContentCategories is the recognised set of content categories.
var ValidContentCategories = map[ContentCategory]bool{
	CategoryIdentity: true, CategoryAcademic: true, CategoryConversation: true,
	CategoryWork: true, CategoryTemporal: true, CategoryDocument: true, CategoryGeneral: true,
}

// LifecycleState is the one-way (mostly) lifecycle of a node's retrievability.
type LifecycleState string

const (
	LifecycleActive  LifecycleState = "ACTIVE"
	LifecycleWeak    LifecycleState = "WEAK"
	LifecycleDormant LifecycleState = "DORMANT"
	LifecycleArchive LifecycleState = "ARCHIVE"
	LifecycleDeleted LifecycleState = "DELETED"
)

// CanTransition reports whether a lifecycle transition is permitted.
// ACTIVE -> WEAK -> DORMANT -> ARCHIVE -> DELETED is forward-only;
// ARCHIVE <-> DORMANT is the sole two-way edge.
func CanTransition(from, to LifecycleState) bool {
	order := []LifecycleState{LifecycleActive, LifecycleWeak, LifecycleDormant, LifecycleArchive, LifecycleDeleted}
	idx := func(s LifecycleState) int {
		for i, v := range order {
			if v == s {
				return i
			}
		}
		return -1
	}
	fi, ti := idx(from), idx(to)
	if fi < 0 || ti < 0 {
		return false
	}
	if from == LifecycleArchive && to == LifecycleDormant {
		return true
	}
	return ti == fi+1
}

// Node is a unit of memory in the graph.
type Node struct {
	ID             string
	Kind           NodeKind
	Subtype        string
	Title          string
	Body           string
	Category       ContentCategory
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Version        int
	Lifecycle      LifecycleState
	Retrievability float64
	AccessCount    int
	InboundEdges   int
	ClusterID      string
	Tags           []string
	Embedding      *Embedding
	Temporal       Temporal
}

// DeriveTitle implements the title invariant: first line, or first 100 chars
// trimmed, whichever is shorter.
func DeriveTitle(body string) string {
	body = strings.TrimSpace(body)
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[:nl]
	}
	runes := []rune(body)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return strings.TrimSpace(string(runes))
}

// ValidBody reports whether body satisfies the non-empty, >=3 char invariant.
func ValidBody(body string) bool {
	return len([]rune(strings.TrimSpace(body))) >= 3
}

// Touch bumps version and last-accessed time on mutation, per the
// strictly-increasing version invariant.
func (n *Node) Touch(now time.Time) {
	n.Version++
	n.LastAccessedAt = now
}
