package model

import "time"

// SourceType identifies how a staging record came to exist.
type SourceType string

const (
	SourceExtraction SourceType = "extraction"
	SourceManual     SourceType = "manual"
	SourceImport     SourceType = "import"
)

// Provenance records where a staged node came from.
type Provenance struct {
	SourceType SourceType
	InputID    string
	SessionID  string
	Timestamp  time.Time
}

// SuggestedEdge becomes an Edge on commit if its staged node is committed.
type SuggestedEdge struct {
	To     string
	Type   EdgeType
	Weight float64
}

// StagingRecord is a transient node proposed by ingestion before commit.
// It is destroyed whether commit succeeds or the record is rejected.
type StagingRecord struct {
	Node           Node
	Provenance     Provenance
	Confidence     float64
	SuggestedEdges []SuggestedEdge
}
