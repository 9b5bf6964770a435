package ingest

import (
	"context"
	"time"

	"github.com/hynous/memory-core/internal/cee"
	"github.com/hynous/memory-core/internal/idgen"
	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
	"github.com/hynous/memory-core/pkg/fn"
)

// embedWorkers bounds the concurrency of per-node commit-time embedding,
// per SPEC_FULL.md §5's "bounded concurrency" requirement.
const embedWorkers = 4

// ThoughtPathEntry records one node the commit touched, with the
// confidence the pipeline had in including it.
type ThoughtPathEntry struct {
	NodeID     string
	Confidence float64
	Role       string // "accessed" | "created" | "updated"
}

// CommitOutcome is Stage 6 COMMIT's output.
type CommitOutcome struct {
	Created     []string
	Updated     []string
	Linked      []string
	ThoughtPath []ThoughtPathEntry
	Timestamp   time.Time
}

// EventSubjectCommitted is the subject ingestion commits are published to.
const EventSubjectCommitted = "memory.ingest.committed"

// Commit runs Stage 6 COMMIT: assign stable ids, embed each node in
// parallel (when an embedding service is supplied), persist through the
// store port, and publish a fire-and-forget commit notification. Any store
// failure surfaces as a fatal error with no partial commit, per spec.md
// §4.2.
func Commit(ctx context.Context, store ports.StorePort, events ports.EventPort, embed *cee.Service, records []model.StagingRecord, now time.Time) (CommitOutcome, error) {
	var edges []model.Edge
	for i := range records {
		rec := &records[i]
		if rec.Node.ID == "" {
			rec.Node.ID = idgen.New(idgen.PrefixNode, now.UnixMilli())
		}
		for _, se := range rec.SuggestedEdges {
			edges = append(edges, model.Edge{
				ID:     idgen.New(idgen.PrefixEdge, now.UnixMilli()),
				From:   rec.Node.ID,
				To:     se.To,
				Type:   se.Type,
				Weight: se.Weight,
			})
		}
	}

	if embed != nil {
		records = embedRecords(ctx, embed, records, now)
		edges = append(edges, maintainSimilarity(ctx, store, records, now)...)
	}

	result, err := store.Commit(ctx, records, edges)
	if err != nil {
		return CommitOutcome{}, err
	}

	outcome := CommitOutcome{
		Created:   result.CreatedIDs,
		Updated:   result.UpdatedIDs,
		Linked:    result.LinkedEdgeIDs,
		Timestamp: now,
	}
	for i, id := range result.CreatedIDs {
		conf := 1.0
		if i < len(records) {
			conf = records[i].Confidence
		}
		outcome.ThoughtPath = append(outcome.ThoughtPath, ThoughtPathEntry{NodeID: id, Confidence: conf, Role: "created"})
	}
	for _, id := range result.UpdatedIDs {
		outcome.ThoughtPath = append(outcome.ThoughtPath, ThoughtPathEntry{NodeID: id, Confidence: 1.0, Role: "updated"})
	}

	if events != nil {
		// Commit notification is fire-and-forget: publish failures are
		// logged by the adapter and never fail the commit itself.
		_ = events.Publish(ctx, EventSubjectCommitted, outcome)
	}

	return outcome, nil
}

// embedRecords computes each record's context-prefixed embedding with
// bounded concurrency via fn.BatchStage, mirroring the teacher's
// ParsedDoc->ChunkedDoc->EmbeddedDoc parallel-embed stage. A record whose
// provider chain is fully exhausted keeps its (possibly nil) embedding and
// is committed degraded rather than dropped — losing a thought is worse
// than storing it unembedded.
func embedRecords(ctx context.Context, embed *cee.Service, records []model.StagingRecord, now time.Time) []model.StagingRecord {
	stage := fn.Stage[model.StagingRecord, model.StagingRecord](func(ctx context.Context, rec model.StagingRecord) fn.Result[model.StagingRecord] {
		prefix := cee.GenerateContextPrefix(embedPrefixInput(rec))
		result := embed.Embed(ctx, prefix, rec.Node.Body)
		if !result.Degraded {
			emb := cee.BuildEmbedding(prefix, result, now, rec.Node.Version+1)
			rec.Node.Embedding = &emb
		}
		return fn.Ok(rec)
	})
	batch := fn.BatchStage(embedWorkers, stage)
	out, _ := batch(ctx, records).Unwrap()
	return out
}

// similarityJob pairs a freshly embedded node with the vector to compare
// against the store's recent history.
type similarityJob struct {
	nodeID string
	vector []float32
}

// maintainSimilarity runs cee.MaintainSimilarity for every node this commit
// just embedded, with the same bounded concurrency as embedRecords, and
// returns the similar_to edges that should be committed alongside it. A
// maintenance failure for one node is swallowed, without logging, rather
// than failing the whole commit: the edge is advisory, and the next commit that
// touches either node will recompute it.
func maintainSimilarity(ctx context.Context, store ports.StorePort, records []model.StagingRecord, now time.Time) []model.Edge {
	var jobs []similarityJob
	for _, rec := range records {
		if rec.Node.Embedding == nil || len(rec.Node.Embedding.Vector) == 0 {
			continue
		}
		jobs = append(jobs, similarityJob{nodeID: rec.Node.ID, vector: rec.Node.Embedding.Vector})
	}
	if len(jobs) == 0 {
		return nil
	}

	stage := fn.Stage[similarityJob, []model.Edge](func(ctx context.Context, job similarityJob) fn.Result[[]model.Edge] {
		found, err := cee.MaintainSimilarity(ctx, store, job.nodeID, job.vector)
		if err != nil {
			return fn.Ok[[]model.Edge](nil)
		}
		edges := make([]model.Edge, 0, len(found))
		for _, se := range found {
			edges = append(edges, model.Edge{
				ID:     idgen.New(idgen.PrefixEdge, now.UnixMilli()),
				From:   job.nodeID,
				To:     se.TargetID,
				Type:   model.EdgeSimilarTo,
				Weight: se.Similarity,
			})
		}
		return fn.Ok(edges)
	})
	batch := fn.BatchStage(embedWorkers, stage)
	out, _ := batch(ctx, jobs).Unwrap()

	var edges []model.Edge
	for _, e := range out {
		edges = append(edges, e...)
	}
	return edges
}

func embedPrefixInput(rec model.StagingRecord) cee.PrefixInput {
	return cee.PrefixInput{
		NodeType:    rec.Node.Kind,
		NodeSubtype: rec.Node.Subtype,
		SourceType:  rec.Provenance.SourceType,
		Title:       rec.Node.Title,
		Body:        rec.Node.Body,
	}
}
