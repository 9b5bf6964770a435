package ingest

import (
	"testing"

	"github.com/hynous/memory-core/internal/model"
)

func TestStage_DropsInvalidRecords(t *testing.T) {
	records := []model.StagingRecord{
		{Node: model.Node{Title: "", Body: "no title here"}},
		{Node: model.Node{Title: "ok", Body: ""}},
		{Node: model.Node{Title: "Good note", Body: "a valid body with enough content"}},
	}
	out := Stage(records, DedupThreshold)
	if len(out) != 1 {
		t.Fatalf("expected 1 valid record, got %d: %+v", len(out), out)
	}
	if out[0].Node.Title != "Good note" {
		t.Fatalf("got %+v", out[0])
	}
}

func TestStage_DropsDuplicatesWithinBatch(t *testing.T) {
	records := []model.StagingRecord{
		{Node: model.Node{Title: "First", Body: "the quick brown fox jumps over the lazy dog"}},
		{Node: model.Node{Title: "Second", Body: "the quick brown fox jumps over the lazy dog"}},
	}
	out := Stage(records, DedupThreshold)
	if len(out) != 1 {
		t.Fatalf("expected duplicate to be dropped, got %d: %+v", len(out), out)
	}
	if out[0].Node.Title != "First" {
		t.Fatalf("expected the earlier record to be kept, got %+v", out[0])
	}
}

func TestStage_KeepsDistinctRecords(t *testing.T) {
	records := []model.StagingRecord{
		{Node: model.Node{Title: "First", Body: "notes about the quarterly roadmap review"}},
		{Node: model.Node{Title: "Second", Body: "completely unrelated content about gardening"}},
	}
	out := Stage(records, DedupThreshold)
	if len(out) != 2 {
		t.Fatalf("expected both records kept, got %d: %+v", len(out), out)
	}
}

func TestJaccard(t *testing.T) {
	a := tokenSet("the quick brown fox")
	b := tokenSet("the quick brown fox")
	if got := jaccard(a, b); got != 1 {
		t.Fatalf("expected identical sets to score 1, got %v", got)
	}
	c := tokenSet("completely different words entirely")
	if got := jaccard(a, c); got != 0 {
		t.Fatalf("expected disjoint sets to score 0, got %v", got)
	}
}
