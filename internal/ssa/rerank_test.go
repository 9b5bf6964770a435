package ssa

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

func TestWeightProfileFor_SelectsBySubtypePrefix(t *testing.T) {
	cases := map[string]weights{
		"custom:lesson_algebra":  profileLesson,
		"custom:signal_mood":     profileSignal,
		"custom:episode_morning": profileEpisode,
		"":                       profileDefault,
		"concept":                profileDefault,
	}
	for subtype, want := range cases {
		if got := weightProfileFor(subtype); got != want {
			t.Fatalf("subtype %q: expected profile %v, got %v", subtype, want, got)
		}
	}
}

func TestRecencyScore_HalvesAtHalfLife(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	lastAccessed := now.Add(-24 * time.Hour) // exactly one half-life for academic/work
	got := recencyScore(now, lastAccessed, model.CategoryAcademic)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected exactly 0.5 at one half-life, got %v", got)
	}
}

func TestRecencyScore_ZeroValueLastAccessedIsZero(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	got := recencyScore(now, time.Time{}, model.CategoryGeneral)
	if got != 0 {
		t.Fatalf("expected 0 for unset last-accessed, got %v", got)
	}
}

func TestRerank_ComputesScoreAndPrimarySignal(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	store.avgDegree = 2
	store.rerank["n1"] = &ports.RerankRecord{
		ID:               "n1",
		LastAccessed:     now,
		AccessCount:      10,
		InboundEdgeCount: 4,
		Subtype:          "custom:signal_mood",
		Category:         model.CategoryConversation,
	}

	spread := &SpreadResult{Activations: map[string]*Activation{
		"n1": {NodeID: "n1", VectorScore: 0.9, BM25Score: 0.8, Activation: 0.6},
	}}

	scored, err := Rerank(context.Background(), store, spread, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected 1 scored node, got %d", len(scored))
	}
	sn := scored[0]
	if sn.Recency != 1.0 {
		t.Fatalf("expected recency 1.0 at zero elapsed time, got %v", sn.Recency)
	}
	// signal profile weights recency at 0.60, the dominant component here.
	if sn.PrimarySignal != "recency" {
		t.Fatalf("expected primary signal recency for a signal-subtype node, got %s", sn.PrimarySignal)
	}
	if len(sn.Explanations) != 1 {
		t.Fatalf("expected exactly one explanation, got %d", len(sn.Explanations))
	}
}

func TestRerank_SortsDescendingByScore(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	store.avgDegree = 2
	store.rerank["hi"] = &ports.RerankRecord{ID: "hi", LastAccessed: now, Category: model.CategoryGeneral}
	store.rerank["lo"] = &ports.RerankRecord{ID: "lo", LastAccessed: now.Add(-240 * time.Hour), Category: model.CategoryGeneral}

	spread := &SpreadResult{Activations: map[string]*Activation{
		"hi": {NodeID: "hi", VectorScore: 0.9, BM25Score: 0.9, Activation: 0.9},
		"lo": {NodeID: "lo", VectorScore: 0.1, BM25Score: 0.1, Activation: 0.1},
	}}

	scored, err := Rerank(context.Background(), store, spread, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != 2 || scored[0].ID != "hi" {
		t.Fatalf("expected hi to rank first, got %+v", scored)
	}
}

func TestRerank_SkipsNodesMissingRerankRecord(t *testing.T) {
	store := newFakeStore()
	spread := &SpreadResult{Activations: map[string]*Activation{
		"ghost": {NodeID: "ghost"},
	}}
	scored, err := Rerank(context.Background(), store, spread, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != 0 {
		t.Fatalf("expected no scored nodes for a missing rerank record, got %d", len(scored))
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-0.5) != 0 {
		t.Fatal("expected negative to clamp to 0")
	}
	if clamp01(1.5) != 1 {
		t.Fatal("expected >1 to clamp to 1")
	}
	if clamp01(0.3) != 0.3 {
		t.Fatal("expected in-range value to pass through")
	}
}
