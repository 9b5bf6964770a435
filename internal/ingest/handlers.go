package ingest

import (
	"time"

	"github.com/hynous/memory-core/internal/model"
)

// SessionState is the minimal per-session prompting state shouldPrompt
// needs; the actual session buffer lives externally (Accumulator's "per
// session buffer" in spec.md §4.2 is explicitly external to the core).
type SessionState struct {
	PromptsShown        int
	DismissedPrompts    int
	MessagesSincePrompt int
}

// AccumulatorFunc records an input into a per-session buffer; the buffer
// itself is an external collaborator per spec.md §4.2.
type AccumulatorFunc func(env Envelope)

// Process runs Stage 4 PROCESS for a classified, routed input.
func Process(env Envelope, c Classification, handler HandlerName, session SessionState, accumulate AccumulatorFunc, now time.Time) ProcessResult {
	switch handler {
	case HandlerDirectSave:
		return directSave(env, now)
	case HandlerAccumulator:
		if accumulate != nil {
			accumulate(env)
		}
		return ProcessResult{Action: ActionAccumulated}
	case HandlerQuery:
		return ProcessResult{Action: ActionQueried}
	case HandlerCommand:
		return ProcessResult{Action: ActionQueried}
	case HandlerResponse:
		return ProcessResult{Action: ActionQueried}
	case HandlerIgnore:
		return ProcessResult{Action: ActionIgnored}
	case HandlerPrompt:
		if !ShouldPrompt(c, session) {
			return ProcessResult{Action: ActionIgnored}
		}
		return ProcessResult{Action: ActionPrompted, UserResponse: ResponsePending}
	default:
		return ProcessResult{Action: ActionIgnored}
	}
}

func directSave(env Envelope, now time.Time) ProcessResult {
	text := env.Normalized.Text
	sourceType := model.SourceExtraction
	if env.Options.ForceSave {
		sourceType = model.SourceManual
	}
	node := model.Node{
		Kind:  model.KindConcept,
		Title: model.DeriveTitle(text),
		Body:  text,
	}
	rec := model.StagingRecord{
		Node: node,
		Provenance: model.Provenance{
			SourceType: sourceType,
			InputID:    env.ID,
			SessionID:  env.Context.SessionID,
			Timestamp:  now,
		},
		Confidence: 1.0,
	}
	return ProcessResult{Action: ActionSaved, Staged: []model.StagingRecord{rec}}
}

// ShouldPrompt implements spec.md §4.2's gating for the Prompt handler:
// false unless saveSignal=unclear, complexity != atomic, confidence is
// below the category's prompt threshold, the session hasn't exhausted its
// prompt/dismissal budget, and (once a prompt has been shown) enough
// messages have passed since the last one.
func ShouldPrompt(c Classification, session SessionState) bool {
	if c.SaveSignal != SignalUnclear {
		return false
	}
	if c.Complexity == ComplexityAtomic {
		return false
	}
	thresholds := ThresholdsFor(c.ContentCategory)
	if c.Confidence >= thresholds.Prompt {
		return false
	}
	if !(session.PromptsShown < 3 || session.DismissedPrompts < 2) {
		return false
	}
	if session.PromptsShown >= 1 && session.MessagesSincePrompt < 5 {
		return false
	}
	return true
}
