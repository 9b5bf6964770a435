// Package behaviorstore implements ports.BehaviorPort as an in-process,
// mutex-guarded per-user table. spec.md §1 treats the persistence store as
// an external collaborator; the per-user behavior prior has no dedicated
// store of its own in the retrieval pack, so this adapter gives cmd/memoryd
// something to run against rather than leaving BehaviorPort unimplemented.
// A real deployment swaps this for a row in the same store the rest of the
// graph lives in.
package behaviorstore

import (
	"context"
	"sync"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

var _ ports.BehaviorPort = (*Memory)(nil)

// Memory is a thread-safe, per-user UserBehaviorModel table, guarded the
// same way pkg/resilience.Limiter guards its per-key token state.
type Memory struct {
	mu    sync.Mutex
	users map[string]*model.UserBehaviorModel
}

// New returns an empty behavior table.
func New() *Memory {
	return &Memory{users: make(map[string]*model.UserBehaviorModel)}
}

// Load returns the stored model for userID, or nil if never recorded.
func (m *Memory) Load(ctx context.Context, userID string) (*model.UserBehaviorModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) get(userID string) *model.UserBehaviorModel {
	u, ok := m.users[userID]
	if !ok {
		u = &model.UserBehaviorModel{}
		m.users[userID] = u
	}
	return u
}

// RecordPrompt tallies a prompt: a shown prompt increments PromptsShown and
// resets MessagesSincePrompt, a dismissed one increments DismissedPrompts.
// PromptResponseRate is left unchanged. It never fails the caller (spec.md
// §7: writes other than commit are log-and-swallow).
func (m *Memory) RecordPrompt(ctx context.Context, userID string, wasShown bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.get(userID)
	if wasShown {
		u.Session.PromptsShown++
		u.Session.MessagesSincePrompt = 0
		return
	}
	u.DismissedPrompts++
}

// RecordSave nudges TypicalSaveRate toward 1 (saved) or 0 (not saved) with
// a simple exponential moving average.
func (m *Memory) RecordSave(ctx context.Context, userID string, wasSaved bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.get(userID)
	const alpha = 0.1
	target := 0.0
	if wasSaved {
		target = 1.0
	}
	u.TypicalSaveRate = u.TypicalSaveRate + alpha*(target-u.TypicalSaveRate)
	u.Session.MessagesSincePrompt++
}
