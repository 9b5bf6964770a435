package gate

import (
	"context"
	"log/slog"
	"time"

	"github.com/hynous/memory-core/internal/ports"
)

// AuditEntry is the wire-visible, one-per-non-PASS-decision audit log line
// from spec.md §6. The core never stores raw rejected text, only its hash.
type AuditEntry struct {
	Timestamp  time.Time
	UserID     string
	SessionID  string
	InputHash  string
	InputLen   int
	Decision   Decision
	Reasons    []string
	Confidence float64
	LatencyMs  float64
}

// Audit builds and logs an AuditEntry for any non-PASS decision. PASS
// decisions are not logged, matching spec.md §6 ("one per non-PASS
// decision").
func Audit(ctx context.Context, log *slog.Logger, hasher ports.HashPort, e Envelope, userID, sessionID string, r Result, now time.Time) *AuditEntry {
	if r.Decision == Pass {
		return nil
	}
	entry := AuditEntry{
		Timestamp:  now,
		UserID:     userID,
		SessionID:  sessionID,
		InputHash:  hasher.Hash([]byte(e.Text)),
		InputLen:   len([]rune(e.Text)),
		Decision:   r.Decision,
		Reasons:    r.Reasons,
		Confidence: r.Confidence,
		LatencyMs:  r.LatencyMs,
	}
	if log != nil {
		log.InfoContext(ctx, "gate decision",
			slog.String("decision", string(entry.Decision)),
			slog.String("user_id", entry.UserID),
			slog.String("session_id", entry.SessionID),
			slog.String("input_hash", entry.InputHash),
			slog.Int("input_len", entry.InputLen),
			slog.Any("reasons", entry.Reasons),
			slog.Float64("confidence", entry.Confidence),
			slog.Float64("latency_ms", entry.LatencyMs),
		)
	}
	return &entry
}
