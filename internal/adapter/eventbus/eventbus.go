// Package eventbus implements ports.EventPort over NATS, for the
// fire-and-forget notifications ingestion and CEE emit around commit and
// similarity maintenance (spec.md §7: writes other than commit are
// log-and-swallow and must never fail a commit).
package eventbus

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/hynous/memory-core/internal/ports"
	"github.com/hynous/memory-core/pkg/natsutil"
)

var _ ports.EventPort = (*NATS)(nil)

// NATS publishes JSON-encoded payloads via pkg/natsutil's typed helper,
// the same publish idiom the teacher uses for its own event notifications.
// A failed publish is logged (when a logger is set) and returned; the
// ingest committer discards that error, so it never fails a commit.
type NATS struct {
	conn *nats.Conn
	log  *slog.Logger
}

// New wraps an already-connected NATS conn. log may be nil.
func New(conn *nats.Conn, log *slog.Logger) *NATS {
	return &NATS{conn: conn, log: log}
}

// Publish sends payload as JSON to subject. A publish error is logged when
// a logger is set and returned to the caller; a nil receiver or connection
// publishes nothing and returns nil.
func (n *NATS) Publish(ctx context.Context, subject string, payload any) error {
	if n == nil || n.conn == nil {
		return nil
	}
	if err := natsutil.Publish(ctx, n.conn, subject, payload); err != nil {
		if n.log != nil {
			n.log.WarnContext(ctx, "event publish failed",
				slog.String("subject", subject),
				slog.Any("err", err))
		}
		return err
	}
	return nil
}
