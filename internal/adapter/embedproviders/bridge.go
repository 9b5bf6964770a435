package embedproviders

import (
	"context"

	"github.com/hynous/memory-core/internal/cee"
	"github.com/hynous/memory-core/internal/ports"
	"github.com/hynous/memory-core/pkg/fn"
)

// queryEmbedWorkers bounds concurrency for SSA's multi-query batch embed,
// mirroring internal/ingest/committer.go's commit-time embedWorkers.
const queryEmbedWorkers = 4

// ServiceBridge adapts a *cee.Service's single-text Embed(prefix, body) to
// ports.EmbedPort's batch Embed(texts) shape, for SSA's query embedding
// (spec.md §5.1 step 1). Queries carry no node context, so the prefix is
// always empty.
type ServiceBridge struct {
	Service *cee.Service
}

var _ ports.EmbedPort = ServiceBridge{}

// Embed runs one cee.Service.Embed call per text with bounded concurrency.
func (b ServiceBridge) Embed(ctx context.Context, texts []string) ([]ports.EmbedResult, error) {
	stage := fn.Stage[string, ports.EmbedResult](func(ctx context.Context, text string) fn.Result[ports.EmbedResult] {
		return fn.Ok(b.Service.Embed(ctx, "", text))
	})
	batch := fn.BatchStage(queryEmbedWorkers, stage)
	return batch(ctx, texts).Unwrap()
}
