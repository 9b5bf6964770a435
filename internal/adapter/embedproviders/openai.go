// Package embedproviders wires cee.Provider's embed function to concrete
// embedding backends: OpenAI (primary tier) via the official SDK, Voyage AI
// (secondary tier) and a local model server (local tier) over plain HTTP,
// following the teacher's pkg/ollama.EmbedClient HTTP idiom.
package embedproviders

import (
	"context"
	"fmt"

	"github.com/hynous/memory-core/internal/cee"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"
)

// OpenAIModel is the default primary-tier embedding model, 1536 dimensions
// per spec.md §4.3's three-tier fallback chain.
const OpenAIModel = "text-embedding-3-small"

// OpenAIDimensions is openai-3-small's native dimensionality.
const OpenAIDimensions = 1536

// NewOpenAIProvider builds the primary-tier cee.Provider backed by the
// OpenAI embeddings API.
func NewOpenAIProvider(apiKey string, opts ...option.RequestOption) *cee.Provider {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(clientOpts...)

	return cee.NewProvider(OpenAIModel, cee.TierPrimary, OpenAIDimensions, func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfString: param.NewOpt(text)},
			Model: OpenAIModel,
		})
		if err != nil {
			return nil, fmt.Errorf("embedproviders: openai embed: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("embedproviders: openai returned no embeddings")
		}
		vec := make([]float32, len(resp.Data[0].Embedding))
		for i, v := range resp.Data[0].Embedding {
			vec[i] = float32(v)
		}
		return vec, nil
	})
}
