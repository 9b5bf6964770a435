package embedproviders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hynous/memory-core/internal/cee"
)

// MiniLMModel is the local-tier embedding model, 384 dimensions per
// spec.md §4.3's fallback chain: the last resort when both cloud providers
// are unreachable.
const MiniLMModel = "minilm-v6"

// MiniLMDimensions is all-MiniLM-L6-v2's native dimensionality.
const MiniLMDimensions = 384

type miniLMClient struct {
	baseURL string
	http    *http.Client
}

type miniLMRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type miniLMResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (c *miniLMClient) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(miniLMRequest{Model: MiniLMModel, Prompt: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("minilm embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &cee.RetryableEmbedError{StatusCode: resp.StatusCode, Err: fmt.Errorf("minilm embed: status %d", resp.StatusCode)}
	}

	var out miniLMResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("minilm embed decode: %w", err)
	}
	return out.Embedding, nil
}

// NewMiniLMProvider builds the local-tier cee.Provider backed by a
// locally-served embedding model speaking the Ollama embeddings API,
// following the teacher's pkg/ollama.EmbedClient HTTP idiom.
func NewMiniLMProvider(baseURL string) *cee.Provider {
	c := &miniLMClient{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
	return cee.NewProvider(MiniLMModel, cee.TierLocal, MiniLMDimensions, c.embed)
}
