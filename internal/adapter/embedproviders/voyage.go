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

// VoyageModel is the secondary-tier embedding model, 512 dimensions per
// spec.md §4.3's fallback chain.
const VoyageModel = "voyage-3-lite"

// VoyageDimensions is voyage-3-lite's native dimensionality.
const VoyageDimensions = 512

const voyageEndpoint = "https://api.voyageai.com/v1/embeddings"

type voyageClient struct {
	apiKey string
	http   *http.Client
}

type voyageRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *voyageClient) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(voyageRequest{Input: []string{text}, Model: VoyageModel})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, voyageEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voyage embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &cee.RetryableEmbedError{StatusCode: resp.StatusCode, Err: fmt.Errorf("voyage embed: status %d", resp.StatusCode)}
	}

	var out voyageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("voyage embed decode: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("voyage embed: empty response")
	}
	return out.Data[0].Embedding, nil
}

// NewVoyageProvider builds the secondary-tier cee.Provider backed by the
// Voyage AI embeddings API.
func NewVoyageProvider(apiKey string) *cee.Provider {
	c := &voyageClient{apiKey: apiKey, http: &http.Client{Timeout: 30 * time.Second}}
	return cee.NewProvider(VoyageModel, cee.TierSecondary, VoyageDimensions, c.embed)
}
