package cee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
	"github.com/hynous/memory-core/pkg/resilience"
)

// ProviderTier names the three embedding providers in fallback order.
type ProviderTier string

const (
	TierPrimary   ProviderTier = "primary"
	TierSecondary ProviderTier = "secondary"
	TierLocal     ProviderTier = "local"
)

// Provider is a single embedding backend in the fallback chain.
type Provider struct {
	Name       string
	Tier       ProviderTier
	Dimensions int
	Embed      func(ctx context.Context, text string) ([]float32, error)
	breaker    *resilience.Breaker
}

// NewProvider wraps an embed function with its own circuit breaker so one
// flaky provider doesn't retry forever on every call.
func NewProvider(name string, tier ProviderTier, dims int, embed func(ctx context.Context, text string) ([]float32, error)) *Provider {
	return &Provider{
		Name:       name,
		Tier:       tier,
		Dimensions: dims,
		Embed:      embed,
		breaker:    resilience.NewBreaker(resilience.BreakerOpts{FailThreshold: 5, Timeout: 30 * time.Second, HalfOpenMax: 1}),
	}
}

// Service runs the context-prefix + provider-fallback embedding pipeline
// described in spec.md §4.3.
type Service struct {
	Providers []*Provider // openai-3-small, voyage-3-lite, minilm-v6 in order
}

// NewService builds an embedding service over the three-provider fallback
// chain: openai-3-small (1536d, primary) -> voyage-3-lite (512d, secondary)
// -> minilm-v6 (384d, local).
func NewService(primary, secondary, local *Provider) *Service {
	return &Service{Providers: []*Provider{primary, secondary, local}}
}

// Embed computes a node's embedding for the given context prefix and body,
// retrying each provider up to 2 times with a 1s backoff before advancing
// to the next, per spec.md §4.3.
func (s *Service) Embed(ctx context.Context, prefix, body string) ports.EmbedResult {
	text := prefix + " " + body
	for _, p := range s.Providers {
		if p == nil {
			continue
		}
		vec, err := s.tryProvider(ctx, p, text)
		if err == nil {
			return ports.EmbedResult{
				Vector:      vec,
				Dimensions:  p.Dimensions,
				Model:       p.Name,
				Provisional: p.Tier != TierPrimary,
			}
		}
	}
	return ports.EmbedResult{
		Degraded: true,
		Err:      errors.New("cee: all embedding providers exhausted"),
	}
}

func (s *Service) tryProvider(ctx context.Context, p *Provider, text string) ([]float32, error) {
	var vec []float32
	err := p.breaker.Call(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, resilience.RetryOpts{
			MaxAttempts: 2,
			Backoff:     time.Second,
			Retryable:   isRetryableEmbedError,
		}, func(ctx context.Context) error {
			v, err := p.Embed(ctx, text)
			if err != nil {
				return err
			}
			vec = v
			return nil
		})
	})
	return vec, err
}

// RetryableEmbedError marks a provider error as eligible for retry: HTTP
// 429, 5xx, or connection reset/timeout/network errors. 400/401/403 are
// not retried.
type RetryableEmbedError struct {
	StatusCode int
	Err        error
}

func (e *RetryableEmbedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("embed provider error (status %d)", e.StatusCode)
	}
	return e.Err.Error()
}

func (e *RetryableEmbedError) Unwrap() error { return e.Err }

func isRetryableEmbedError(err error) bool {
	var re *RetryableEmbedError
	if errors.As(err, &re) {
		if re.StatusCode == 429 || re.StatusCode >= 500 {
			return true
		}
		if re.StatusCode == 400 || re.StatusCode == 401 || re.StatusCode == 403 {
			return false
		}
	}
	return true
}

// BuildEmbedding assembles the model.Embedding record for a node whose
// provider call succeeded, computing the prefix hash per spec.md §4.3.
func BuildEmbedding(prefix string, result ports.EmbedResult, now time.Time, version int) model.Embedding {
	return model.Embedding{
		Vector:        result.Vector,
		Dimensions:    result.Dimensions,
		Model:         result.Model,
		ContextPrefix: prefix,
		ContextHash:   HashPrefix(prefix),
		CreatedAt:     now,
		Provisional:   result.Provisional,
		Version:       version,
	}
}

// NeedsReEmbedding reports whether emb's stored hash has drifted from the
// current prefix, or whether a provisional embedding should be retried now
// that a higher-tier provider has recovered.
func NeedsReEmbedding(emb model.Embedding, currentPrefix string, providerRecovered bool) bool {
	if emb.ContextHash != HashPrefix(currentPrefix) {
		return true
	}
	return emb.Provisional && providerRecovered
}
