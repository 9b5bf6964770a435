package cee

import (
	"context"
	"errors"
	"testing"
)

func TestService_Embed_PrimarySucceeds(t *testing.T) {
	primary := NewProvider("openai-3-small", TierPrimary, 1536, func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.1, 0.2}, nil
	})
	secondary := NewProvider("voyage-3-lite", TierSecondary, 512, func(ctx context.Context, text string) ([]float32, error) {
		t.Fatal("secondary should not be called when primary succeeds")
		return nil, nil
	})
	local := NewProvider("minilm-v6", TierLocal, 384, func(ctx context.Context, text string) ([]float32, error) {
		t.Fatal("local should not be called when primary succeeds")
		return nil, nil
	})
	svc := NewService(primary, secondary, local)

	result := svc.Embed(context.Background(), "[fact] prefix.", "body text")
	if result.Degraded {
		t.Fatalf("expected success, got degraded result")
	}
	if result.Provisional {
		t.Fatalf("primary-tier result should not be provisional")
	}
	if result.Model != "openai-3-small" {
		t.Fatalf("expected primary model, got %q", result.Model)
	}
}

func TestService_Embed_FallsBackToSecondary(t *testing.T) {
	permanent := &RetryableEmbedError{StatusCode: 401, Err: errors.New("unauthorized")}
	primary := NewProvider("openai-3-small", TierPrimary, 1536, func(ctx context.Context, text string) ([]float32, error) {
		return nil, permanent
	})
	secondary := NewProvider("voyage-3-lite", TierSecondary, 512, func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.3}, nil
	})
	local := NewProvider("minilm-v6", TierLocal, 384, func(ctx context.Context, text string) ([]float32, error) {
		t.Fatal("local should not be called when secondary succeeds")
		return nil, nil
	})
	svc := NewService(primary, secondary, local)

	result := svc.Embed(context.Background(), "prefix", "body")
	if result.Degraded {
		t.Fatalf("expected fallback success, got degraded result")
	}
	if !result.Provisional {
		t.Fatalf("secondary-tier result should be marked provisional")
	}
	if result.Model != "voyage-3-lite" {
		t.Fatalf("expected secondary model, got %q", result.Model)
	}
}

func TestService_Embed_AllProvidersExhausted(t *testing.T) {
	fail := errors.New("boom")
	failing := func(ctx context.Context, text string) ([]float32, error) { return nil, fail }
	primary := NewProvider("openai-3-small", TierPrimary, 1536, failing)
	secondary := NewProvider("voyage-3-lite", TierSecondary, 512, failing)
	local := NewProvider("minilm-v6", TierLocal, 384, failing)
	svc := NewService(primary, secondary, local)

	result := svc.Embed(context.Background(), "prefix", "body")
	if !result.Degraded {
		t.Fatalf("expected a degraded result when every provider fails")
	}
	if result.Err == nil {
		t.Fatalf("expected an error on a degraded result")
	}
}

func TestIsRetryableEmbedError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&RetryableEmbedError{StatusCode: 429}, true},
		{&RetryableEmbedError{StatusCode: 503}, true},
		{&RetryableEmbedError{StatusCode: 400}, false},
		{&RetryableEmbedError{StatusCode: 401}, false},
		{&RetryableEmbedError{StatusCode: 403}, false},
		{errors.New("connection reset"), true},
	}
	for _, c := range cases {
		if got := isRetryableEmbedError(c.err); got != c.want {
			t.Fatalf("isRetryableEmbedError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
