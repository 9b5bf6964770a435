// Package main wires the CORE (gate, ingest, CEE, SSA) to its concrete
// adapters and exposes the two operations an external caller needs: ingest
// an input, and run an SSA query. HTTP framing itself is an external
// collaborator per spec.md §1 — this is the thinnest possible shim to make
// the wiring runnable, following the teacher's cmd/api/main.go shape
// (Config/loadConfig/envOr, signal-driven graceful shutdown, mid.Chain).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/hynous/memory-core/internal/adapter/behaviorstore"
	"github.com/hynous/memory-core/internal/adapter/bm25store"
	"github.com/hynous/memory-core/internal/adapter/embedproviders"
	"github.com/hynous/memory-core/internal/adapter/eventbus"
	"github.com/hynous/memory-core/internal/adapter/hashport"
	"github.com/hynous/memory-core/internal/adapter/neo4jstore"
	"github.com/hynous/memory-core/internal/adapter/qdrantstore"
	"github.com/hynous/memory-core/internal/adapter/store"
	"github.com/hynous/memory-core/internal/cee"
	"github.com/hynous/memory-core/internal/gate"
	"github.com/hynous/memory-core/internal/ingest"
	"github.com/hynous/memory-core/internal/ssa"
	"github.com/hynous/memory-core/pkg/fn"
	"github.com/hynous/memory-core/pkg/metrics"
	"github.com/hynous/memory-core/pkg/mid"
)

// Config holds all environment-based configuration.
type Config struct {
	Port       string
	Neo4jURL   string
	Neo4jUser  string
	Neo4jPass  string
	QdrantURL  string
	QdrantColl string
	NatsURL    string
	CORSOrigin string
	OpenAIKey  string
	VoyageKey  string
	MiniLMURL  string
}

func loadConfig() Config {
	return Config{
		Port:       envOr("PORT", "8080"),
		Neo4jURL:   envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:  envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:  envOr("NEO4J_PASS", "password"),
		QdrantURL:  envOr("QDRANT_URL", "localhost:6334"),
		QdrantColl: envOr("QDRANT_COLLECTION", "memory-core"),
		NatsURL:    envOr("NATS_URL", nats.DefaultURL),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
		OpenAIKey:  envOr("OPENAI_API_KEY", ""),
		VoyageKey:  envOr("VOYAGE_API_KEY", ""),
		MiniLMURL:  envOr("MINILM_URL", "http://localhost:11434"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer neo4jDriver.Close(ctx)
	graphStore := neo4jstore.New(neo4jDriver)

	vectorStore, err := qdrantstore.New(cfg.QdrantURL, cfg.QdrantColl)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	bm25Index, err := bm25store.New()
	if err != nil {
		return fmt.Errorf("bm25 index: %w", err)
	}
	defer bm25Index.Close()

	st := &store.Store{Graph: graphStore, Vector: vectorStore, BM25: bm25Index, Logger: logger}

	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		logger.Warn("nats connect failed, events disabled", "err", err)
	} else {
		defer nc.Close()
	}
	events := eventbus.New(nc, logger)

	embedSvc := cee.NewService(
		embedproviders.NewOpenAIProvider(cfg.OpenAIKey),
		embedproviders.NewVoyageProvider(cfg.VoyageKey),
		embedproviders.NewMiniLMProvider(cfg.MiniLMURL),
	)
	queryEmbed := embedproviders.ServiceBridge{Service: embedSvc}

	behavior := behaviorstore.New()
	hasher := hashport.New()

	deps := ingest.Deps{
		Gate: func(env ingest.Envelope) *ingest.GateOutcome {
			ge := gate.Envelope{Text: env.Normalized.Text, Source: gate.Source(env.Source), Metadata: gate.Metadata{ForceSave: env.Options.ForceSave}}
			r := gate.Run(ge, gate.DefaultConfig())
			gate.Audit(context.Background(), logger, hasher, ge, env.Context.UserID, env.Context.SessionID, r, time.Now())
			return &ingest.GateOutcome{Rejected: r.Decision == gate.Reject, Confidence: r.Confidence}
		},
		Store:  st,
		Events: events,
		Embed:  embedSvc,
		Now:    time.Now,
		Logger: logger,
	}
	pipeline := ingest.NewPipeline(deps)

	ssaDeps := ssa.Deps{Store: st, Embed: queryEmbed, Now: time.Now, Logger: logger}

	reg := metrics.New()
	ingestRequests := reg.Counter("memoryd_ingest_requests_total", "total /v1/ingest requests")
	ingestLatency := reg.Histogram("memoryd_ingest_duration_seconds", "ingest pipeline latency", metrics.DefaultBuckets)
	queryRequests := reg.Counter("memoryd_query_requests_total", "total /v1/query requests")
	queryLatency := reg.Histogram("memoryd_query_duration_seconds", "SSA query latency", metrics.DefaultBuckets)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("POST /v1/ingest", handleIngest(pipeline, behavior, ingestRequests, ingestLatency))
	mux.HandleFunc("POST /v1/query", handleQuery(ssaDeps, queryRequests, queryLatency))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("memoryd starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// IngestRequest is the JSON body for POST /v1/ingest.
type IngestRequest struct {
	Text      string            `json:"text"`
	Source    string            `json:"source"`
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id"`
	ForceSave bool              `json:"force_save"`
	Mode      string            `json:"mode,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// IngestResponse is the JSON response for POST /v1/ingest.
type IngestResponse struct {
	Action     string   `json:"action"`
	CreatedIDs []string `json:"created_ids,omitempty"`
	UpdatedIDs []string `json:"updated_ids,omitempty"`
	LinkedIDs  []string `json:"linked_ids,omitempty"`
}

func handleIngest(pipeline fn.Stage[ingest.Envelope, ingest.CommitOutcome], behavior *behaviorstore.Memory, requests *metrics.Counter, latency *metrics.Histogram) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requests.Inc()
		defer func() { latency.Since(start) }()

		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Text == "" {
			http.Error(w, `{"error":"text is required"}`, http.StatusBadRequest)
			return
		}

		now := time.Now()
		raw := ingest.RawInput{
			Source:  ingest.Source(req.Source),
			Mode:    ingest.Mode(req.Mode),
			Text:    req.Text,
			Context: ingest.InputContext{SessionID: req.SessionID, UserID: req.UserID},
			Options: ingest.Options{ForceSave: req.ForceSave},
		}
		if raw.Source == "" {
			raw.Source = ingest.SourceAPI
		}
		env := ingest.Receive(raw, now)

		outcome, err := pipeline(r.Context(), env).Unwrap()
		if err != nil {
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		action := ingest.ActionQueried
		if len(outcome.Created) > 0 || len(outcome.Updated) > 0 {
			action = ingest.ActionSaved
		}
		behavior.RecordSave(r.Context(), req.UserID, action == ingest.ActionSaved)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(IngestResponse{
			Action:     string(action),
			CreatedIDs: outcome.Created,
			UpdatedIDs: outcome.Updated,
			LinkedIDs:  outcome.Linked,
		})
	}
}

func handleQuery(deps ssa.Deps, requests *metrics.Counter, latency *metrics.Histogram) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requests.Inc()
		defer func() { latency.Since(start) }()

		var req ssaQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
			return
		}

		result, err := ssa.Execute(r.Context(), deps, ssa.Request{
			Queries:            []string{req.Query},
			Limit:              req.Limit,
			IncludeConnections: req.IncludeConnections,
		})
		if err != nil {
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

type ssaQueryRequest struct {
	Query              string `json:"query"`
	Limit              int    `json:"limit,omitempty"`
	IncludeConnections bool   `json:"include_connections,omitempty"`
}
