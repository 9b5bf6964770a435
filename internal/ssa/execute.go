package ssa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// ErrNoQueries is returned when a Request carries no query text.
var ErrNoQueries = errors.New("ssa: at least one query is required")

const (
	// DefaultLimit and MaxLimit bound Step 5's final result size.
	DefaultLimit = 30
	MaxLimit     = 100

	// spreadBudgetPerHop is the per-hop slice of SSA's wall-clock budget;
	// the overall Spread call gets MaxHops * this duration before it is
	// cut off with termination reason "max_hops".
	spreadBudgetPerHop = 100 * time.Millisecond
)

// Deps holds SSA's external dependencies.
type Deps struct {
	Store        ports.StorePort
	Embed        ports.EmbedPort
	SpreadConfig SpreadConfig
	Now          func() time.Time
	Logger       *slog.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Deps) spreadConfig() SpreadConfig {
	if d.SpreadConfig == (SpreadConfig{}) {
		return DefaultSpreadConfig()
	}
	return d.SpreadConfig
}

// Execute runs the full SSA retrieval algorithm: compile filters, embed and
// combine the query set, hybrid-seed, spread activation across the graph,
// rerank, and assemble the final result with optional connections and
// serendipity picks.
func Execute(ctx context.Context, deps Deps, req Request) (Result, error) {
	start := deps.now()
	log := deps.logger()

	if len(req.Queries) == 0 {
		return Result{}, ErrNoQueries
	}

	// Step 0: compile the filter before any I/O so a malformed filter never
	// reaches the store.
	compiled, err := Compile(req.Filters, start)
	if err != nil {
		return Result{}, err
	}
	if compiled.ConnectedTo != "" {
		reachable, err := reachableSet(ctx, deps.Store, compiled)
		if err != nil {
			return Result{}, err
		}
		baseNode := compiled.Node
		compiled.Node = func(n *model.Node) bool {
			if !reachable[n.ID] {
				return false
			}
			return baseNode(n)
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	// Step 1: embed and combine the query set.
	embedded, err := deps.Embed.Embed(ctx, req.Queries)
	if err != nil {
		return Result{}, err
	}
	vectors := make([][]float32, 0, len(embedded))
	for _, e := range embedded {
		if e.Err != nil {
			continue
		}
		vectors = append(vectors, e.Vector)
	}
	combinedVec := CombineVectors(vectors, req.QueryCombination)
	bm25Terms := CombineBM25Terms(req.Queries)

	seedStart := deps.now()
	seeds, err := HybridSeed(ctx, deps.Store, combinedVec, bm25Terms, compiled.Node)
	if err != nil {
		return Result{}, err
	}
	seedMs := deps.now().Sub(seedStart).Milliseconds()

	if len(seeds) == 0 {
		log.Debug("ssa.execute.no_seeds", "queries", len(req.Queries))
		return Result{
			Metrics: Metrics{
				SeedsFound:        0,
				TerminationReason: "no_seeds",
				SeedMs:            seedMs,
				TotalMs:           deps.now().Sub(start).Milliseconds(),
			},
		}, nil
	}

	cfg := deps.spreadConfig()
	budget := time.Duration(cfg.MaxHops) * spreadBudgetPerHop
	spreadCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	spreadStart := deps.now()
	spread, err := Spread(spreadCtx, deps.Store, seeds, compiled, cfg)
	if err != nil {
		return Result{}, err
	}
	spreadMs := deps.now().Sub(spreadStart).Milliseconds()

	ApplyQueryRelevanceFloor(spread)
	NormalizeActivations(spread)

	rerankStart := deps.now()
	scored, err := Rerank(ctx, deps.Store, spread, deps.now())
	if err != nil {
		return Result{}, err
	}
	rerankMs := deps.now().Sub(rerankStart).Milliseconds()

	allScored := scored
	if len(scored) > limit {
		scored = scored[:limit]
	}

	relevant := make([]string, len(scored))
	for i, s := range scored {
		relevant[i] = s.ID
	}

	result := Result{
		RelevantNodes: relevant,
		Scored:        scored,
		Metrics: Metrics{
			SeedsFound:        len(seeds),
			NodesActivated:    len(spread.Activations),
			HopsCompleted:     spread.HopsCompleted,
			TerminationReason: spread.TerminationReason,
			SeedMs:            seedMs,
			SpreadMs:          spreadMs,
			RerankMs:          rerankMs,
		},
	}

	if req.IncludeConnections {
		conns, err := BuildConnections(ctx, deps.Store, scored, compiled)
		if err != nil {
			return Result{}, err
		}
		result.Connections = conns
	}

	if req.SerendipityLevel != "" && req.SerendipityLevel != SerendipityOff {
		already := make(map[string]bool, len(scored))
		for _, s := range scored {
			already[s.ID] = true
		}
		result.Serendipity = Serendipity(allScored, already, req.SerendipityLevel)
	}

	result.Metrics.TotalMs = deps.now().Sub(start).Milliseconds()
	return result, nil
}

// reachableSet computes the set of node ids reachable from ConnectedTo
// within WithinHops, honoring the filter's edge whitelist. Used to resolve
// the connected_to/within_hops constraint into a pure node predicate without
// making CompiledFilter's closures themselves perform I/O.
func reachableSet(ctx context.Context, store ports.StorePort, filter *CompiledFilter) (map[string]bool, error) {
	reachable := map[string]bool{filter.ConnectedTo: true}
	frontier := []string{filter.ConnectedTo}
	for hop := 0; hop < filter.WithinHops; hop++ {
		var next []string
		for _, id := range frontier {
			neighbors, err := store.GetNeighbors(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("ssa: resolving connected_to: %w", err)
			}
			for _, nb := range neighbors {
				if filter.Edge != nil && !filter.Edge(nb.Edge) {
					continue
				}
				if reachable[nb.Node.ID] {
					continue
				}
				reachable[nb.Node.ID] = true
				next = append(next, nb.Node.ID)
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}
	return reachable, nil
}
