package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/hynous/memory-core/internal/cee"
	"github.com/hynous/memory-core/internal/ports"
	"github.com/hynous/memory-core/pkg/fn"
)

// ClassifiedEnvelope is a Stage 2 CLASSIFY result attached to its envelope,
// mirroring the teacher pipeline's ParsedDoc-embeds-ScrapedPost shape.
type ClassifiedEnvelope struct {
	Envelope
	Classification Classification
}

// RoutedEnvelope adds the Stage 3 ROUTE decision.
type RoutedEnvelope struct {
	ClassifiedEnvelope
	Handler HandlerName
}

// ProcessedEnvelope adds the Stage 4 PROCESS outcome.
type ProcessedEnvelope struct {
	RoutedEnvelope
	Result ProcessResult
}

// Deps holds the external dependencies the ingestion pipeline needs at
// each stage.
type Deps struct {
	Gate       func(Envelope) *GateOutcome
	LLM        ports.LLMPort
	Learning   UserLearning
	Store      ports.StorePort
	Events     ports.EventPort
	Embed      *cee.Service
	Accumulate AccumulatorFunc
	Session    SessionState
	Now        func() time.Time
	Logger     *slog.Logger
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

// classifyStage builds the Stage 2 CLASSIFY fn.Stage.
func classifyStage(deps Deps) fn.Stage[Envelope, ClassifiedEnvelope] {
	return func(ctx context.Context, env Envelope) fn.Result[ClassifiedEnvelope] {
		if IsIncognitoShortCircuit(env) {
			return fn.Ok(ClassifiedEnvelope{
				Envelope:       env,
				Classification: Classification{Intent: IntentNoise, SaveSignal: SignalNone},
			})
		}
		var gate *GateOutcome
		if deps.Gate != nil {
			gate = deps.Gate(env)
		}
		c := Classify(ctx, env, gate, deps.Learning, deps.LLM)
		return fn.Ok(ClassifiedEnvelope{Envelope: env, Classification: c})
	}
}

// routeStage builds the Stage 3 ROUTE fn.Stage.
func routeStage() fn.Stage[ClassifiedEnvelope, RoutedEnvelope] {
	return func(_ context.Context, ce ClassifiedEnvelope) fn.Result[RoutedEnvelope] {
		handler := Route(ce.Classification)
		if IsIncognitoShortCircuit(ce.Envelope) {
			handler = HandlerIgnore
		}
		return fn.Ok(RoutedEnvelope{ClassifiedEnvelope: ce, Handler: handler})
	}
}

// processStage builds the Stage 4 PROCESS fn.Stage.
func processStage(deps Deps) fn.Stage[RoutedEnvelope, ProcessedEnvelope] {
	return func(_ context.Context, re RoutedEnvelope) fn.Result[ProcessedEnvelope] {
		var result ProcessResult
		if IsIncognitoShortCircuit(re.Envelope) {
			result = ShortCircuitResult()
		} else {
			result = Process(re.Envelope, re.Classification, re.Handler, deps.Session, deps.Accumulate, deps.now())
		}
		return fn.Ok(ProcessedEnvelope{RoutedEnvelope: re, Result: result})
	}
}

// stageAndCommitStage builds the Stage 5 STAGE + Stage 6 COMMIT fn.Stage.
// A ProcessedEnvelope with no staged records (Query/Command/Response/
// Ignore/Prompt) commits zero nodes and returns an empty outcome.
func stageAndCommitStage(deps Deps) fn.Stage[ProcessedEnvelope, CommitOutcome] {
	return func(ctx context.Context, pe ProcessedEnvelope) fn.Result[CommitOutcome] {
		if len(pe.Result.Staged) == 0 {
			return fn.Ok(CommitOutcome{Timestamp: deps.now()})
		}
		staged := Stage(pe.Result.Staged, DedupThreshold)
		if len(staged) == 0 {
			return fn.Ok(CommitOutcome{Timestamp: deps.now()})
		}
		outcome, err := Commit(ctx, deps.Store, deps.Events, deps.Embed, staged, deps.now())
		if err != nil {
			return fn.Err[CommitOutcome](err)
		}
		return fn.Ok(outcome)
	}
}

func loggedTap[T any](name string, log *slog.Logger) fn.Stage[T, T] {
	return func(_ context.Context, t T) fn.Result[T] {
		start := time.Now()
		log.Debug("ingest.stage.enter", "stage", name)
		defer func() {
			log.Debug("ingest.stage.exit", "stage", name, "duration", time.Since(start))
		}()
		return fn.Ok(t)
	}
}

// NewPipeline composes the full six-stage ingestion pipeline: RECEIVE is
// the caller's job (see Receive); this stage chain covers CLASSIFY ->
// ROUTE -> PROCESS -> STAGE -> COMMIT.
func NewPipeline(deps Deps) fn.Stage[Envelope, CommitOutcome] {
	log := deps.logger()

	classified := fn.Then(loggedTap[Envelope]("classify", log), classifyStage(deps))
	routed := fn.Then(classified, fn.Then(loggedTap[ClassifiedEnvelope]("route", log), routeStage()))
	processed := fn.Then(routed, fn.Then(loggedTap[RoutedEnvelope]("process", log), processStage(deps)))
	committed := fn.Then(processed, fn.Then(loggedTap[ProcessedEnvelope]("stage_commit", log), stageAndCommitStage(deps)))

	return committed
}
