package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"dishmatch"
	"dishmatch/catalog"
)

// DefaultOracleTimeout bounds the oracle call when Options leaves it unset.
const DefaultOracleTimeout = 25 * time.Second

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Vocabulary    *Vocabulary
	Limits        Limits
	OracleTimeout time.Duration
	RunLogger     dishmatch.RunLogger
	Tracer        trace.Tracer
	Meter         metric.Meter
}

// Engine runs the recommendation pipeline. It holds no per-request state and
// is safe for concurrent use.
type Engine struct {
	catalog       dishmatch.CatalogSource
	oracle        dishmatch.Oracle
	vocab         *Vocabulary
	limits        Limits
	oracleTimeout time.Duration
	logger        dishmatch.RunLogger
	tracer        trace.Tracer
	metrics       *engineMetrics
}

// NewEngine builds an engine over a catalog source and an oracle. A nil
// oracle is accepted so that callers can report ErrOracleUnconfigured per
// request.
func NewEngine(src dishmatch.CatalogSource, oracle dishmatch.Oracle, opts Options) (*Engine, error) {
	if src == nil {
		return nil, errors.New("catalog source is required")
	}

	e := &Engine{
		catalog:       src,
		oracle:        oracle,
		vocab:         opts.Vocabulary,
		limits:        withDefaults(opts.Limits),
		oracleTimeout: opts.OracleTimeout,
		logger:        opts.RunLogger,
		tracer:        opts.Tracer,
	}
	if e.oracleTimeout <= 0 {
		e.oracleTimeout = DefaultOracleTimeout
	}
	if e.vocab == nil {
		e.vocab = DefaultVocabulary()
	}
	if e.logger == nil {
		e.logger = dishmatch.NewNoOpRunLogger()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(dishmatch.TracerNameEngine)
	}
	meter := opts.Meter
	if meter == nil {
		meter = otel.Meter(dishmatch.MeterNameEngine)
	}

	m, err := newEngineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine metrics: %w", err)
	}
	e.metrics = m
	return e, nil
}

func withDefaults(l Limits) Limits {
	d := DefaultLimits()
	if l.FilteredCap <= 0 {
		l.FilteredCap = d.FilteredCap
	}
	if l.UnfilteredCap <= 0 {
		l.UnfilteredCap = d.UnfilteredCap
	}
	if l.MaxResults <= 0 {
		l.MaxResults = d.MaxResults
	}
	if l.FallbackCount <= 0 {
		l.FallbackCount = d.FallbackCount
	}
	return l
}

// Recommend answers one free-text request. Recoverable conditions, including
// no match and every oracle failure, are reported through the Result. An
// error is returned only for invalid input, a missing oracle, an empty or
// unreadable catalog, or a cancelled context.
func (e *Engine) Recommend(ctx context.Context, prompt string) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Recommend")
	defer span.End()

	e.metrics.requests.Add(ctx, 1)

	run := dishmatch.RunLog{
		RequestID: uuid.NewString(),
		Timestamp: time.Now(),
		Prompt:    prompt,
	}
	span.SetAttributes(attribute.String("request.id", run.RequestID))

	res, err := e.recommend(ctx, prompt, &run)
	if err != nil {
		run.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "recommendation failed")
		slog.Error("ENGINE: Recommendation failed", "request_id", run.RequestID, "error", err)
	} else {
		run.Strategy = string(res.Strategy)
		run.Results = len(res.Items)
		span.SetAttributes(
			attribute.String("recommend.strategy", string(res.Strategy)),
			attribute.Int("recommend.results", len(res.Items)),
		)
		e.metrics.results.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", string(res.Strategy))))
		slog.Info("ENGINE: Recommendation complete", "request_id", run.RequestID, "strategy", res.Strategy, "results", len(res.Items))
	}

	if lerr := e.logger.LogRun(run); lerr != nil {
		slog.Warn("ENGINE: Failed to log run", "request_id", run.RequestID, "error", lerr)
	}
	return res, err
}

func (e *Engine) recommend(ctx context.Context, prompt string, run *dishmatch.RunLog) (Result, error) {
	text, err := validatePrompt(prompt)
	if err != nil {
		return Result{}, err
	}
	if e.oracle == nil {
		return Result{}, ErrOracleUnconfigured
	}

	started := time.Now()
	items, err := e.listCatalog(ctx)
	run.AddStage("catalog", len(items), started, err)
	if err != nil {
		return Result{}, fmt.Errorf("load catalog: %w", err)
	}
	if len(items) == 0 {
		return Result{}, ErrEmptyCatalog
	}

	started = time.Now()
	c := Extract(text, e.vocab)
	run.Constraints = c
	run.AddStage("extract", 0, started, nil)
	slog.Info("ENGINE: Extracted constraints", "request_id", run.RequestID, "constraints", c.Summary(), "filtered", c.WasFiltered)

	res := Result{RequestID: run.RequestID, Constraints: c}

	started = time.Now()
	candidates := Filter(items, c, e.limits)
	run.AddStage("filter", len(candidates), started, nil)
	e.metrics.candidates.Record(ctx, int64(len(candidates)))
	if len(candidates) == 0 {
		return e.noMatch(res), nil
	}

	started = time.Now()
	instruction, err := ComposeInstruction(text, candidates, e.limits.MaxResults)
	run.AddStage("compose", len(candidates), started, err)
	if err != nil {
		return Result{}, fmt.Errorf("compose instruction: %w", err)
	}
	run.OracleInput = instruction

	started = time.Now()
	raw, err := e.generate(ctx, instruction)
	run.AddStage("oracle", len(raw), started, err)
	run.OracleOutput = raw
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return Result{}, cerr
		}
		slog.Warn("ENGINE: Oracle unavailable, returning top rated items", "request_id", run.RequestID, "error", err)
		return e.oracleUnavailable(res, items), nil
	}

	started = time.Now()
	answers, perr := ParseAnswers(raw)
	run.AddStage("parse", len(answers), started, perr)
	if perr != nil {
		slog.Warn("ENGINE: Unusable oracle output", "request_id", run.RequestID, "error", perr)
	}

	started = time.Now()
	recs := Reconcile(answers, candidates)
	run.AddStage("reconcile", len(recs), started, nil)

	started = time.Now()
	valid := Validate(recs, c)
	run.AddStage("validate", len(valid), started, nil)
	if dropped := len(recs) - len(valid); dropped > 0 {
		slog.Warn("ENGINE: Oracle picks violate constraints", "request_id", run.RequestID, "dropped", dropped)
	}

	return e.fallback(res, candidates, recs, valid, perr != nil), nil
}

func (e *Engine) listCatalog(ctx context.Context) ([]catalog.Item, error) {
	ctx, span := e.tracer.Start(ctx, "CatalogSource.ListAll")
	defer span.End()

	items, err := e.catalog.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog unavailable")
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.items", len(items)))
	return items, nil
}

// generate performs the single bounded oracle call. It is never retried.
func (e *Engine) generate(ctx context.Context, instruction string) (string, error) {
	ctx, span := e.tracer.Start(ctx, "Oracle.Generate")
	defer span.End()

	span.SetAttributes(attribute.Int("oracle.instruction_bytes", len(instruction)))

	callCtx, cancel := context.WithTimeout(ctx, e.oracleTimeout)
	defer cancel()

	started := time.Now()
	raw, err := e.oracle.Generate(callCtx, instruction)
	e.metrics.oracleLatency.Record(ctx, time.Since(started).Seconds())

	outcome := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	e.metrics.oracleCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "oracle call failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("oracle.response_bytes", len(raw)))
	return raw, nil
}

// fallback picks the first non-empty strategy: validated picks, unvalidated
// picks, the top filtered candidates, then no match. The top candidates are
// offered for an explicitly filtered request, or for an unfiltered one whose
// oracle output could not be parsed.
func (e *Engine) fallback(res Result, candidates []catalog.Item, recs, valid []Recommendation, malformed bool) Result {
	switch {
	case len(valid) > 0:
		res.Items = rankRecommendations(valid, e.limits.MaxResults)
		res.Strategy = StrategyValidated
		res.Message = fmt.Sprintf(msgValidated, len(res.Items))
	case len(recs) > 0:
		res.Items = rankRecommendations(recs, e.limits.MaxResults)
		res.Strategy = StrategyUnvalidated
		res.Message = fmt.Sprintf(msgUnvalidated, len(res.Items))
	case len(candidates) > 0 && (res.Constraints.WasFiltered || malformed):
		top := candidates[:min(len(candidates), e.limits.FallbackCount)]
		picks := make([]Recommendation, 0, len(top))
		for _, it := range top {
			picks = append(picks, newRecommendation(it, reasonFilteredTop, MatchMedium))
		}
		res.Items = rankRecommendations(picks, e.limits.MaxResults)
		res.Strategy = StrategyFilteredTop
		res.Message = msgFilteredTop
	default:
		return e.noMatch(res)
	}
	res.Status = StatusOK
	return res
}

func (e *Engine) noMatch(res Result) Result {
	res.Status = StatusNoMatch
	res.Strategy = StrategyNone
	res.Items = []Recommendation{}
	res.Message = noMatchMessage(res.Constraints)
	return res
}

// oracleUnavailable ranks the whole catalog, ignoring constraints, since no
// selection could be made for the request.
func (e *Engine) oracleUnavailable(res Result, items []catalog.Item) Result {
	ranked := slices.Clone(items)
	SortByQuality(ranked)
	ranked = ranked[:min(len(ranked), e.limits.MaxResults)]

	res.Items = make([]Recommendation, 0, len(ranked))
	for _, it := range ranked {
		res.Items = append(res.Items, newRecommendation(it, reasonOracleUnavailable, MatchMedium))
	}
	res.Status = StatusOK
	res.Strategy = StrategyOracleUnavailable
	res.Message = msgOracleUnavailable
	return res
}
