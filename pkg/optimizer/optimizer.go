// Package optimizer benchmarks chunking strategies against a remote
// availability source and recommends the fastest reliable configuration.
package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/batch"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/daterange"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/stats"
	"github.com/OpenLoopHealth/healthie-dev-tools/pkg/strategy"
)

// ChunkFetcher fetches availability for a single date-range chunk. The
// optimizer only depends on the call's latency and outcome, not its payload;
// implementations return the number of slots found for observability.
type ChunkFetcher interface {
	FetchChunk(ctx context.Context, r daterange.DateRange) (int, error)
}

// ChunkFetcherFunc adapts a function to the ChunkFetcher interface.
type ChunkFetcherFunc func(ctx context.Context, r daterange.DateRange) (int, error)

// FetchChunk implements ChunkFetcher.
func (f ChunkFetcherFunc) FetchChunk(ctx context.Context, r daterange.DateRange) (int, error) {
	return f(ctx, r)
}

// Config holds the optimizer configuration.
type Config struct {
	// TotalDays is the span of days ahead to query (REQUIRED, > 0).
	TotalDays int

	// Iterations is the number of trials per strategy (REQUIRED, > 0).
	Iterations int

	// Strategies is the catalog under test. Defaults to
	// strategy.GenerateDefault(TotalDays) when empty.
	Strategies []strategy.Strategy

	// Anchor is the first day of the span. Defaults to today.
	Anchor time.Time
}

// TrialMeasurement is one latency sample: the wall-clock time for running
// all chunks of one trial, plus the number of chunk fetches that failed
// within it.
type TrialMeasurement struct {
	Elapsed time.Duration `json:"elapsedNs"`
	Errors  int           `json:"errors"`
}

// StrategyResult holds the full outcome for one strategy. It is created
// once per strategy and never mutated afterwards.
type StrategyResult struct {
	Strategy strategy.Strategy  `json:"strategy"`
	Trials   []TrialMeasurement `json:"trials"`
	Metrics  stats.Metrics      `json:"metrics"`

	// TotalTime is the accumulated wall-clock time across all trials.
	TotalTime time.Duration `json:"totalTimeNs"`

	// MeanPerChunk is the mean wall-clock time per chunk across all trials.
	MeanPerChunk time.Duration `json:"meanPerChunkNs"`

	// TotalErrors counts chunk-fetch failures plus trial-level failures
	// across all trials.
	TotalErrors int `json:"totalErrors"`

	// TrialFailures counts trials that failed outright (the batch call
	// itself errored), as opposed to chunk errors within a trial.
	TrialFailures int `json:"trialFailures"`
}

// RunResult is the outcome of a full optimization run.
type RunResult struct {
	// Results holds one StrategyResult per strategy, ranked ascending by
	// median latency. Strategies with no successful trial sort last.
	Results []StrategyResult `json:"results"`

	// Recommendation is the first zero-error strategy in rank order, or
	// the overall fastest when every strategy had errors.
	Recommendation StrategyResult `json:"recommendation"`

	TotalDays  int `json:"totalDays"`
	Iterations int `json:"iterations"`
}

// Optimizer evaluates chunking strategies sequentially; concurrency exists
// only within a strategy's trials, never across them, so trial measurements
// are not skewed by cross-trial contention.
type Optimizer struct {
	fetcher ChunkFetcher
	config  Config
	logger  zerolog.Logger
}

// New creates a new optimizer.
func New(fetcher ChunkFetcher, cfg Config) (*Optimizer, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("chunk fetcher is required")
	}
	if cfg.TotalDays < 1 {
		return nil, fmt.Errorf("total days must be positive (got %d)", cfg.TotalDays)
	}
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive (got %d)", cfg.Iterations)
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = strategy.GenerateDefault(cfg.TotalDays)
	}
	if cfg.Anchor.IsZero() {
		cfg.Anchor = daterange.Today()
	}

	return &Optimizer{
		fetcher: fetcher,
		config:  cfg,
		logger:  log.With().Str("component", "optimizer").Logger(),
	}, nil
}

// Run evaluates every strategy in the catalog and returns the ranked
// results with a recommendation.
func (o *Optimizer) Run(ctx context.Context) (*RunResult, error) {
	results := make([]StrategyResult, 0, len(o.config.Strategies))

	o.logger.Info().
		Int("strategies", len(o.config.Strategies)).
		Int("iterations", o.config.Iterations).
		Int("total_days", o.config.TotalDays).
		Msg("Starting optimization run")

	for _, s := range o.config.Strategies {
		results = append(results, o.evaluate(ctx, s))
	}

	rank(results)

	recommendation, err := recommend(results)
	if err != nil {
		return nil, err
	}

	o.logger.Info().
		Str("strategy", recommendation.Strategy.Name).
		Float64("p50_ms", recommendation.Metrics.P50).
		Int("errors", recommendation.TotalErrors).
		Msg("Optimization complete")

	return &RunResult{
		Results:        results,
		Recommendation: recommendation,
		TotalDays:      o.config.TotalDays,
		Iterations:     o.config.Iterations,
	}, nil
}

// evaluate runs all trials for one strategy and derives its metrics.
func (o *Optimizer) evaluate(ctx context.Context, s strategy.Strategy) StrategyResult {
	trials := make([]TrialMeasurement, 0, o.config.Iterations)
	samples := make([]float64, 0, o.config.Iterations)

	totalTime := time.Duration(0)
	totalErrors := 0
	trialFailures := 0
	totalChunks := 0

	for iteration := 1; iteration <= o.config.Iterations; iteration++ {
		measurement, err := o.trial(ctx, s)
		if err != nil {
			// The batch call itself failed; count it and move on to the
			// next trial.
			trialFailures++
			totalErrors++
			o.logger.Warn().
				Err(err).
				Str("strategy", s.Name).
				Int("iteration", iteration).
				Msg("Trial failed")
			continue
		}

		trials = append(trials, measurement)
		samples = append(samples, float64(measurement.Elapsed.Milliseconds()))
		totalTime += measurement.Elapsed
		totalErrors += measurement.Errors
		totalChunks += s.ChunkCount(o.config.TotalDays)

		o.logger.Info().
			Str("strategy", s.Name).
			Int("iteration", iteration).
			Int("of", o.config.Iterations).
			Dur("elapsed", measurement.Elapsed).
			Int("errors", measurement.Errors).
			Msg("Trial complete")
	}

	meanPerChunk := time.Duration(0)
	if totalChunks > 0 {
		meanPerChunk = totalTime / time.Duration(totalChunks)
	}

	return StrategyResult{
		Strategy:      s,
		Trials:        trials,
		Metrics:       stats.Compute(samples),
		TotalTime:     totalTime,
		MeanPerChunk:  meanPerChunk,
		TotalErrors:   totalErrors,
		TrialFailures: trialFailures,
	}
}

// trial executes all chunks of the span once at the strategy's concurrency.
func (o *Optimizer) trial(ctx context.Context, s strategy.Strategy) (TrialMeasurement, error) {
	if err := ctx.Err(); err != nil {
		return TrialMeasurement{}, fmt.Errorf("trial aborted: %w", err)
	}

	ranges := daterange.PartitionFrom(o.config.Anchor, s.ChunkSizeDays, o.config.TotalDays)

	jobs := make([]batch.Job[int], len(ranges))
	for i, r := range ranges {
		r := r
		jobs[i] = func(ctx context.Context) (int, error) {
			return o.fetcher.FetchChunk(ctx, r)
		}
	}

	result := batch.Run(ctx, jobs, s.Concurrency)

	return TrialMeasurement{
		Elapsed: result.Elapsed,
		Errors:  result.ErrorCount(),
	}, nil
}

// rank sorts results ascending by median latency. Strategies whose metrics
// are invalid (no successful trial, NaN percentiles) sort last; relying on
// the comparator's native NaN behavior would be order-dependent.
func rank(results []StrategyResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Metrics.P50, results[j].Metrics.P50
		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		default:
			return a < b
		}
	})
}

// recommend picks the first zero-error strategy in rank order, falling back
// to the overall fastest when every strategy had at least one error.
func recommend(results []StrategyResult) (StrategyResult, error) {
	if len(results) == 0 {
		return StrategyResult{}, fmt.Errorf("no strategies evaluated")
	}

	for _, r := range results {
		if r.TotalErrors == 0 && r.Metrics.Valid() {
			return r, nil
		}
	}
	return results[0], nil
}
