// Package pipeline provides the cached solve pipeline shared by the CLI and
// the HTTP service.
//
// A Runner wraps the solver with result caching, structured logging and
// observability hooks. Identical problems hash to identical cache keys, so a
// re-run of an already-solved contest returns in microseconds. By
// centralizing this logic, CLI and service behave identically and neither
// duplicates cache handling.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	outcome, err := runner.Execute(ctx, problem)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(outcome.Solution.Difficulty, outcome.CacheHit)
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/irvaudit/pkg/cache"
	"github.com/matzehuels/irvaudit/pkg/observability"
	"github.com/matzehuels/irvaudit/pkg/raire"
)

// DefaultCacheTTL is how long solve results stay cached. Ballot data is
// immutable once certified, so the TTL mostly bounds disk usage.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Runner executes solves with caching. It is stateless apart from the cache
// and logger; multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: DefaultCacheTTL}
}

// Outcome is one pipeline execution: the solution plus cache provenance.
type Outcome struct {
	Solution    *raire.Result
	ProblemHash string
	CacheHit    bool
	Duration    time.Duration
}

// Execute solves a problem, consulting the cache first. Solver errors are
// returned as-is (and never cached: a timeout might succeed with a longer
// limit on retry).
func (r *Runner) Execute(ctx context.Context, problem *raire.Problem) (*Outcome, error) {
	start := time.Now()
	observability.Solve().OnSolveStart(ctx, problem.NumCandidates)

	canonical, err := json.Marshal(problem)
	if err != nil {
		return nil, fmt.Errorf("encode problem: %w", err)
	}
	hash := cache.Hash(canonical)
	key := r.Keyer.SolveKey(hash)

	if cached, hit, err := r.Cache.Get(ctx, key); err != nil {
		// A broken cache should not block solving.
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	} else if hit {
		var solution raire.Result
		if err := json.Unmarshal(cached, &solution); err == nil {
			observability.Cache().OnCacheHit(ctx, "solve")
			r.Logger.Debug("solve cache hit", "hash", hash)
			return &Outcome{
				Solution:    &solution,
				ProblemHash: hash,
				CacheHit:    true,
				Duration:    time.Since(start),
			}, nil
		}
		// Undecodable entry: drop it and solve fresh.
		_ = r.Cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "solve")

	solution, err := raire.Solve(problem)
	observability.Solve().OnSolveComplete(ctx, assertionCount(solution), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.logStages(ctx, solution)

	if data, err := json.Marshal(solution); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "solve", len(data))
		}
	}

	return &Outcome{
		Solution:    solution,
		ProblemHash: hash,
		Duration:    time.Since(start),
	}, nil
}

// logStages reports per-stage timings from a completed solve.
func (r *Runner) logStages(ctx context.Context, solution *raire.Result) {
	stages := []struct {
		name  string
		taken raire.TimeTaken
	}{
		{"tabulate", solution.TimeToDetermineWinners},
		{"search", solution.TimeToFindAssertions},
		{"trim", solution.TimeToTrimAssertions},
	}
	for _, s := range stages {
		duration := time.Duration(s.taken.Seconds * float64(time.Second))
		observability.Solve().OnStageComplete(ctx, s.name, duration, nil)
		r.Logger.Info("stage complete",
			"stage", s.name,
			"work", s.taken.Work,
			"duration", duration.Round(time.Microsecond))
	}
	r.Logger.Info("solved contest",
		"winner", solution.Winner,
		"assertions", len(solution.Assertions),
		"difficulty", solution.Difficulty,
		"margin", solution.Margin,
		"trim_timed_out", solution.WarningTrimTimedOut)
}

func assertionCount(solution *raire.Result) int {
	if solution == nil {
		return 0
	}
	return len(solution.Assertions)
}
