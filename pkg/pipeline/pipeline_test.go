package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/irvaudit/pkg/audit"
	"github.com/matzehuels/irvaudit/pkg/cache"
	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/irv"
	"github.com/matzehuels/irvaudit/pkg/raire"
)

func testProblem() *raire.Problem {
	return &raire.Problem{
		NumCandidates: 4,
		Votes: []irv.Vote{
			{N: 5000, Prefs: []int{2, 1, 0}},
			{N: 1000, Prefs: []int{1, 2, 3}},
			{N: 1500, Prefs: []int{3, 0}},
			{N: 4000, Prefs: []int{0, 3}},
			{N: 2000, Prefs: []int{3}},
		},
		Audit: audit.Config{Method: audit.OneOnMargin{TotalAuditableBallots: 13500}},
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestExecuteSolvesAndCaches(t *testing.T) {
	ctx := context.Background()
	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fileCache, nil, quietLogger())

	first, err := runner.Execute(ctx, testProblem())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should not hit the cache")
	}
	if first.Solution.Winner != 2 {
		t.Errorf("winner = %d, want 2", first.Solution.Winner)
	}
	if first.ProblemHash == "" {
		t.Error("missing problem hash")
	}

	second, err := runner.Execute(ctx, testProblem())
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.ProblemHash != first.ProblemHash {
		t.Error("identical problems must hash identically")
	}
	if second.Solution.Difficulty != first.Solution.Difficulty {
		t.Errorf("cached difficulty %v differs from %v", second.Solution.Difficulty, first.Solution.Difficulty)
	}
	if len(second.Solution.Assertions) != len(first.Solution.Assertions) {
		t.Error("cached solution lost assertions")
	}
}

func TestExecuteDistinctProblemsDistinctKeys(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(cache.NewNullCache(), nil, quietLogger())

	a, err := runner.Execute(ctx, testProblem())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	p := testProblem()
	p.Votes[0].N++
	b, err := runner.Execute(ctx, p)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if a.ProblemHash == b.ProblemHash {
		t.Error("different ballots must produce different hashes")
	}
}

func TestExecutePropagatesTypedErrors(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	p := testProblem()
	winner := 0
	p.Winner = &winner

	_, err := runner.Execute(context.Background(), p)
	if !errors.HasCode(err, errors.CodeWrongWinner) {
		t.Errorf("got %v, want WRONG_WINNER", err)
	}
}

func TestExecuteDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fileCache, nil, quietLogger())

	bad := testProblem()
	winner := 0
	bad.Winner = &winner
	if _, err := runner.Execute(ctx, bad); err == nil {
		t.Fatal("expected WrongWinner error")
	}

	// The failed attempt must not poison the cache for the fixed problem.
	good := testProblem()
	outcome, err := runner.Execute(ctx, good)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.CacheHit {
		t.Error("fresh problem should not be a cache hit")
	}
}
