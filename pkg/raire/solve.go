package raire

import (
	"math"
	"time"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/audit"
	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/irv"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

// Solve generates the assertion set for one contest.
//
// Validation errors (candidate count, candidate references, the time limit)
// and tabulation outcomes (tied winners, a wrong claimed winner) surface
// before the search. A timeout during the search aborts with the difficulty
// lower bound reached; a timeout during trimming is recovered into a result
// carrying the untrimmed sorted assertion set and WarningTrimTimedOut.
func Solve(p *Problem) (*Result, error) {
	if p.NumCandidates < 1 {
		return nil, errors.InvalidNumberOfCandidates()
	}

	handle := timeout.Unlimited()
	if p.TimeLimitSeconds != nil {
		limit := *p.TimeLimitSeconds
		if math.IsNaN(limit) || limit <= 0 {
			return nil, errors.InvalidTimeout()
		}
		handle = timeout.New(time.Duration(limit*float64(time.Second)), 0)
	}

	if err := audit.Validate(p.Audit.Method); err != nil {
		return nil, err
	}
	votes, err := irv.NewVotes(p.Votes, p.NumCandidates)
	if err != nil {
		return nil, err
	}

	result := &Result{
		NumCandidates: p.NumCandidates,
	}

	// Stage 1: tabulate and pin down the winner.
	stage := newStageClock(handle)
	possibleWinners, elimOrder, err := irv.Tabulate(votes, handle)
	if err != nil {
		return nil, err
	}
	winner, err := resolveWinner(possibleWinners, p.Winner)
	if err != nil {
		return nil, err
	}
	result.Winner = winner
	result.TimeToDetermineWinners = stage.lap()

	// Stage 2: frontier search.
	cache := assertion.NewNEBCache(votes, p.Audit.Method)
	assertions, err := runRaire(votes, p.Audit.Method, cache, winner, elimOrder, seedLowerBound(p), handle)
	if err != nil {
		return nil, err
	}
	for _, a := range assertions {
		if a.Assertion.Effect(elimOrder) == assertion.Contradiction {
			return nil, errors.InternalRuledOutWinner()
		}
	}
	result.TimeToFindAssertions = stage.lap()

	// Stage 3: canonical order, then trim.
	sortAssertions(assertions)
	if err := trimAssertions(&assertions, winner, p.NumCandidates, p.trim(), handle); err != nil {
		if !errors.HasCode(err, errors.CodeTimeoutTrimmingAssertions) {
			return nil, err
		}
		// The untrimmed set is sufficient; report it with a warning.
		result.WarningTrimTimedOut = true
	}
	result.Assertions = assertions
	result.TimeToTrimAssertions = stage.lap()

	result.Difficulty, result.Margin = aggregate(assertions)
	return result, nil
}

// resolveWinner applies the claimed-winner rules: without a claim the
// tabulated winner must be unique; with a claim the possible winner set must
// be exactly the claim, tied sets included.
func resolveWinner(possibleWinners []int, claimed *int) (int, error) {
	if claimed != nil {
		if len(possibleWinners) == 1 && possibleWinners[0] == *claimed {
			return *claimed, nil
		}
		return 0, errors.WrongWinner(possibleWinners)
	}
	if len(possibleWinners) != 1 {
		return 0, errors.TiedWinners(possibleWinners)
	}
	return possibleWinners[0], nil
}

// seedLowerBound turns the problem's difficulty estimate into an initial
// lower bound for the search, ignoring non-finite and non-positive values.
func seedLowerBound(p *Problem) float64 {
	if p.DifficultyEstimate == nil {
		return 0
	}
	estimate := *p.DifficultyEstimate
	if math.IsNaN(estimate) || math.IsInf(estimate, 0) || estimate <= 0 {
		return 0
	}
	return estimate
}

// aggregate computes the minimax summary: overall difficulty is the hardest
// assertion, overall margin the tightest.
func aggregate(assertions []AssertionAndDifficulty) (difficulty float64, margin int) {
	for i, a := range assertions {
		if i == 0 || a.Difficulty > difficulty {
			difficulty = a.Difficulty
		}
		if i == 0 || a.Margin < margin {
			margin = a.Margin
		}
	}
	return difficulty, margin
}

// stageClock measures per-stage wall time and work units against a shared
// timeout handle.
type stageClock struct {
	handle   *timeout.Handle
	start    time.Time
	workSeen uint64
}

func newStageClock(h *timeout.Handle) *stageClock {
	return &stageClock{handle: h, start: time.Now()}
}

// lap returns the cost since the previous lap (or construction) and resets.
func (c *stageClock) lap() TimeTaken {
	now := time.Now()
	work := c.handle.WorkDone()
	taken := TimeTaken{
		Work:    work - c.workSeen,
		Seconds: now.Sub(c.start).Seconds(),
	}
	c.start = now
	c.workSeen = work
	return taken
}
