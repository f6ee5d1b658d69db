package assertion

import (
	"math"
	"slices"

	"github.com/matzehuels/irvaudit/pkg/audit"
	"github.com/matzehuels/irvaudit/pkg/irv"
)

// DifficultyAndMargin scores an NEB under the given votes and audit model.
// The winner's tally is its first preferences; the loser's is its tally when
// only the pair remains, the most favorable stage for the loser.
func (a NEB) DifficultyAndMargin(v *irv.Votes, m audit.Method) (float64, int) {
	winnerTally := v.FirstPrefTally(a.Winner)
	loserTally := v.RestrictedTallies([]int{a.Winner, a.Loser})[1]
	return m.Difficulty(winnerTally, loserTally), max(0, winnerTally-loserTally)
}

// DifficultyAndMargin scores an NEN under the given votes and audit model,
// using the tallies with exactly the continuing candidates standing.
func (a NEN) DifficultyAndMargin(v *irv.Votes, m audit.Method) (float64, int) {
	tallies := v.RestrictedTallies(a.Continuing)
	winnerTally, loserTally := 0, 0
	for i, c := range a.Continuing {
		switch c {
		case a.Winner:
			winnerTally = tallies[i]
		case a.Loser:
			loserTally = tallies[i]
		}
	}
	return m.Difficulty(winnerTally, loserTally), max(0, winnerTally-loserTally)
}

// NEBCache holds the difficulty and margin of NEB(w, l) for every ordered
// candidate pair, precomputed once per solve. Diagonal entries are +Inf.
type NEBCache struct {
	difficulty [][]float64
	margin     [][]int
}

// NewNEBCache precomputes every pairwise NEB score.
func NewNEBCache(v *irv.Votes, m audit.Method) *NEBCache {
	n := v.NumCandidates()
	c := &NEBCache{
		difficulty: make([][]float64, n),
		margin:     make([][]int, n),
	}
	for w := 0; w < n; w++ {
		c.difficulty[w] = make([]float64, n)
		c.margin[w] = make([]int, n)
		for l := 0; l < n; l++ {
			if w == l {
				c.difficulty[w][l] = math.Inf(1)
				continue
			}
			c.difficulty[w][l], c.margin[w][l] = NEB{Winner: w, Loser: l}.DifficultyAndMargin(v, m)
		}
	}
	return c
}

// Difficulty returns the cached difficulty of NEB(w, l).
func (c *NEBCache) Difficulty(w, l int) float64 { return c.difficulty[w][l] }

// Margin returns the cached margin of NEB(w, l).
func (c *NEBCache) Margin(w, l int) int { return c.margin[w][l] }

// BestNEB returns the cheapest NEB ruling out every completion of an
// elimination-order suffix beginning with candidate c and continuing with
// tail. Candidates in the tail outlast c, so NEB(c, c') contradicts them;
// candidates absent from the suffix are outlasted by c, so NEB(c', c)
// contradicts those completions.
func BestNEB(c int, tail []int, cache *NEBCache) (NEB, float64, int) {
	best := NEB{Winner: -1, Loser: -1}
	bestDifficulty := math.Inf(1)
	bestMargin := 0
	for other := range cache.difficulty {
		if other == c {
			continue
		}
		candidate := NEB{Winner: other, Loser: c}
		if slices.Contains(tail, other) {
			candidate = NEB{Winner: c, Loser: other}
		}
		if d := cache.Difficulty(candidate.Winner, candidate.Loser); d < bestDifficulty {
			best = candidate
			bestDifficulty = d
			bestMargin = cache.Margin(candidate.Winner, candidate.Loser)
		}
	}
	return best, bestDifficulty, bestMargin
}

// BestNEN returns the cheapest NEN asserting that c is not the next candidate
// eliminated when exactly the candidates in continuing remain: the loser is
// the continuing candidate with the lowest tally besides c. The continuing
// set must contain c and at least one other candidate.
func BestNEN(c int, continuing []int, v *irv.Votes, m audit.Method) (NEN, float64, int) {
	tallies := v.RestrictedTallies(continuing)
	winnerTally := 0
	loser := -1
	loserTally := 0
	for i, cand := range continuing {
		if cand == c {
			winnerTally = tallies[i]
			continue
		}
		if loser < 0 || tallies[i] < loserTally {
			loser = cand
			loserTally = tallies[i]
		}
	}
	a := NewNEN(c, loser, continuing)
	return a, m.Difficulty(winnerTally, loserTally), max(0, winnerTally-loserTally)
}
