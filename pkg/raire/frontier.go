package raire

import (
	"container/heap"
	"math"
	"slices"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/audit"
	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/irv"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

// noDive marks a frontier entry that has not yet been dived from.
const noDive = -1

// sequence is a frontier entry: an elimination-order suffix pi (earliest
// elimination leftmost, eventual winner rightmost) together with the cheapest
// assertion known to rule out every completion of pi. The assertion was found
// at some ancestor depth: the last ancestorLen candidates of pi.
type sequence struct {
	pi          []int
	ancestorLen int
	best        assertion.Assertion
	difficulty  float64
	margin      int
	// diveDone is the candidate already explored by a dive from this entry,
	// or noDive. Normal expansion skips it.
	diveDone int
}

// ancestor returns the suffix of pi at which best was chosen.
func (s *sequence) ancestor() []int {
	return s.pi[len(s.pi)-s.ancestorLen:]
}

// searcher carries the immutable inputs of one assertion search.
type searcher struct {
	votes     *irv.Votes
	method    audit.Method
	cache     *assertion.NEBCache
	winner    int
	elimOrder []int // reported elimination order, winner last
	timeout   *timeout.Handle

	frontier   frontier
	assertions []AssertionAndDifficulty
	lowerBound float64
}

// findBest returns the cheapest assertion ruling out every completion of pi.
// In any full order ending with pi, the candidates absent from pi were
// eliminated earlier, so two kinds of assertion apply: an NEB pairing pi's
// first candidate against someone whose relative elimination order pi fixes,
// or an NEN asserting pi's first candidate outlasts someone when exactly the
// members of pi remain.
func (s *searcher) findBest(pi []int) (assertion.Assertion, float64, int) {
	c := pi[0]
	best, difficulty, margin := assertion.BestNEB(c, pi[1:], s.cache)
	var bestAssertion assertion.Assertion = best

	if len(pi) >= 2 {
		continuing := slices.Clone(pi)
		slices.Sort(continuing)
		nen, nenDifficulty, nenMargin := assertion.BestNEN(c, continuing, s.votes, s.method)
		if nenDifficulty < difficulty {
			bestAssertion, difficulty, margin = nen, nenDifficulty, nenMargin
		}
	}
	return bestAssertion, difficulty, margin
}

// extend prepends candidate x to e's suffix, keeping the cheaper of e's
// assertion and the best assertion for the longer suffix.
func (s *searcher) extend(e *sequence, x int) *sequence {
	pi := append([]int{x}, e.pi...)
	best, difficulty, margin := s.findBest(pi)
	if difficulty < e.difficulty {
		return &sequence{pi: pi, ancestorLen: len(pi), best: best, difficulty: difficulty, margin: margin, diveDone: noDive}
	}
	return &sequence{pi: pi, ancestorLen: e.ancestorLen, best: e.best, difficulty: e.difficulty, margin: e.margin, diveDone: noDive}
}

// commit moves e's assertion into the result set, unless an equal assertion
// is already there, and drops every frontier entry covered by the ancestor
// suffix the assertion was chosen at.
func (s *searcher) commit(e *sequence) {
	for _, existing := range s.assertions {
		if existing.Assertion.Equal(e.best) {
			return
		}
	}
	s.assertions = append(s.assertions, AssertionAndDifficulty{
		Assertion:  e.best,
		Difficulty: e.difficulty,
		Margin:     e.margin,
	})
	ancestor := e.ancestor()
	s.frontier.removeWhere(func(other *sequence) bool {
		return hasSuffix(other.pi, ancestor)
	})
}

// leaf applies the leaf rule to a full-length suffix: an infinite difficulty
// means the orders through it cannot be audited away; otherwise its
// difficulty is a lower bound on the overall audit difficulty.
func (s *searcher) leaf(e *sequence) error {
	if math.IsInf(e.difficulty, 1) {
		return errors.CouldNotRuleOut(slices.Clone(e.pi))
	}
	if e.difficulty > s.lowerBound {
		s.lowerBound = e.difficulty
	}
	s.commit(e)
	return nil
}

// runRaire searches elimination-order suffixes for the cheapest sufficient
// assertion set. lowerBoundSeed pre-loads the difficulty lower bound (zero
// for none).
func runRaire(votes *irv.Votes, method audit.Method, cache *assertion.NEBCache,
	winner int, elimOrder []int, lowerBoundSeed float64, t *timeout.Handle) ([]AssertionAndDifficulty, error) {

	s := &searcher{
		votes:      votes,
		method:     method,
		cache:      cache,
		winner:     winner,
		elimOrder:  elimOrder,
		timeout:    t,
		lowerBound: lowerBoundSeed,
		assertions: []AssertionAndDifficulty{},
	}

	numCandidates := votes.NumCandidates()
	for c := 0; c < numCandidates; c++ {
		if c == winner {
			continue
		}
		pi := []int{c}
		best, difficulty, margin := s.findBest(pi)
		heap.Push(&s.frontier, &sequence{pi: pi, ancestorLen: 1, best: best, difficulty: difficulty, margin: margin, diveDone: noDive})
	}

	for s.frontier.Len() > 0 {
		e := heap.Pop(&s.frontier).(*sequence)
		if s.timeout.QuickCheck() {
			return nil, errors.TimeoutFindingAssertions(math.Max(e.difficulty, s.lowerBound))
		}
		if e.difficulty <= s.lowerBound {
			s.commit(e)
			continue
		}

		if e.diveDone == noDive {
			if err := s.dive(e); err != nil {
				return nil, err
			}
			if e.difficulty <= s.lowerBound {
				s.commit(e)
			}
			continue
		}

		// Normal expansion: one child per candidate not yet in the suffix,
		// skipping the branch a dive already walked.
		for x := 0; x < numCandidates; x++ {
			if x == e.diveDone || slices.Contains(e.pi, x) {
				continue
			}
			child := s.extend(e, x)
			if len(child.pi) == numCandidates {
				if err := s.leaf(child); err != nil {
					return nil, err
				}
			} else {
				heap.Push(&s.frontier, child)
			}
		}
	}

	return s.assertions, nil
}

// dive walks e down to a full-length suffix along the reported elimination
// order, prepending the latest-eliminated remaining candidate at each step.
// Each intermediate suffix is parked on the frontier with its dived branch
// marked, so later expansion covers only the siblings. Reaching the leaf
// raises the lower bound, after which much of the parked frontier commits
// cheaply.
func (s *searcher) dive(e *sequence) error {
	cur := e
	for i := len(s.elimOrder) - 1; i >= 0; i-- {
		x := s.elimOrder[i]
		if slices.Contains(cur.pi, x) {
			continue
		}
		parked := *cur
		parked.diveDone = x
		heap.Push(&s.frontier, &parked)

		cur = s.extend(cur, x)
		if len(cur.pi) == s.votes.NumCandidates() {
			return s.leaf(cur)
		}
		if cur.difficulty <= s.lowerBound {
			s.commit(cur)
			return nil
		}
	}
	return nil
}

// hasSuffix reports whether pi ends with the given suffix.
func hasSuffix(pi, suffix []int) bool {
	if len(suffix) > len(pi) {
		return false
	}
	return slices.Equal(pi[len(pi)-len(suffix):], suffix)
}

// frontier is a max-heap of sequences keyed on difficulty. Ties pop in
// unspecified order; only the committed assertion set is order-sensitive,
// and it is canonically sorted afterwards.
type frontier []*sequence

func (f frontier) Len() int           { return len(f) }
func (f frontier) Less(i, j int) bool { return f[i].difficulty > f[j].difficulty }
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)        { *f = append(*f, x.(*sequence)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return x
}

// removeWhere drops every entry matching pred and restores the heap
// invariant by rebuilding. Committing shrinks the frontier; rebuilds are
// cheap relative to the search itself.
func (f *frontier) removeWhere(pred func(*sequence) bool) {
	kept := (*f)[:0]
	for _, e := range *f {
		if !pred(e) {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(*f); i++ {
		(*f)[i] = nil
	}
	*f = kept
	heap.Init(f)
}
