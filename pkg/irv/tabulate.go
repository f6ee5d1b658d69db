package irv

import (
	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

// Tabulate runs the IRV count, exploring every resolution of elimination ties.
//
// It returns the sorted set of candidates who win under some tie resolution,
// together with one complete elimination order (earliest elimination first,
// winner last) traced by the first depth-first path with ties broken in
// ascending candidate order.
//
// The timeout handle is checked once per recursive step; expiry yields
// errors.CodeTimeoutCheckingWinner.
func Tabulate(v *Votes, t *timeout.Handle) (possibleWinners []int, eliminationOrder []int, err error) {
	tab := &tabulator{
		votes:   v,
		memo:    make(map[string][]int),
		timeout: t,
	}
	continuing := fullSet(v.numCandidates)
	winners, err := tab.winners(continuing)
	if err != nil {
		return nil, nil, err
	}
	return winners, tab.order, nil
}

type tabulator struct {
	votes   *Votes
	memo    map[string][]int // continuing-set key -> sorted possible winners
	order   []int            // elimination order along the first DFS path
	timeout *timeout.Handle
}

// winners returns the possible winners among the given continuing set.
func (t *tabulator) winners(continuing candidateSet) ([]int, error) {
	if t.timeout.QuickCheck() {
		return nil, errors.TimeoutCheckingWinner()
	}

	members := continuing.members()
	if len(members) == 1 {
		t.recordElimination(members[0], 1)
		return members, nil
	}
	if cached, ok := t.memo[continuing.key()]; ok {
		return cached, nil
	}

	tallies := t.votes.RestrictedTallies(members)
	low := tallies[0]
	for _, tally := range tallies[1:] {
		if tally < low {
			low = tally
		}
	}

	winnerSet := make(map[int]bool)
	for i, c := range members {
		if tallies[i] != low {
			continue
		}
		// Record this elimination only while still on the first DFS path.
		t.recordElimination(c, len(members))
		sub, err := t.winners(continuing.without(c))
		if err != nil {
			return nil, err
		}
		for _, w := range sub {
			winnerSet[w] = true
		}
	}

	result := make([]int, 0, len(winnerSet))
	for c := 0; c < t.votes.numCandidates; c++ {
		if winnerSet[c] {
			result = append(result, c)
		}
	}
	t.memo[continuing.key()] = result
	return result, nil
}

// recordElimination appends c to the elimination order iff the recursion is
// still on its first depth-first path, detected by the eliminated and
// continuing counts summing to the full contest.
func (t *tabulator) recordElimination(c, continuingCount int) {
	if len(t.order)+continuingCount == t.votes.numCandidates {
		t.order = append(t.order, c)
	}
}

// candidateSet is a bitset over candidate indices. Contests are small, but the
// word-slice form keeps it correct for any size.
type candidateSet []uint64

func fullSet(n int) candidateSet {
	s := make(candidateSet, (n+63)/64)
	for c := 0; c < n; c++ {
		s[c/64] |= 1 << (c % 64)
	}
	return s
}

func (s candidateSet) without(c int) candidateSet {
	out := make(candidateSet, len(s))
	copy(out, s)
	out[c/64] &^= 1 << (c % 64)
	return out
}

func (s candidateSet) members() []int {
	var out []int
	for w, word := range s {
		for b := 0; word != 0; b++ {
			if word&1 != 0 {
				out = append(out, w*64+b)
			}
			word >>= 1
		}
	}
	return out
}

func (s candidateSet) key() string {
	b := make([]byte, len(s)*8)
	for i, word := range s {
		for j := 0; j < 8; j++ {
			b[i*8+j] = byte(word >> (8 * j))
		}
	}
	return string(b)
}
