package irv

import (
	"slices"

	"github.com/matzehuels/irvaudit/pkg/errors"
)

// Vote is a ranking with a multiplicity. Prefs lists candidate indices from
// highest preference to lowest; a candidate appears at most once.
type Vote struct {
	N     int   `json:"n"`
	Prefs []int `json:"prefs"`
}

// Votes is an immutable table of rankings for one contest.
// First-preference tallies and the grand total are computed at construction.
type Votes struct {
	votes         []Vote
	numCandidates int
	firstPref     []int
	total         int
}

// NewVotes builds a vote table, validating that every preference index is in
// [0, numCandidates). It returns errors.CodeInvalidNumberOfCandidates when the
// contest has no candidates and errors.CodeInvalidCandidateNumber when a vote
// references a candidate outside the contest.
func NewVotes(votes []Vote, numCandidates int) (*Votes, error) {
	if numCandidates < 1 {
		return nil, errors.InvalidNumberOfCandidates()
	}
	firstPref := make([]int, numCandidates)
	total := 0
	for _, v := range votes {
		for _, c := range v.Prefs {
			if c < 0 || c >= numCandidates {
				return nil, errors.InvalidCandidateNumber()
			}
		}
		if len(v.Prefs) > 0 {
			firstPref[v.Prefs[0]] += v.N
		}
		total += v.N
	}
	return &Votes{
		votes:         slices.Clone(votes),
		numCandidates: numCandidates,
		firstPref:     firstPref,
		total:         total,
	}, nil
}

// NumCandidates returns the number of candidates in the contest.
func (v *Votes) NumCandidates() int { return v.numCandidates }

// TotalVotes returns the sum of all multiplicities.
func (v *Votes) TotalVotes() int { return v.total }

// FirstPrefTally returns the number of ballots ranking c first.
func (v *Votes) FirstPrefTally(c int) int { return v.firstPref[c] }

// RestrictedTallies tallies the ballots as if only the candidates in
// continuing were still standing: each vote counts for its highest-ranked
// continuing candidate, and votes with no continuing candidate count for
// nobody. The returned slice is parallel to continuing.
func (v *Votes) RestrictedTallies(continuing []int) []int {
	tallies := make([]int, len(continuing))
	position := make(map[int]int, len(continuing))
	for i, c := range continuing {
		position[c] = i
	}
	for _, vote := range v.votes {
		for _, c := range vote.Prefs {
			if i, ok := position[c]; ok {
				tallies[i] += vote.N
				break
			}
		}
	}
	return tallies
}

// Consolidate merges votes with identical preference lists, summing their
// multiplicities. Order of first appearance is preserved. Upstream ballot
// importers use this to shrink the table before solving.
func Consolidate(votes []Vote) []Vote {
	type key string
	index := make(map[key]int)
	out := make([]Vote, 0, len(votes))
	for _, v := range votes {
		k := key(prefsKey(v.Prefs))
		if i, ok := index[k]; ok {
			out[i].N += v.N
			continue
		}
		index[k] = len(out)
		out = append(out, Vote{N: v.N, Prefs: slices.Clone(v.Prefs)})
	}
	return out
}

func prefsKey(prefs []int) string {
	// Candidate indices are small; a byte per rank is plenty for real contests,
	// with a two-byte escape for anything larger.
	b := make([]byte, 0, len(prefs)*2)
	for _, c := range prefs {
		if c < 255 {
			b = append(b, byte(c))
		} else {
			b = append(b, 255, byte(c>>8), byte(c))
		}
	}
	return string(b)
}
