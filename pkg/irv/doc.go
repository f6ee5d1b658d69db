// Package irv models the ballots of a single instant-runoff contest and
// tabulates it.
//
// # Overview
//
// The package provides two things:
//
//   - Votes: an immutable table of consolidated rankings with cached
//     first-preference tallies, plus helpers to tally the ballots as if only a
//     restricted set of candidates were still standing.
//   - Tabulate: a full IRV count that explores every resolution of elimination
//     ties, returning every candidate who could win under some tie-break and
//     one concrete elimination order.
//
// # Candidate numbering
//
// Candidates are dense integer indices in [0, NumCandidates). A Vote is a
// multiplicity paired with a preference list, highest rank first, no repeats.
// The Votes constructor rejects any preference outside the contest.
//
// # Tie exploration
//
// Tabulate recurses over continuing-candidate sets, eliminating each of the
// tied lowest-tally candidates in turn and taking the union of the winners
// found. States are memoized on the continuing set, so equivalent branches
// are only counted once. The elimination order returned is the one traced by
// the first depth-first path, with ties broken in ascending candidate order;
// it is deterministic for identical inputs but no other ordering is promised.
package irv
