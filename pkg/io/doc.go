// Package io provides JSON import and export of audit problems and
// solutions.
//
// # Overview
//
// Problems arrive as JSON documents from ballot tooling; solutions leave as
// JSON documents for audit controllers. The formats round-trip: a solution
// re-read from disk compares equal to the one solved, modulo NEN
// continuing-set ordering, which is normalized to ascending.
//
// # Problem format
//
//	{
//	  "metadata": {"contest": "city council", "candidates": ["Alice", "Bob"]},
//	  "num_candidates": 2,
//	  "votes": [{"n": 120, "prefs": [0, 1]}, {"n": 90, "prefs": [1]}],
//	  "winner": 0,
//	  "audit": {"type": "OneOnMargin", "total_auditable_ballots": 210},
//	  "trim_algorithm": "MinimizeTree",
//	  "time_limit_seconds": 30
//	}
//
// Only num_candidates, votes and audit are required.
//
// # Solution format
//
// A solution envelope carries either the result or the typed error, plus
// the problem's metadata unchanged:
//
//	{"metadata": {...}, "solution": {"assertions": [...], "difficulty": 27, ...}}
//	{"metadata": {...}, "error": {"code": "TIED_WINNERS", "possible_winners": [0, 1]}}
package io
