// Package raire generates risk-limiting-audit assertions for IRV contests.
//
// Given the consolidated ballots of a single contest and an audit effort
// model, Solve produces a set of pairwise assertions whose joint validity
// rules out every elimination order electing anyone other than the reported
// winner. The returned set is logically sufficient, and under a trimming
// policy is filtered down to a subset that is still sufficient.
//
// # Pipeline
//
// Solve runs three stages, each charged against one timeout handle:
//
//  1. Tabulate the contest, exploring elimination ties, to establish the
//     unique winner and one concrete elimination order.
//  2. Search the space of elimination-order suffixes with a priority-queue
//     frontier, committing the cheapest assertion that rules out each branch.
//     The optional dive follows the reported elimination order to a leaf
//     early, establishing a difficulty lower bound that lets most of the
//     frontier commit without expansion.
//  3. Sort the assertions canonically and, under a trimming policy, rebuild
//     per-loser pruning trees to drop assertions that no branch needs.
//
// The overall audit difficulty is the maximum over the retained assertions;
// the audit margin is the minimum. A timeout during trimming is recoverable:
// the result carries the untrimmed (but sorted) assertion set and a warning
// flag instead of an error.
//
// # Scope
//
// The package measures nothing about a live audit: it neither counts
// discrepancies nor schedules ballots. It consumes a validated Problem and
// returns a pure-data Result; persistence, transport and rendering live in
// the surrounding packages.
package raire
