package raire

import (
	"slices"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

// sortAssertions puts an assertion list into canonical order: NEBs before
// NENs, NEBs by (winner, loser), NENs by (continuing-set size, winner,
// loser, continuing set).
func sortAssertions(assertions []AssertionAndDifficulty) {
	slices.SortFunc(assertions, func(a, b AssertionAndDifficulty) int {
		return assertion.Compare(a.Assertion, b.Assertion)
	})
}

// trimAssertions reduces a canonically sorted assertion list to a subset
// that still rules out every non-winner, using per-loser pruning trees and
// a two-pass marking heuristic. The list is filtered in place, preserving
// order. A nil return with no mutation happens only for TrimNone.
func trimAssertions(assertions *[]AssertionAndDifficulty, winner, numCandidates int,
	algorithm TrimAlgorithm, t *timeout.Handle) error {

	var cont Continuation
	switch algorithm {
	case TrimNone:
		return nil
	case TrimMinimizeTree:
		cont = StopImmediately
	case TrimMinimizeAssertions:
		cont = StopOnNEB
	default:
		return errors.InternalTrimming()
	}

	all := *assertions
	allIndices := make([]int, len(all))
	for i := range allIndices {
		allIndices[i] = i
	}

	trees := make([]*TreeNode, 0, numCandidates-1)
	for c := 0; c < numCandidates; c++ {
		if c == winner {
			continue
		}
		root, err := NewTree(c, nil, allIndices, all, numCandidates, cont, t)
		if err != nil {
			return err
		}
		if root.Valid {
			return errors.InternalDidntRuleOutLoser()
		}
		trees = append(trees, root)
	}

	used := make([]bool, len(all))
	for _, root := range trees {
		markForced(root, used)
	}
	for _, root := range trees {
		if err := markSufficient(root, used); err != nil {
			return err
		}
	}

	kept := (*assertions)[:0]
	for i, a := range all {
		if used[i] {
			kept = append(kept, a)
		}
	}
	*assertions = kept
	return nil
}

// markForced is the first trim pass: a leaf contradicted by exactly one
// assertion forces that assertion into the audit.
func markForced(node *TreeNode, used []bool) {
	if len(node.PruningAssertions) == 1 && len(node.Children) == 0 {
		used[node.PruningAssertions[0]] = true
	}
	for _, child := range node.Children {
		markForced(child, used)
	}
}

// markSufficient is the second trim pass: every contradicted node must be
// covered, either by one of its own contradicting assertions or by its whole
// subtree already being eliminated; otherwise its first contradicting
// assertion is retained.
func markSufficient(node *TreeNode, used []bool) error {
	if len(node.PruningAssertions) > 0 {
		if anyUsed(node.PruningAssertions, used) {
			return nil
		}
		if len(node.Children) > 0 && allEliminated(node, used) {
			return nil
		}
		i := node.PruningAssertions[0]
		if i < 0 || i >= len(used) {
			return errors.InternalTrimming()
		}
		used[i] = true
		return nil
	}
	for _, child := range node.Children {
		if err := markSufficient(child, used); err != nil {
			return err
		}
	}
	return nil
}

// allEliminated reports whether every elimination order through the node is
// already ruled out by assertions marked used.
func allEliminated(node *TreeNode, used []bool) bool {
	if anyUsed(node.PruningAssertions, used) {
		return true
	}
	if len(node.Children) == 0 {
		return false
	}
	for _, child := range node.Children {
		if !allEliminated(child, used) {
			return false
		}
	}
	return true
}

func anyUsed(indices []int, used []bool) bool {
	for _, i := range indices {
		if used[i] {
			return true
		}
	}
	return false
}
