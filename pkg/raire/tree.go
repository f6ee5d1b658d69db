package raire

import (
	"slices"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

// Continuation controls how far tree construction descends below a node that
// some assertion already contradicts.
type Continuation int

const (
	// StopImmediately never descends below a contradicted node.
	StopImmediately Continuation = iota
	// ContinueOnce descends one level below a contradicted node, then stops.
	ContinueOnce
	// StopOnNEB descends below a contradicted node unless an NEB is among
	// the contradicting assertions; NEB coverage is never worth replacing.
	StopOnNEB
	// Forever always descends while some assertion is still undecided.
	Forever
)

// childContinuation is the policy passed down one level.
func (c Continuation) childContinuation() Continuation {
	if c == ContinueOnce {
		return StopImmediately
	}
	return c
}

// descendWhenPruned reports whether construction continues below a node with
// the given contradicting assertions.
func (c Continuation) descendWhenPruned(pruning []int, all []AssertionAndDifficulty) bool {
	switch c {
	case StopImmediately:
		return false
	case Forever, ContinueOnce:
		return true
	case StopOnNEB:
		for _, i := range pruning {
			if _, isNEB := all[i].Assertion.(assertion.NEB); isNEB {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TreeNode is one node of a pruning tree: the hypothesis that Candidate is
// eliminated just before everyone in the rest of Suffix.
//
// PruningAssertions indexes the assertions whose effect on Suffix is a
// contradiction. Valid is true when this node, or some descendant, is
// neither contradicted nor refuted by extension: a surviving elimination
// order. A tree built from a sufficient assertion set and rooted at a
// non-winner is never valid.
type TreeNode struct {
	Candidate         int
	Suffix            []int
	PruningAssertions []int
	Children          []*TreeNode
	Valid             bool
}

// NewTree builds the pruning tree for candidate prepended to parentSuffix.
// relevant indexes the assertions still undecided at the parent; pass every
// index when building a root. Construction charges the timeout handle one
// unit per node and fails with errors.CodeTimeoutTrimmingAssertions on
// expiry.
func NewTree(candidate int, parentSuffix []int, relevant []int, all []AssertionAndDifficulty,
	numCandidates int, cont Continuation, t *timeout.Handle) (*TreeNode, error) {

	if t.QuickCheck() {
		return nil, errors.TimeoutTrimmingAssertions()
	}

	suffix := append([]int{candidate}, parentSuffix...)
	node := &TreeNode{Candidate: candidate, Suffix: suffix}

	var stillRelevant []int
	for _, i := range relevant {
		switch all[i].Assertion.Effect(suffix) {
		case assertion.Contradiction:
			node.PruningAssertions = append(node.PruningAssertions, i)
		case assertion.NeedsMoreDetail:
			stillRelevant = append(stillRelevant, i)
		}
	}

	pruned := len(node.PruningAssertions) > 0
	node.Valid = !pruned && len(stillRelevant) == 0

	descend := len(stillRelevant) > 0 && len(suffix) < numCandidates
	if pruned {
		descend = descend && cont.descendWhenPruned(node.PruningAssertions, all)
	}
	if !descend {
		return node, nil
	}

	childCont := cont.childContinuation()
	for c := 0; c < numCandidates; c++ {
		if slices.Contains(suffix, c) {
			continue
		}
		child, err := NewTree(c, suffix, stillRelevant, all, numCandidates, childCont, t)
		if err != nil {
			return nil, err
		}
		if child.Valid {
			if pruned {
				// The node's own contradiction suffices; children would only
				// inflate the tree without adding coverage.
				node.Children = nil
				return node, nil
			}
			node.Valid = true
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}
