package raire

import (
	"slices"
	"testing"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

// guideAssertions is the six-assertion set for the four-candidate worked
// example, indexed as the tree tests expect.
func guideAssertions() []AssertionAndDifficulty {
	return []AssertionAndDifficulty{
		{Assertion: assertion.NewNEN(0, 1, []int{0, 1, 2, 3}), Difficulty: 4.5, Margin: 3000},
		{Assertion: assertion.NewNEN(0, 3, []int{0, 2, 3}), Difficulty: 27.0, Margin: 500},
		{Assertion: assertion.NewNEN(2, 0, []int{0, 2}), Difficulty: 27.0, Margin: 500},
		{Assertion: assertion.NewNEN(2, 3, []int{0, 2, 3}), Difficulty: 5.4, Margin: 2500},
		{Assertion: assertion.NEB{Winner: 2, Loser: 1}, Difficulty: 3.375, Margin: 4000},
		{Assertion: assertion.NewNEN(0, 3, []int{0, 3}), Difficulty: 3.0, Margin: 4500},
	}
}

func buildRoot(t *testing.T, candidate int, cont Continuation) *TreeNode {
	t.Helper()
	all := guideAssertions()
	indices := []int{0, 1, 2, 3, 4, 5}
	root, err := NewTree(candidate, nil, indices, all, 4, cont, timeout.Unlimited())
	if err != nil {
		t.Fatalf("NewTree(%d): %v", candidate, err)
	}
	return root
}

func TestTreeWinnerRootSurvives(t *testing.T) {
	// The actual winner's tree is not refuted: the assertion set must not
	// rule the real outcome out.
	root := buildRoot(t, 2, StopImmediately)
	if !root.Valid {
		t.Error("winner root should be valid")
	}
}

func TestTreeLoserRootsRefuted(t *testing.T) {
	for _, c := range []int{0, 1, 3} {
		root := buildRoot(t, c, StopImmediately)
		if root.Valid {
			t.Errorf("root %d should be refuted", c)
		}
	}
}

func TestTreeCandidateZeroShape(t *testing.T) {
	root := buildRoot(t, 0, StopImmediately)

	if len(root.PruningAssertions) != 0 {
		t.Fatalf("root [0] pruning = %v, want none", root.PruningAssertions)
	}
	if len(root.Children) != 3 {
		t.Fatalf("root [0] has %d children, want 3", len(root.Children))
	}

	// Children prepend candidates 1, 2, 3 in order.
	wantPruning := [][]int{{4}, {2}, nil}
	for i, child := range root.Children {
		if !slices.Equal(child.PruningAssertions, wantPruning[i]) {
			t.Errorf("child %d pruning = %v, want %v", i, child.PruningAssertions, wantPruning[i])
		}
	}

	// The unpruned [3,0] branch expands into two children killed by the
	// NEB and the three-way NEN respectively.
	branch := root.Children[2]
	if len(branch.Children) != 2 {
		t.Fatalf("branch [3,0] has %d children, want 2", len(branch.Children))
	}
	if !slices.Equal(branch.Children[0].PruningAssertions, []int{4}) {
		t.Errorf("child [1,3,0] pruning = %v, want [4]", branch.Children[0].PruningAssertions)
	}
	if !slices.Equal(branch.Children[1].PruningAssertions, []int{3}) {
		t.Errorf("child [2,3,0] pruning = %v, want [3]", branch.Children[1].PruningAssertions)
	}
	if !slices.Equal(branch.Children[1].Suffix, []int{2, 3, 0}) {
		t.Errorf("child suffix = %v, want [2 3 0]", branch.Children[1].Suffix)
	}
}

func TestTreeTimeout(t *testing.T) {
	all := guideAssertions()
	_, err := NewTree(0, nil, []int{0, 1, 2, 3, 4, 5}, all, 4, Forever, timeout.New(0, 1))
	if !errors.HasCode(err, errors.CodeTimeoutTrimmingAssertions) {
		t.Errorf("got %v, want TIMEOUT_TRIMMING_ASSERTIONS", err)
	}
}

func TestTreeContinuationPolicies(t *testing.T) {
	// Under StopImmediately the pruned [1,0] child has no children; under
	// Forever it still has none because no assertion needs more detail
	// there. The NEB-pruned root [1] stays a leaf under StopOnNEB.
	root := buildRoot(t, 1, StopOnNEB)
	if !slices.Equal(root.PruningAssertions, []int{4}) {
		t.Fatalf("root [1] pruning = %v, want [4]", root.PruningAssertions)
	}
	if len(root.Children) != 0 {
		t.Errorf("NEB-pruned root should not expand under StopOnNEB")
	}
}
