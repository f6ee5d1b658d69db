package raire

import (
	"testing"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

func TestSortAssertionsCanonical(t *testing.T) {
	assertions := []AssertionAndDifficulty{
		{Assertion: assertion.NewNEN(0, 1, []int{0, 1, 2, 3})},
		{Assertion: assertion.NewNEN(2, 0, []int{0, 2})},
		{Assertion: assertion.NEB{Winner: 2, Loser: 1}},
		{Assertion: assertion.NewNEN(0, 3, []int{0, 2, 3})},
		{Assertion: assertion.NEB{Winner: 0, Loser: 3}},
		{Assertion: assertion.NewNEN(0, 3, []int{0, 3})},
	}
	sortAssertions(assertions)

	want := []assertion.Assertion{
		assertion.NEB{Winner: 0, Loser: 3},
		assertion.NEB{Winner: 2, Loser: 1},
		assertion.NewNEN(0, 3, []int{0, 3}),
		assertion.NewNEN(2, 0, []int{0, 2}),
		assertion.NewNEN(0, 3, []int{0, 2, 3}),
		assertion.NewNEN(0, 1, []int{0, 1, 2, 3}),
	}
	for i, w := range want {
		if !assertions[i].Assertion.Equal(w) {
			t.Errorf("position %d: got %+v, want %+v", i, assertions[i].Assertion, w)
		}
	}
}

func TestTrimIdempotent(t *testing.T) {
	for _, algorithm := range []TrimAlgorithm{TrimMinimizeTree, TrimMinimizeAssertions} {
		result, err := Solve(guideProblem(algorithm))
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}

		again := append([]AssertionAndDifficulty(nil), result.Assertions...)
		if err := trimAssertions(&again, result.Winner, result.NumCandidates, algorithm, timeout.Unlimited()); err != nil {
			t.Fatalf("second trim: %v", err)
		}
		if len(again) != len(result.Assertions) {
			t.Fatalf("%v: second trim changed count from %d to %d", algorithm, len(result.Assertions), len(again))
		}
		for i := range again {
			if !again[i].Assertion.Equal(result.Assertions[i].Assertion) {
				t.Errorf("%v: assertion %d changed across trims", algorithm, i)
			}
		}
	}
}

func TestTrimNoneKeepsEverything(t *testing.T) {
	assertions := guideAssertions()
	n := len(assertions)
	if err := trimAssertions(&assertions, 2, 4, TrimNone, timeout.Unlimited()); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if len(assertions) != n {
		t.Errorf("TrimNone dropped assertions: %d -> %d", n, len(assertions))
	}
}

func TestTrimDetectsInsufficientSet(t *testing.T) {
	// An empty assertion set cannot rule out the loser of a two-candidate
	// contest; the sanity check must fire.
	assertions := []AssertionAndDifficulty{}
	err := trimAssertions(&assertions, 0, 2, TrimMinimizeTree, timeout.Unlimited())
	if !errors.HasCode(err, errors.CodeInternalDidntRuleOutLoser) {
		t.Errorf("got %v, want INTERNAL_ERROR_DIDNT_RULE_OUT_LOSER", err)
	}
}

func TestTrimTimeout(t *testing.T) {
	assertions := guideAssertions()
	err := trimAssertions(&assertions, 2, 4, TrimMinimizeTree, timeout.New(0, 1))
	if !errors.HasCode(err, errors.CodeTimeoutTrimmingAssertions) {
		t.Errorf("got %v, want TIMEOUT_TRIMMING_ASSERTIONS", err)
	}
	if len(assertions) != 6 {
		t.Errorf("timed-out trim must leave the set untouched, have %d of 6", len(assertions))
	}
}

func TestTrimDropsRedundantAssertion(t *testing.T) {
	// Under MinimizeAssertions the pairwise NEN(0,3|{0,3}) is redundant:
	// descending past the contradicted node shows its branch already dies
	// to assertions needed elsewhere.
	assertions := guideAssertions()
	sortAssertions(assertions)
	if err := trimAssertions(&assertions, 2, 4, TrimMinimizeAssertions, timeout.Unlimited()); err != nil {
		t.Fatalf("trim: %v", err)
	}
	if len(assertions) != 5 {
		t.Fatalf("retained %d assertions, want 5", len(assertions))
	}
	dropped := assertion.NewNEN(0, 3, []int{0, 3})
	for _, a := range assertions {
		if a.Assertion.Equal(dropped) {
			t.Errorf("NEN(0,3|{0,3}) should have been trimmed away")
		}
	}
}
