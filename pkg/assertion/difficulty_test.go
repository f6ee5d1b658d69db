package assertion

import (
	"math"
	"testing"

	"github.com/matzehuels/irvaudit/pkg/audit"
	"github.com/matzehuels/irvaudit/pkg/irv"
)

// example10Votes is the three-candidate BRAVO worked example: 21999 ballots.
func example10Votes(t *testing.T) *irv.Votes {
	t.Helper()
	v, err := irv.NewVotes([]irv.Vote{
		{N: 10000, Prefs: []int{0, 1, 2}},
		{N: 6000, Prefs: []int{1, 0, 2}},
		{N: 5999, Prefs: []int{2, 0, 1}},
	}, 3)
	if err != nil {
		t.Fatalf("NewVotes: %v", err)
	}
	return v
}

func TestNEBDifficultyUnderBRAVO(t *testing.T) {
	v := example10Votes(t)
	m := audit.BRAVO{Alpha: 0.05, TotalAuditableBallots: 21999}

	d, _ := NEB{Winner: 0, Loser: 1}.DifficultyAndMargin(v, m)
	if math.Abs(d-135.3) > 0.1 {
		t.Errorf("NEB(0,1) difficulty = %v, want ~135.3", d)
	}

	d, _ = NEB{Winner: 0, Loser: 2}.DifficultyAndMargin(v, m)
	if math.Abs(d-135.2) > 0.1 {
		t.Errorf("NEB(0,2) difficulty = %v, want ~135.2", d)
	}
}

func TestNEBDifficultySymmetry(t *testing.T) {
	// Under OneOnMargin the difficulty is exactly total over the margin
	// between the winner's first preferences and the loser's pairwise tally.
	v := example10Votes(t)
	total := 21999
	m := audit.OneOnMargin{TotalAuditableBallots: total}

	d, margin := NEB{Winner: 0, Loser: 1}.DifficultyAndMargin(v, m)
	winnerTally := v.FirstPrefTally(0)
	loserTally := v.RestrictedTallies([]int{0, 1})[1]
	if want := float64(total) / float64(winnerTally-loserTally); d != want {
		t.Errorf("difficulty = %v, want %v", d, want)
	}
	if want := winnerTally - loserTally; margin != want {
		t.Errorf("margin = %d, want %d", margin, want)
	}

	// A pair the winner loses has infinite difficulty and zero margin.
	d, margin = NEB{Winner: 1, Loser: 0}.DifficultyAndMargin(v, m)
	if !math.IsInf(d, 1) {
		t.Errorf("losing NEB difficulty = %v, want +Inf", d)
	}
	if margin != 0 {
		t.Errorf("losing NEB margin = %d, want 0", margin)
	}
}

func TestNENDifficulty(t *testing.T) {
	v := example10Votes(t)
	m := audit.OneOnMargin{TotalAuditableBallots: 21999}

	// With everyone standing, candidate 0 polls 10000 against 2's 5999.
	a := NewNEN(0, 2, []int{0, 1, 2})
	d, margin := a.DifficultyAndMargin(v, m)
	if want := 21999.0 / (10000 - 5999); d != want {
		t.Errorf("difficulty = %v, want %v", d, want)
	}
	if margin != 10000-5999 {
		t.Errorf("margin = %d, want %d", margin, 10000-5999)
	}
}

func TestNEBCache(t *testing.T) {
	v := example10Votes(t)
	m := audit.OneOnMargin{TotalAuditableBallots: 21999}
	cache := NewNEBCache(v, m)

	for w := 0; w < 3; w++ {
		if !math.IsInf(cache.Difficulty(w, w), 1) {
			t.Errorf("diagonal difficulty (%d,%d) should be +Inf", w, w)
		}
		for l := 0; l < 3; l++ {
			if w == l {
				continue
			}
			wantD, wantM := NEB{Winner: w, Loser: l}.DifficultyAndMargin(v, m)
			if cache.Difficulty(w, l) != wantD || cache.Margin(w, l) != wantM {
				t.Errorf("cache(%d,%d) = (%v,%d), want (%v,%d)",
					w, l, cache.Difficulty(w, l), cache.Margin(w, l), wantD, wantM)
			}
		}
	}
}

func TestBestNEB(t *testing.T) {
	v := example10Votes(t)
	m := audit.OneOnMargin{TotalAuditableBallots: 21999}
	cache := NewNEBCache(v, m)

	// Suffix [1]: candidates 0 and 2 are eliminated before 1 in any
	// completion, so the candidates are NEB(0,1) and NEB(2,1).
	best, d, margin := BestNEB(1, nil, cache)
	if best.Winner != 0 || best.Loser != 1 {
		t.Errorf("best NEB = %+v, want NEB(0,1)", best)
	}
	if math.IsInf(d, 1) || margin <= 0 {
		t.Errorf("best NEB should be finite with positive margin, got (%v, %d)", d, margin)
	}

	// With 0 in the tail, the roles flip for that pair: NEB(1,0) is the
	// candidate, which candidate 1 loses, so NEB(2,1) remains but is also
	// infinite; everything is infinite.
	_, d, _ = BestNEB(1, []int{0}, cache)
	if !math.IsInf(d, 1) {
		t.Errorf("suffix [1,0]: difficulty = %v, want +Inf", d)
	}
}

func TestBestNEN(t *testing.T) {
	v := example10Votes(t)
	m := audit.OneOnMargin{TotalAuditableBallots: 21999}

	// Candidate 0 against the weakest remaining candidate, 2.
	a, d, margin := BestNEN(0, []int{0, 1, 2}, v, m)
	if a.Winner != 0 || a.Loser != 2 {
		t.Errorf("best NEN = %+v, want winner 0 loser 2", a)
	}
	if want := 21999.0 / (10000 - 5999); d != want {
		t.Errorf("difficulty = %v, want %v", d, want)
	}
	if margin != 10000-5999 {
		t.Errorf("margin = %d, want %d", margin, 10000-5999)
	}
}
