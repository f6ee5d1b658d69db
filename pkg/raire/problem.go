package raire

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/irvaudit/pkg/audit"
	"github.com/matzehuels/irvaudit/pkg/irv"
)

// TrimAlgorithm selects how the assertion set is reduced after the search.
type TrimAlgorithm int

const (
	// TrimNone keeps every generated assertion.
	TrimNone TrimAlgorithm = iota
	// TrimMinimizeTree drops assertions not needed when pruning trees stop
	// at the first contradicted node, keeping the audit's explanation small.
	TrimMinimizeTree
	// TrimMinimizeAssertions explores past contradicted nodes (except those
	// killed by an NEB) looking for deeper coverage, usually retaining fewer
	// assertions at the cost of larger trees.
	TrimMinimizeAssertions
)

var trimNames = map[TrimAlgorithm]string{
	TrimNone:               "None",
	TrimMinimizeTree:       "MinimizeTree",
	TrimMinimizeAssertions: "MinimizeAssertions",
}

// String returns the JSON name of the algorithm.
func (t TrimAlgorithm) String() string {
	if s, ok := trimNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TrimAlgorithm(%d)", int(t))
}

// MarshalJSON implements json.Marshaler.
func (t TrimAlgorithm) MarshalJSON() ([]byte, error) {
	s, ok := trimNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown trim algorithm %d", int(t))
	}
	return json.Marshal(s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TrimAlgorithm) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, v := range trimNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown trim algorithm %q", s)
}

// Problem is one contest to generate assertions for.
//
// Winner, TrimAlgorithm, DifficultyEstimate and TimeLimitSeconds are
// optional. When TrimAlgorithm is absent, MinimizeTree is used. Metadata is
// opaque to the solver and carried through to the solution unchanged.
type Problem struct {
	Metadata      map[string]any `json:"metadata,omitempty"`
	NumCandidates int            `json:"num_candidates"`
	Votes         []irv.Vote     `json:"votes"`
	Winner        *int           `json:"winner,omitempty"`
	Audit         audit.Config   `json:"audit"`
	TrimAlgorithm *TrimAlgorithm `json:"trim_algorithm,omitempty"`

	// DifficultyEstimate optionally seeds the search's difficulty lower
	// bound. A good estimate lets the frontier commit entries sooner; an
	// overestimate can cost optimality of the final difficulty but never
	// sufficiency of the assertion set. Non-finite and non-positive values
	// are ignored.
	DifficultyEstimate *float64 `json:"difficulty_estimate,omitempty"`

	// TimeLimitSeconds bounds the whole solve. Present but non-positive or
	// NaN values are rejected before any work begins.
	TimeLimitSeconds *float64 `json:"time_limit_seconds,omitempty"`
}

// trim returns the effective trim algorithm.
func (p *Problem) trim() TrimAlgorithm {
	if p.TrimAlgorithm == nil {
		return TrimMinimizeTree
	}
	return *p.TrimAlgorithm
}
