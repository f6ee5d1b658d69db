package raire

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/irvaudit/pkg/assertion"
)

// AssertionAndDifficulty pairs an assertion with its score under the
// problem's audit model. Status is an open map for collaborators (an audit
// controller recording per-assertion progress, say); the solver never reads
// it.
type AssertionAndDifficulty struct {
	Assertion  assertion.Assertion `json:"assertion"`
	Difficulty float64             `json:"difficulty"`
	Margin     int                 `json:"margin"`
	Status     map[string]any      `json:"status,omitempty"`
}

// UnmarshalJSON decodes the polymorphic assertion field through
// assertion.Unmarshal.
func (a *AssertionAndDifficulty) UnmarshalJSON(data []byte) error {
	var raw struct {
		Assertion  json.RawMessage `json:"assertion"`
		Difficulty float64         `json:"difficulty"`
		Margin     int             `json:"margin"`
		Status     map[string]any  `json:"status,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := assertion.Unmarshal(raw.Assertion)
	if err != nil {
		return fmt.Errorf("assertion: %w", err)
	}
	a.Assertion = decoded
	a.Difficulty = raw.Difficulty
	a.Margin = raw.Margin
	a.Status = raw.Status
	return nil
}

// TimeTaken reports the cost of one solve stage: abstract work units charged
// to the timeout handle, and wall-clock seconds.
type TimeTaken struct {
	Work    uint64  `json:"work"`
	Seconds float64 `json:"seconds"`
}

// Result is the outcome of a successful solve.
//
// Difficulty is the maximum difficulty over the retained assertions and
// Margin the minimum margin; auditing effort is governed by the hardest
// assertion, audit risk by the tightest margin. Assertions appear in
// canonical order: NEBs before NENs, each sorted by their fields.
type Result struct {
	Assertions    []AssertionAndDifficulty `json:"assertions"`
	Difficulty    float64                  `json:"difficulty"`
	Margin        int                      `json:"margin"`
	Winner        int                      `json:"winner"`
	NumCandidates int                      `json:"num_candidates"`

	TimeToDetermineWinners TimeTaken `json:"time_to_determine_winners"`
	TimeToFindAssertions   TimeTaken `json:"time_to_find_assertions"`
	TimeToTrimAssertions   TimeTaken `json:"time_to_trim_assertions"`

	// WarningTrimTimedOut is set when trimming ran out of time: the
	// assertion set is complete and sufficient, just not reduced.
	WarningTrimTimedOut bool `json:"warning_trim_timed_out,omitempty"`
}
