// Package errors provides the structured error types shared by the audit
// generation engine and its callers.
//
// The engine never panics and never uses errors for control flow: every failure
// is one of a closed set of codes, each carrying the payload a caller needs to
// act on it (the set of tied winners, the elimination-order suffix that could
// not be ruled out, the difficulty reached before a timeout fired).
//
// # Error Codes
//
// Codes fall into five categories:
//   - INVALID_*: problem validation failures, raised before any work begins
//   - TIED_WINNERS / WRONG_WINNER: tabulation outcomes inconsistent with the input
//   - COULD_NOT_RULE_OUT: no finite-difficulty assertion covers some elimination order
//   - TIMEOUT_*: the time limit or work quota fired during the named stage
//   - INTERNAL_*: sanity checks that should never fail on correct inputs
//
// # Usage
//
//	err := errors.TiedWinners([]int{1, 3})
//	if errors.HasCode(err, errors.CodeTiedWinners) {
//	    // Report the tie to the caller
//	}
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Code is a machine-readable error code.
type Code string

// Error codes for the closed taxonomy.
const (
	// Input validity
	CodeInvalidNumberOfCandidates Code = "INVALID_NUMBER_OF_CANDIDATES"
	CodeInvalidTimeout            Code = "INVALID_TIMEOUT"
	CodeInvalidCandidateNumber    Code = "INVALID_CANDIDATE_NUMBER"

	// Tabulation
	CodeTiedWinners Code = "TIED_WINNERS"
	CodeWrongWinner Code = "WRONG_WINNER"

	// Assertion search
	CodeCouldNotRuleOut Code = "COULD_NOT_RULE_OUT"

	// Timeouts
	CodeTimeoutCheckingWinner     Code = "TIMEOUT_CHECKING_WINNER"
	CodeTimeoutFindingAssertions  Code = "TIMEOUT_FINDING_ASSERTIONS"
	CodeTimeoutTrimmingAssertions Code = "TIMEOUT_TRIMMING_ASSERTIONS"

	// Internal sanity checks
	CodeInternalRuledOutWinner    Code = "INTERNAL_ERROR_RULED_OUT_WINNER"
	CodeInternalDidntRuleOutLoser Code = "INTERNAL_ERROR_DIDNT_RULE_OUT_LOSER"
	CodeInternalTrimming          Code = "INTERNAL_ERROR_TRIMMING"
)

// Error is a structured error with a code and the payload relevant to it.
// Payload fields are only populated for the codes that define them.
type Error struct {
	Code Code `json:"code"`

	// PossibleWinners carries the candidates that could win under some tie
	// resolution. Populated for CodeTiedWinners and CodeWrongWinner.
	PossibleWinners []int `json:"possible_winners,omitempty"`

	// Suffix is the elimination-order suffix that no finite-difficulty
	// assertion rules out. Populated for CodeCouldNotRuleOut.
	Suffix []int `json:"suffix,omitempty"`

	// DifficultyAtStop is the search's lower bound on the overall difficulty
	// at the moment the timeout fired. Populated for
	// CodeTimeoutFindingAssertions.
	DifficultyAtStop float64 `json:"difficulty_at_stop,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case CodeInvalidNumberOfCandidates:
		return "contest must have at least one candidate"
	case CodeInvalidTimeout:
		return "time limit must be a positive number of seconds"
	case CodeInvalidCandidateNumber:
		return "a vote references a candidate outside the contest"
	case CodeTiedWinners:
		return fmt.Sprintf("contest winner is tied between candidates %v", e.PossibleWinners)
	case CodeWrongWinner:
		return fmt.Sprintf("claimed winner differs from the tabulated winner(s) %v", e.PossibleWinners)
	case CodeCouldNotRuleOut:
		return fmt.Sprintf("no assertion with finite difficulty rules out elimination order %v", e.Suffix)
	case CodeTimeoutCheckingWinner:
		return "timeout while tabulating the contest"
	case CodeTimeoutFindingAssertions:
		return fmt.Sprintf("timeout while finding assertions (difficulty at least %.6g)", e.DifficultyAtStop)
	case CodeTimeoutTrimmingAssertions:
		return "timeout while trimming assertions"
	case CodeInternalRuledOutWinner:
		return "internal error: generated assertions rule out the reported winner"
	case CodeInternalDidntRuleOutLoser:
		return "internal error: generated assertions do not rule out some loser"
	case CodeInternalTrimming:
		return "internal error while trimming assertions"
	default:
		return string(e.Code)
	}
}

// InvalidNumberOfCandidates reports a contest with fewer than one candidate.
func InvalidNumberOfCandidates() *Error { return &Error{Code: CodeInvalidNumberOfCandidates} }

// InvalidTimeout reports a non-positive or NaN time limit.
func InvalidTimeout() *Error { return &Error{Code: CodeInvalidTimeout} }

// InvalidCandidateNumber reports a vote referencing a candidate index outside
// [0, numCandidates).
func InvalidCandidateNumber() *Error { return &Error{Code: CodeInvalidCandidateNumber} }

// TiedWinners reports that tabulation found more than one possible winner.
func TiedWinners(possibleWinners []int) *Error {
	return &Error{Code: CodeTiedWinners, PossibleWinners: possibleWinners}
}

// WrongWinner reports that the claimed winner is not the unique tabulated winner.
func WrongWinner(possibleWinners []int) *Error {
	return &Error{Code: CodeWrongWinner, PossibleWinners: possibleWinners}
}

// CouldNotRuleOut reports a full-length elimination order for which every
// candidate assertion has infinite difficulty.
func CouldNotRuleOut(suffix []int) *Error {
	return &Error{Code: CodeCouldNotRuleOut, Suffix: suffix}
}

// TimeoutCheckingWinner reports a timeout during tabulation.
func TimeoutCheckingWinner() *Error { return &Error{Code: CodeTimeoutCheckingWinner} }

// TimeoutFindingAssertions reports a timeout during the assertion search,
// along with the lower bound on difficulty established before stopping.
// Non-finite bounds are clamped so the error stays JSON-encodable.
func TimeoutFindingAssertions(difficultyAtStop float64) *Error {
	if math.IsInf(difficultyAtStop, 1) || math.IsNaN(difficultyAtStop) {
		difficultyAtStop = math.MaxFloat64
	}
	return &Error{Code: CodeTimeoutFindingAssertions, DifficultyAtStop: difficultyAtStop}
}

// TimeoutTrimmingAssertions reports a timeout during trimming. Callers treat
// this as recoverable: the untrimmed assertion set is still sufficient.
func TimeoutTrimmingAssertions() *Error { return &Error{Code: CodeTimeoutTrimmingAssertions} }

// InternalRuledOutWinner reports that the generated assertions contradict the
// reported elimination order.
func InternalRuledOutWinner() *Error { return &Error{Code: CodeInternalRuledOutWinner} }

// InternalDidntRuleOutLoser reports that a pruning tree rooted at a loser
// remained valid.
func InternalDidntRuleOutLoser() *Error { return &Error{Code: CodeInternalDidntRuleOutLoser} }

// InternalTrimming reports an inconsistency detected while trimming.
func InternalTrimming() *Error { return &Error{Code: CodeInternalTrimming} }

// HasCode reports whether err carries the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// MarshalJSON emits the code and whichever payload fields are populated.
func (e *Error) MarshalJSON() ([]byte, error) {
	type plain Error
	return json.Marshal((*plain)(e))
}

// UnmarshalJSON restores an Error written by MarshalJSON.
func (e *Error) UnmarshalJSON(data []byte) error {
	type plain Error
	return json.Unmarshal(data, (*plain)(e))
}
