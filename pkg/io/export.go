package io

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/irvaudit/pkg/errors"
	"github.com/matzehuels/irvaudit/pkg/raire"
)

// Solution is the output envelope: the problem's metadata carried through
// unchanged, and either the result or the typed error that stopped it.
type Solution struct {
	Metadata map[string]any `json:"metadata,omitempty"`
	Solution *raire.Result  `json:"solution,omitempty"`
	Error    *errors.Error  `json:"error,omitempty"`
}

// NewSolution builds the envelope for a solve outcome. Typed solver errors
// are embedded; any other error is returned unchanged for the caller to
// handle (it has no stable serialization).
func NewSolution(problem *raire.Problem, result *raire.Result, solveErr error) (*Solution, error) {
	envelope := &Solution{Solution: result}
	if problem != nil {
		envelope.Metadata = problem.Metadata
	}
	if solveErr != nil {
		var typed *errors.Error
		if !stderrors.As(solveErr, &typed) {
			return nil, solveErr
		}
		envelope.Solution = nil
		envelope.Error = typed
	}
	return envelope, nil
}

// WriteSolution encodes a solution envelope as indented JSON to w.
func WriteSolution(w io.Writer, solution *Solution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(solution); err != nil {
		return fmt.Errorf("encode solution: %w", err)
	}
	return nil
}

// ExportSolution writes a solution envelope to a JSON file at path.
// This is a convenience wrapper around [WriteSolution] for file-based output.
func ExportSolution(path string, solution *Solution) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSolution(f, solution)
}
