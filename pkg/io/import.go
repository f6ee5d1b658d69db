package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/irvaudit/pkg/raire"
)

// ReadProblem decodes a JSON problem from r.
//
// The audit configuration is validated during decoding (unknown types,
// non-positive ballot totals and out-of-range risk limits are rejected);
// ballot-level validation happens when the problem is solved.
// ReadProblem does not close r.
func ReadProblem(r io.Reader) (*raire.Problem, error) {
	var problem raire.Problem
	dec := json.NewDecoder(r)
	if err := dec.Decode(&problem); err != nil {
		return nil, fmt.Errorf("decode problem: %w", err)
	}
	return &problem, nil
}

// ImportProblem reads a problem from a JSON file at path.
// This is a convenience wrapper around [ReadProblem] for file-based input.
func ImportProblem(path string) (*raire.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadProblem(f)
}

// ReadSolution decodes a solution envelope from r.
func ReadSolution(r io.Reader) (*Solution, error) {
	var solution Solution
	if err := json.NewDecoder(r).Decode(&solution); err != nil {
		return nil, fmt.Errorf("decode solution: %w", err)
	}
	return &solution, nil
}

// ImportSolution reads a solution envelope from a JSON file at path.
func ImportSolution(path string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSolution(f)
}
