package raire

import (
	"strings"
	"testing"

	"github.com/matzehuels/irvaudit/pkg/timeout"
)

func TestBuildPruningTrees(t *testing.T) {
	result, err := Solve(guideProblem(TrimMinimizeTree))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	roots, err := BuildPruningTrees(result, StopImmediately, timeout.Unlimited())
	if err != nil {
		t.Fatalf("BuildPruningTrees: %v", err)
	}
	if len(roots) != 3 {
		t.Fatalf("got %d roots, want 3", len(roots))
	}
	want := []int{0, 1, 3}
	for i, root := range roots {
		if root.Candidate != want[i] {
			t.Errorf("root %d candidate = %d, want %d", i, root.Candidate, want[i])
		}
		if root.Valid {
			t.Errorf("root %d should be refuted", root.Candidate)
		}
	}
}

func TestToDOT(t *testing.T) {
	result, err := Solve(guideProblem(TrimMinimizeTree))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	roots, err := BuildPruningTrees(result, StopImmediately, timeout.Unlimited())
	if err != nil {
		t.Fatalf("BuildPruningTrees: %v", err)
	}

	names := []string{"Alice", "Bob", "Chuan", "Diego"}
	dot := ToDOT(roots, names, result.Assertions)

	if !strings.HasPrefix(dot, "digraph PruningTrees {") {
		t.Error("missing digraph header")
	}
	if !strings.HasSuffix(strings.TrimSpace(dot), "}") {
		t.Error("missing closing brace")
	}
	for _, name := range names[:2] {
		if !strings.Contains(dot, name) {
			t.Errorf("candidate %s missing from DOT output", name)
		}
	}
	if !strings.Contains(dot, "NEB") {
		t.Error("expected an NEB label in a pruned node")
	}
	if !strings.Contains(dot, "->") {
		t.Error("expected edges in DOT output")
	}
}

func TestToDOTFallsBackToIndices(t *testing.T) {
	result, err := Solve(guideProblem(TrimMinimizeTree))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	roots, err := BuildPruningTrees(result, StopImmediately, timeout.Unlimited())
	if err != nil {
		t.Fatalf("BuildPruningTrees: %v", err)
	}
	dot := ToDOT(roots, nil, result.Assertions)
	if !strings.Contains(dot, "\"3\"") {
		t.Error("expected numeric label for candidate 3")
	}
}
