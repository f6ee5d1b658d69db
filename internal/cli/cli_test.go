package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	raireio "github.com/matzehuels/irvaudit/pkg/io"
	"github.com/matzehuels/irvaudit/pkg/raire"
)

const problemJSON = `{
  "metadata": {"contest": "city council", "candidates": ["Alice", "Bob", "Chuan", "Diego"]},
  "num_candidates": 4,
  "votes": [
    {"n": 5000, "prefs": [2, 1, 0]},
    {"n": 1000, "prefs": [1, 2, 3]},
    {"n": 1500, "prefs": [3, 0]},
    {"n": 4000, "prefs": [0, 3]},
    {"n": 2000, "prefs": [3]}
  ],
  "audit": {"type": "OneOnMargin", "total_auditable_ballots": 13500}
}`

func writeProblem(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.json")
	if err := os.WriteFile(path, []byte(problemJSON), 0644); err != nil {
		t.Fatalf("write problem: %v", err)
	}
	return path
}

func TestSolveCommandWritesSolution(t *testing.T) {
	problem := writeProblem(t)
	output := filepath.Join(t.TempDir(), "solution.json")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"solve", problem, "-o", output, "--no-cache"})
	if err := root.Execute(); err != nil {
		t.Fatalf("solve: %v", err)
	}

	envelope, err := raireio.ImportSolution(output)
	if err != nil {
		t.Fatalf("ImportSolution: %v", err)
	}
	if envelope.Solution == nil || envelope.Solution.Winner != 2 {
		t.Errorf("solution = %+v", envelope.Solution)
	}
	if envelope.Metadata["contest"] != "city council" {
		t.Error("metadata not carried into the solution file")
	}
}

func TestSolveCommandArchives(t *testing.T) {
	problem := writeProblem(t)
	// Keep the archive (and HOME-derived defaults) inside the test dir.
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"solve", problem, "--archive", "--contest", "council"})
	if err := root.Execute(); err != nil {
		t.Fatalf("solve --archive: %v", err)
	}

	archive, err := newFileStore("")
	if err != nil {
		t.Fatalf("newFileStore: %v", err)
	}
	summaries, err := archive.List(t.Context())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Contest != "council" {
		t.Errorf("summaries = %+v", summaries)
	}
}

func TestSolveCommandRejectsBadTrim(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"solve", writeProblem(t), "--trim", "Everything"})
	if err := root.Execute(); err == nil {
		t.Error("unknown trim policy should fail")
	}
}

func TestTreeCommandEmitsDOT(t *testing.T) {
	problem := writeProblem(t)
	output := filepath.Join(t.TempDir(), "trees.dot")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"tree", problem, "--dot", "-o", output, "--no-cache"})
	if err := root.Execute(); err != nil {
		t.Fatalf("tree: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	dot := string(data)
	for _, want := range []string{"digraph PruningTrees", "Alice", "Chuan"} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot output missing %q:\n%s", want, dot)
		}
	}
}

func TestApplyTrimFlag(t *testing.T) {
	p := &raire.Problem{}
	if err := applyTrimFlag(p, ""); err != nil || p.TrimAlgorithm != nil {
		t.Error("empty flag should leave the problem untouched")
	}
	if err := applyTrimFlag(p, "MinimizeAssertions"); err != nil {
		t.Fatalf("applyTrimFlag: %v", err)
	}
	if p.TrimAlgorithm == nil || *p.TrimAlgorithm != raire.TrimMinimizeAssertions {
		t.Error("flag not applied")
	}
	if err := applyTrimFlag(p, "Nope"); err == nil {
		t.Error("bad flag should error")
	}
}

func TestParseContinuation(t *testing.T) {
	cases := map[string]raire.Continuation{
		"stop":    raire.StopImmediately,
		"once":    raire.ContinueOnce,
		"neb":     raire.StopOnNEB,
		"forever": raire.Forever,
	}
	for in, want := range cases {
		got, err := parseContinuation(in)
		if err != nil || got != want {
			t.Errorf("parseContinuation(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseContinuation("sometimes"); err == nil {
		t.Error("unknown policy should error")
	}
}

func TestCandidateNames(t *testing.T) {
	names := candidateNames(map[string]any{"candidates": []any{"Alice", "Bob"}})
	if len(names) != 2 || names[0] != "Alice" {
		t.Errorf("names = %v", names)
	}
	if candidateNames(map[string]any{"candidates": []any{"Alice", 7}}) != nil {
		t.Error("mixed-type candidate lists should be ignored")
	}
	if candidateNames(nil) != nil {
		t.Error("missing metadata should yield nil")
	}
}
