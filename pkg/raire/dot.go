package raire

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/irvaudit/pkg/assertion"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

// BuildPruningTrees builds one pruning tree per non-winner from a solved
// result, showing which assertion kills each hypothetical elimination order.
// Roots come back in ascending candidate order.
func BuildPruningTrees(result *Result, cont Continuation, t *timeout.Handle) ([]*TreeNode, error) {
	allIndices := make([]int, len(result.Assertions))
	for i := range allIndices {
		allIndices[i] = i
	}
	var roots []*TreeNode
	for c := 0; c < result.NumCandidates; c++ {
		if c == result.Winner {
			continue
		}
		root, err := NewTree(c, nil, allIndices, result.Assertions, result.NumCandidates, cont, t)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// ToDOT renders pruning trees as a Graphviz DOT digraph.
//
// Candidate labels come from names; indices are used where names run out.
// Contradicted nodes are filled boxes annotated with the assertions that
// kill them; surviving nodes are highlighted. The output renders with any
// Graphviz tool or programmatically with RenderSVG.
func ToDOT(roots []*TreeNode, names []string, assertions []AssertionAndDifficulty) string {
	var buf bytes.Buffer
	buf.WriteString("digraph PruningTrees {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	id := 0
	for _, root := range roots {
		id = writeDOTNode(&buf, root, id, names, assertions)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTNode(buf *bytes.Buffer, n *TreeNode, id int, names []string, assertions []AssertionAndDifficulty) int {
	nodeID := fmt.Sprintf("n%d", id)
	next := id + 1

	label := candidateLabel(n.Candidate, names)
	switch {
	case len(n.PruningAssertions) > 0:
		kills := make([]string, len(n.PruningAssertions))
		for i, a := range n.PruningAssertions {
			kills[i] = assertionLabel(a, assertions, names)
		}
		fmt.Fprintf(buf, "  %s [label=%q, shape=box, fillcolor=\"#e8e8e8\"];\n",
			nodeID, label+"\n"+strings.Join(kills, "\n"))
	case n.Valid:
		fmt.Fprintf(buf, "  %s [label=%q, shape=ellipse, penwidth=2];\n", nodeID, label)
	default:
		fmt.Fprintf(buf, "  %s [label=%q, shape=ellipse];\n", nodeID, label)
	}

	for _, child := range n.Children {
		fmt.Fprintf(buf, "  %s -> n%d;\n", nodeID, next)
		next = writeDOTNode(buf, child, next, names, assertions)
	}
	return next
}

func candidateLabel(c int, names []string) string {
	if c < len(names) {
		return names[c]
	}
	return fmt.Sprintf("%d", c)
}

func assertionLabel(i int, assertions []AssertionAndDifficulty, names []string) string {
	switch a := assertions[i].Assertion.(type) {
	case assertion.NEB:
		return fmt.Sprintf("%s NEB %s", candidateLabel(a.Winner, names), candidateLabel(a.Loser, names))
	case assertion.NEN:
		continuing := make([]string, len(a.Continuing))
		for j, c := range a.Continuing {
			continuing[j] = candidateLabel(c, names)
		}
		return fmt.Sprintf("%s NEN %s | {%s}", candidateLabel(a.Winner, names),
			candidateLabel(a.Loser, names), strings.Join(continuing, ","))
	default:
		return fmt.Sprintf("assertion %d", i)
	}
}

// RenderSVG renders pruning trees to an SVG document via Graphviz.
//
// It requires the Graphviz library (github.com/goccy/go-graphviz); errors
// from initialization, DOT parsing and rendering are wrapped with context.
func RenderSVG(roots []*TreeNode, names []string, assertions []AssertionAndDifficulty) ([]byte, error) {
	dot := ToDOT(roots, names, assertions)

	gv, err := graphviz.New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(context.Background(), g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
