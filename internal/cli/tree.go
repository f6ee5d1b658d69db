package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/irvaudit/pkg/io"
	"github.com/matzehuels/irvaudit/pkg/raire"
	"github.com/matzehuels/irvaudit/pkg/timeout"
)

// treeCommand creates the tree command for visualizing pruning trees.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		output  string
		names   string
		policy  string
		asDOT   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "tree <problem.json>",
		Short: "Render the pruning trees behind a contest's assertions (debug tool)",
		Long: `Tree solves a problem and renders, per losing candidate, the tree of
hypothetical elimination orders together with the assertion that kills each
branch. Useful for explaining to an audit board why the assertion set is
sufficient.`,
		Example: `  # SVG with candidate names from the problem metadata
  irvaudit tree contest.json -o trees.svg

  # Raw Graphviz DOT on stdout, exploring past contradicted nodes
  irvaudit tree contest.json --dot --policy forever`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problem, err := io.ImportProblem(args[0])
			if err != nil {
				return err
			}
			continuation, err := parseContinuation(policy)
			if err != nil {
				return err
			}

			outcome, err := c.newRunner(noCache).Execute(cmd.Context(), problem)
			if err != nil {
				return err
			}

			labels := candidateNames(problem.Metadata)
			if names != "" {
				labels = strings.Split(names, ",")
			}

			roots, err := raire.BuildPruningTrees(outcome.Solution, continuation, timeout.Unlimited())
			if err != nil {
				return err
			}

			var rendered []byte
			if asDOT {
				rendered = []byte(raire.ToDOT(roots, labels, outcome.Solution.Assertions))
			} else {
				rendered, err = raire.RenderSVG(roots, labels, outcome.Solution.Assertions)
				if err != nil {
					return fmt.Errorf("render: %w", err)
				}
			}
			if err := writeFile(rendered, output); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			printSuccess("Pruning trees generated")
			printKeyValue("Roots", strconv.Itoa(len(roots)))
			printKeyValue("Assertions", strconv.Itoa(len(outcome.Solution.Assertions)))
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&names, "names", "", "comma-separated candidate names, overriding metadata")
	cmd.Flags().StringVar(&policy, "policy", "stop", "descent past contradicted nodes: stop, once, neb or forever")
	cmd.Flags().BoolVar(&asDOT, "dot", false, "emit Graphviz DOT instead of SVG")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the solve cache")

	return cmd
}

// parseContinuation maps the --policy flag onto tree construction policies.
func parseContinuation(policy string) (raire.Continuation, error) {
	switch policy {
	case "stop":
		return raire.StopImmediately, nil
	case "once":
		return raire.ContinueOnce, nil
	case "neb":
		return raire.StopOnNEB, nil
	case "forever":
		return raire.Forever, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want stop, once, neb or forever)", policy)
	}
}
