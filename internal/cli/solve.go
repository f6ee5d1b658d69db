package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/irvaudit/pkg/io"
	"github.com/matzehuels/irvaudit/pkg/raire"
	"github.com/matzehuels/irvaudit/pkg/store"
)

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		output    string
		trim      string
		timeLimit float64
		noCache   bool
		archive   bool
		contest   string
	)

	cmd := &cobra.Command{
		Use:   "solve <problem.json>",
		Short: "Generate audit assertions for an IRV contest",
		Long: `Solve reads a problem file (ballots, audit model, optional claimed winner)
and produces the assertion set that rules out every other winner.

The result is printed as a table and optionally written as a solution JSON
file for downstream audit tooling. Results are cached by problem content;
re-solving an identical file is instant.`,
		Example: `  # Solve and print the assertion table
  irvaudit solve contest.json

  # Write the solution file and archive the record
  irvaudit solve contest.json -o solution.json --archive

  # Override the trim policy from the problem file
  irvaudit solve contest.json --trim MinimizeAssertions`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problem, err := io.ImportProblem(args[0])
			if err != nil {
				return err
			}
			if err := applyTrimFlag(problem, trim); err != nil {
				return err
			}
			if cmd.Flags().Changed("time-limit") {
				problem.TimeLimitSeconds = &timeLimit
			}

			runner := c.newRunner(noCache)
			spinner := newSpinner(cmd.Context(), "solving "+args[0])
			spinner.Start()
			outcome, solveErr := runner.Execute(cmd.Context(), problem)
			spinner.Stop()

			if solveErr != nil {
				// Typed solver errors still produce a solution file so the
				// caller's tooling sees the outcome; anything else is plumbing.
				envelope, err := io.NewSolution(problem, nil, solveErr)
				if err != nil {
					return err
				}
				if output != "" {
					if err := io.ExportSolution(output, envelope); err != nil {
						return err
					}
					printFile(output)
				}
				printError("%v", solveErr)
				return solveErr
			}

			solution := outcome.Solution
			names := candidateNames(problem.Metadata)

			printSuccess("Assertions generated")
			if outcome.CacheHit {
				printInfo("served from cache")
			}
			fmt.Println(assertionTable(solution, names))
			printKeyValue("Winner", candidateDisplay(solution.Winner, names))
			printKeyValue("Difficulty", strconv.FormatFloat(solution.Difficulty, 'g', 6, 64))
			printKeyValue("Margin", strconv.Itoa(solution.Margin))
			if solution.WarningTrimTimedOut {
				printWarning("trimming timed out; the assertion set is sufficient but untrimmed")
			}

			if output != "" {
				envelope, err := io.NewSolution(problem, solution, nil)
				if err != nil {
					return err
				}
				if err := io.ExportSolution(output, envelope); err != nil {
					return err
				}
				printFile(output)
			}

			if archive {
				fileStore, err := newFileStore("")
				if err != nil {
					return fmt.Errorf("open archive: %w", err)
				}
				defer fileStore.Close(cmd.Context())
				record := store.NewRecord(contestOrMetadata(contest, problem), problem, solution)
				if err := fileStore.Put(cmd.Context(), record); err != nil {
					return fmt.Errorf("archive record: %w", err)
				}
				printKeyValue("Record", record.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "solution file (omit to skip)")
	cmd.Flags().StringVar(&trim, "trim", "", "trim policy override: None, MinimizeTree or MinimizeAssertions")
	cmd.Flags().Float64Var(&timeLimit, "time-limit", 0, "time limit in seconds, overriding the problem file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the solve cache")
	cmd.Flags().BoolVar(&archive, "archive", false, "record the solve in the local archive")
	cmd.Flags().StringVar(&contest, "contest", "", "contest name for the archive record")

	return cmd
}

// applyTrimFlag overrides the problem's trim algorithm from a flag value.
func applyTrimFlag(problem *raire.Problem, flag string) error {
	if flag == "" {
		return nil
	}
	var algorithm raire.TrimAlgorithm
	switch flag {
	case "None":
		algorithm = raire.TrimNone
	case "MinimizeTree":
		algorithm = raire.TrimMinimizeTree
	case "MinimizeAssertions":
		algorithm = raire.TrimMinimizeAssertions
	default:
		return fmt.Errorf("unknown trim policy %q", flag)
	}
	problem.TrimAlgorithm = &algorithm
	return nil
}

// contestOrMetadata resolves the archive contest name.
func contestOrMetadata(flag string, problem *raire.Problem) string {
	if flag != "" {
		return flag
	}
	if name, ok := problem.Metadata["contest"].(string); ok {
		return name
	}
	return ""
}

// candidateDisplay shows a candidate by name when the metadata has one.
func candidateDisplay(c int, names []string) string {
	if c < len(names) {
		return fmt.Sprintf("%s (%d)", names[c], c)
	}
	return strconv.Itoa(c)
}
