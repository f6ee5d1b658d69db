package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/irvaudit/pkg/httputil"
)

// submitCommand creates the submit command: solve on a remote service
// instead of locally.
func (c *CLI) submitCommand() *cobra.Command {
	var (
		server  string
		contest string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "submit <problem.json>",
		Short: "Submit a problem to a remote solve service",
		Long: `Submit sends a problem file to an irvaudit service (see "irvaudit serve")
and prints the archived record id. Transient service failures are retried
with backoff.`,
		Example: `  irvaudit submit contest.json --server http://audit.example.org:8080`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problemJSON, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			client := httputil.NewClient(server)
			reply, status, err := client.Solve(cmd.Context(), problemJSON, contest)
			if err != nil {
				return fmt.Errorf("submit to %s: %w", server, err)
			}

			if output != "" {
				if err := os.WriteFile(output, reply.Result, 0644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printFile(output)
			}
			if status != http.StatusOK {
				printError("service rejected the problem (HTTP %d): %s", status, reply.Result)
				return fmt.Errorf("solve failed with HTTP %d", status)
			}

			printSuccess("Solved remotely")
			printKeyValue("Record", reply.ID)
			if reply.Contest != "" {
				printKeyValue("Contest", reply.Contest)
			}
			if reply.CacheHit {
				printInfo("served from the service cache")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "base URL of the solve service")
	cmd.Flags().StringVar(&contest, "contest", "", "contest name for the archive record")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the service's solution envelope to a file")

	return cmd
}
