package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/irvaudit/pkg/store"
)

// storeCommand creates the record-archive command group.
func (c *CLI) storeCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the archive of past solves",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "archive directory (default ~/.local/share/irvaudit/records)")

	cmd.AddCommand(c.storeListCommand(&dir))
	cmd.AddCommand(c.storeCSVCommand(&dir))
	cmd.AddCommand(c.storeDeleteCommand(&dir))

	return cmd
}

func (c *CLI) storeListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived solve records",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := newFileStore(*dir)
			if err != nil {
				return err
			}
			defer archive.Close(cmd.Context())

			summaries, err := archive.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("Archive is empty")
				return nil
			}
			for _, s := range summaries {
				name := s.Contest
				if name == "" {
					name = "(unnamed)"
				}
				printInfo("%s", s.ID)
				printKeyValue("Contest", name)
				printKeyValue("Winner", strconv.Itoa(s.Winner))
				printKeyValue("Assertions", strconv.Itoa(s.AssertionCount))
				printKeyValue("Difficulty", strconv.FormatFloat(s.Difficulty, 'g', 6, 64))
				printKeyValue("Created", s.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func (c *CLI) storeCSVCommand(dir *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "csv <record-id>",
		Short: "Export a record's assertions as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := newFileStore(*dir)
			if err != nil {
				return err
			}
			defer archive.Close(cmd.Context())

			record, err := archive.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := store.WriteAssertionsCSV(w, record); err != nil {
				return err
			}
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file (stdout if empty)")
	return cmd
}

func (c *CLI) storeDeleteCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete an archived record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := newFileStore(*dir)
			if err != nil {
				return err
			}
			defer archive.Close(cmd.Context())

			if err := archive.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Record %s deleted", args[0])
			return nil
		},
	}
}
