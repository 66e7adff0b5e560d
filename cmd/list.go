package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/report"
	"github.com/pable/go-fb-metrics/internal/storage"
)

var (
	listRuns  bool
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches, or batch runs with --runs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listRuns, "runs", false, "list batch runs instead of matches")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum runs to list (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	if listRuns {
		runs, err := db.ListRuns(listLimit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stdout, "No runs recorded yet. Run 'fbmetrics process' to start one.")
			return nil
		}
		report.PrintRunList(os.Stdout, runs)
		return nil
	}

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'fbmetrics process' or 'fbmetrics match <id>' to add some.")
		return nil
	}
	report.PrintMatchList(os.Stdout, matches)
	return nil
}
