package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/report"
	"github.com/pable/go-fb-metrics/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all matches stored in the database:
match and cache counts, then per-team averages of possession, xG, xGA and
pass accuracy with goals for and against.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()
	return printSummary(db)
}

func printSummary(db *storage.DB) error {
	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'fbmetrics process' to add some.")
		return nil
	}
	cached, err := db.CachedMatches()
	if err != nil {
		return fmt.Errorf("count cached matches: %w", err)
	}
	runs, err := db.ListRuns(0)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	// ListMatches is newest first.
	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %d\n", len(matches))
	fmt.Fprintf(os.Stdout, "  Date range     : %s → %s\n", matches[len(matches)-1].MatchDate, matches[0].MatchDate)
	fmt.Fprintf(os.Stdout, "  Event streams  : %d cached\n", cached)
	fmt.Fprintf(os.Stdout, "  Batch runs     : %d\n", len(runs))

	avgs, err := db.TeamAverages()
	if err != nil {
		return fmt.Errorf("team averages: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Teams ---\n\n")
	report.PrintTeamSummary(os.Stdout, avgs)
	return nil
}
