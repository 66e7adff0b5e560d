package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/report"
	"github.com/pable/go-fb-metrics/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <match_id>",
	Short: "Show stored team metrics for a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	matchID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid match id %q: %w", args[0], err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()
	return showMatch(db, matchID)
}

func showMatch(db *storage.DB, matchID int) error {
	match, err := db.GetMatch(matchID)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if match == nil {
		fmt.Fprintf(os.Stderr, "No match stored with id %d\n", matchID)
		return nil
	}

	rows, err := db.GetRows(matchID)
	if err != nil {
		return fmt.Errorf("get rows: %w", err)
	}
	report.PrintMatchHeader(os.Stdout, *match)
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No metrics stored for this match.")
		return nil
	}
	return report.PrintComparisonTable(os.Stdout, rows)
}
