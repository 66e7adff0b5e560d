package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/storage"
)

var (
	dropForce bool
	dropMatch int
)

// dropCmd deletes the metrics database file, or one stored match.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the metrics database or a single match",
	Long: `Permanently delete the SQLite metrics database, including stored rows, runs
and the event cache. Re-run 'fbmetrics process' afterwards to rebuild.

With --match only that match is removed: its index entry, team rows and
cached events.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().IntVar(&dropMatch, "match", 0, "delete only this match id")
}

func runDrop(cmd *cobra.Command, args []string) error {
	target := dbPath
	if dropMatch != 0 {
		target = fmt.Sprintf("match %d in %s", dropMatch, dbPath)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\nRe-run with --force to confirm.\n", target)
		return nil
	}
	if dropMatch != 0 {
		return dropOne(dropMatch)
	}

	if err := os.Remove(dbPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	// WAL side files
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropOne(matchID int) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	exists, err := db.MatchExists(matchID)
	if err != nil {
		return fmt.Errorf("check match: %w", err)
	}
	if !exists {
		fmt.Fprintf(os.Stdout, "No match stored with id %d, nothing to drop.\n", matchID)
		return nil
	}
	if err := db.DeleteMatch(matchID); err != nil {
		return fmt.Errorf("delete match %d: %w", matchID, err)
	}
	fmt.Fprintf(os.Stdout, "Deleted match %d\n", matchID)
	return nil
}
