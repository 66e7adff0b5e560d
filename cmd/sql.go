package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/report"
	"github.com/pable/go-fb-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the metrics database",
	Long: `Run an arbitrary SQL query against the metrics database and print results as a table.

Schema overview:
  matches(match_id, competition_id, season_id, competition, season, match_date,
    home_team, away_team, home_score, away_score, stage, match_week)
  team_match_metrics(match_id, team_type, team_name, opponent_name,
    column_name, ordinal, value)
  runs(run_id, started_at, finished_at, processed, failed, row_count)
  event_cache(match_id, fingerprint, event_count, payload)

Metrics are stored one per record. team_type is 'home_team' or 'away_team' and
column_name is the prefixed CSV column, e.g. 'attacking_xg':
  SELECT team_name, AVG(value) FROM team_match_metrics
  WHERE column_name = 'attacking_xg' GROUP BY team_name ORDER BY 2 DESC`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	return printQuery(db, strings.Join(args, " "))
}

func printQuery(db *storage.DB, query string) error {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
	return nil
}
