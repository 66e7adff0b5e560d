package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/export"
	"github.com/pable/go-fb-metrics/internal/storage"
)

var (
	exportOut         string
	exportCompetition int
	exportSeason      int
	exportTeams       []string
	exportMatches     []int
	exportSince       string
	exportBefore      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored team rows as CSV",
	Long: `Read stored team rows from the database and write them as CSV to a local
file or an s3://bucket/key destination. Filters combine with AND; leaving a
filter unset keeps every row.

Dates are inclusive for --since and exclusive for --before (YYYY-MM-DD).

Examples:
  fbmetrics export --out data/argentina.csv --team Argentina
  fbmetrics export --out s3://analytics/wc2022.csv --competition 43 --season 106
  fbmetrics export --out final.csv --match 3869685`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOut, "out", "", "CSV destination: file path or s3://bucket/key (required)")
	f.IntVar(&exportCompetition, "competition", 0, "only matches of this competition id")
	f.IntVar(&exportSeason, "season", 0, "only matches of this season id")
	f.StringArrayVar(&exportTeams, "team", nil, "only rows of this team (repeatable)")
	f.IntSliceVar(&exportMatches, "match", nil, "only these match ids (repeatable or comma-separated)")
	f.StringVar(&exportSince, "since", "", "only matches on or after this date")
	f.StringVar(&exportBefore, "before", "", "only matches before this date")
	_ = exportCmd.MarkFlagRequired("out")
}

func parseDay(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", flag, value)
	}
	return t, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	since, err := parseDay("since", exportSince)
	if err != nil {
		return err
	}
	before, err := parseDay("before", exportBefore)
	if err != nil {
		return err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	rows, err := db.ExportRows(storage.RowFilter{
		MatchIDs:      exportMatches,
		Teams:         exportTeams,
		CompetitionID: exportCompetition,
		SeasonID:      exportSeason,
		Since:         since,
		Before:        before,
	})
	if err != nil {
		return fmt.Errorf("export rows: %w", err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No stored rows match the filters.")
		return nil
	}

	body, err := export.EncodeRows(rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	dest, err := export.Write(cmd.Context(), exportOut, body, s3Config())
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d rows to %s\n", len(rows), dest)
	return nil
}
