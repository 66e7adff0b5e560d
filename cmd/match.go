package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/batch"
	"github.com/pable/go-fb-metrics/internal/export"
	"github.com/pable/go-fb-metrics/internal/model"
	"github.com/pable/go-fb-metrics/internal/report"
	"github.com/pable/go-fb-metrics/internal/storage"
	"github.com/pable/go-fb-metrics/pkg/logger"
)

var (
	matchCompetition int
	matchSeason      int
	matchOut         string
	matchNoStore     bool
)

var matchCmd = &cobra.Command{
	Use:   "match <match_id>",
	Short: "Analyse a single match and print the team comparison",
	Long: `Analyse one match of a competition season and print both teams' metrics
side by side. An id that is not part of the season prints a notice and
produces no rows.

Example:
  fbmetrics match 3869685 --competition 43 --season 106`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.IntVar(&matchCompetition, "competition", 0, "competition id (default from config)")
	f.IntVar(&matchSeason, "season", 0, "season id (default from config)")
	f.StringVar(&matchOut, "out", "", "also write the two rows as CSV (file path or s3://bucket/key)")
	f.BoolVar(&matchNoStore, "no-store", false, "do not write results to the database")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	matchID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid match id %q: %w", args[0], err)
	}

	competitionID, seasonID := cfg.CompetitionID, cfg.SeasonID
	if cmd.Flags().Changed("competition") {
		competitionID = matchCompetition
	}
	if cmd.Flags().Changed("season") {
		seasonID = matchSeason
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	src := openSource(db)
	matches, err := seasonMatches(ctx, src, competitionID, seasonID)
	if err != nil {
		return err
	}

	runner := &batch.Runner{Engine: newEngine(), Source: src, Workers: 1, Logger: logger.Named("match")}
	res, err := runner.RunOne(ctx, matches, matchID)
	if err != nil && len(res.Failures) == 0 {
		return fmt.Errorf("analyse match %d: %w", matchID, err)
	}
	if len(res.Failures) > 0 {
		return res.Failures[0]
	}
	if len(res.Analyses) == 0 {
		fmt.Fprintf(os.Stdout, "Match %d not found in competition %d season %d.\n", matchID, competitionID, seasonID)
		return nil
	}

	mm := res.Analyses[0]
	if !matchNoStore {
		if err := storeResult(db, []model.Match{mm.Match}, res.Rows, res.Summary()); err != nil {
			return err
		}
	}

	report.PrintMatchHeader(os.Stdout, mm.Match)
	if err := report.PrintComparisonTable(os.Stdout, res.Rows); err != nil {
		return err
	}
	report.PrintStrategyNotes(os.Stdout, mm)

	if matchOut != "" {
		body, err := export.EncodeRows(res.Rows)
		if err != nil {
			return fmt.Errorf("encode rows: %w", err)
		}
		dest, err := export.Write(ctx, matchOut, body, s3Config())
		if err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %d rows to %s\n", len(res.Rows), dest)
	}
	return nil
}
