package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-fb-metrics/internal/batch"
	"github.com/pable/go-fb-metrics/internal/export"
	"github.com/pable/go-fb-metrics/internal/model"
	"github.com/pable/go-fb-metrics/internal/report"
	"github.com/pable/go-fb-metrics/internal/storage"
	"github.com/pable/go-fb-metrics/pkg/logger"
	"github.com/pable/go-fb-metrics/pkg/metrics"
)

// process command flags.
var (
	processCompetition int
	processSeason      int
	processMax         int
	processWorkers     int
	processOut         string
	processMetricsAddr string
	processNoStore     bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Analyse every match of a competition season",
	Long: `Fetch the match list of one competition season, analyse each match and
emit one row per team per match. Rows are stored in the database and, with
--out, written as CSV to a local file or an s3://bucket/key destination.

Matches that fail to fetch or analyse are skipped and reported; the run only
fails when no match produced any row.

Examples:
  fbmetrics process --competition 43 --season 106 --out data/wc2022.csv
  fbmetrics process --max 5 --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.IntVar(&processCompetition, "competition", 0, "competition id (default from config)")
	f.IntVar(&processSeason, "season", 0, "season id (default from config)")
	f.IntVar(&processMax, "max", 0, "analyse at most this many matches (0 = all)")
	f.IntVar(&processWorkers, "workers", 0, "concurrent matches (default from config)")
	f.StringVar(&processOut, "out", "", "CSV destination: file path or s3://bucket/key")
	f.StringVar(&processMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	f.BoolVar(&processNoStore, "no-store", false, "do not write results to the database")
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.Named("process")

	competitionID, seasonID := cfg.CompetitionID, cfg.SeasonID
	if cmd.Flags().Changed("competition") {
		competitionID = processCompetition
	}
	if cmd.Flags().Changed("season") {
		seasonID = processSeason
	}
	workers := cfg.Workers
	if processWorkers > 0 {
		workers = processWorkers
	}
	metricsAddr := cfg.MetricsAddr
	if processMetricsAddr != "" {
		metricsAddr = processMetricsAddr
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
	if len(matches) == 0 {
		fmt.Fprintf(os.Stdout, "No matches for competition %d season %d.\n", competitionID, seasonID)
		return nil
	}
	if processMax > 0 && processMax < len(matches) {
		matches = matches[:processMax]
	}

	mgr := metrics.NewManager()
	if metricsAddr != "" {
		stop := serveMetrics(ctx, metricsAddr, mgr, log)
		defer stop()
	}

	runner := &batch.Runner{
		Engine:  newEngine(),
		Source:  src,
		Workers: workers,
		Logger:  log,
		Metrics: mgr,
	}
	res, runErr := runner.Run(ctx, matches)
	if runErr != nil && !errors.Is(runErr, batch.ErrNoRows) {
		return fmt.Errorf("run batch: %w", runErr)
	}

	summary := res.Summary()
	if !processNoStore {
		analysed := make([]model.Match, 0, len(res.Analyses))
		for _, mm := range res.Analyses {
			analysed = append(analysed, mm.Match)
		}
		if err := storeResult(db, analysed, res.Rows, summary); err != nil {
			return err
		}
	}

	if processOut != "" && len(res.Rows) > 0 {
		body, err := export.EncodeRows(res.Rows)
		if err != nil {
			return fmt.Errorf("encode rows: %w", err)
		}
		dest, err := export.Write(ctx, processOut, body, s3Config())
		if err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %d rows to %s\n", len(res.Rows), dest)
	}

	failures := make([]error, len(res.Failures))
	for i, f := range res.Failures {
		failures[i] = f
	}
	report.PrintRunSummary(os.Stdout, summary, failures)
	return runErr
}

// serveMetrics exposes mgr on addr until the returned stop func is called.
func serveMetrics(ctx context.Context, addr string, mgr *metrics.Manager, log logger.Logger) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mgr.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "metrics server", logger.Error(err))
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
