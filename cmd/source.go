package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/pable/go-fb-metrics/internal/aggregator"
	"github.com/pable/go-fb-metrics/internal/export"
	"github.com/pable/go-fb-metrics/internal/model"
	"github.com/pable/go-fb-metrics/internal/statsbomb"
	"github.com/pable/go-fb-metrics/internal/storage"
	"github.com/pable/go-fb-metrics/pkg/logger"
)

// openSource returns the configured open-data source. With a database the
// event streams are served through its cache.
func openSource(db *storage.DB) statsbomb.Source {
	var src statsbomb.Source
	if cfg.DataDir != "" {
		src = statsbomb.NewDirSource(cfg.DataDir)
	} else {
		src = statsbomb.NewClient(cfg.BaseURL)
	}
	if db == nil {
		return src
	}
	return statsbomb.NewCachedSource(src, db, logger.Named("cache"))
}

func newEngine() *aggregator.Engine {
	return aggregator.NewEngine(
		aggregator.WithPitch(aggregator.Pitch{Length: cfg.PitchLength, Width: cfg.PitchWidth}),
		aggregator.WithMinDirectionSamples(cfg.MinDirectionSamples),
	)
}

func s3Config() export.S3Config {
	return export.S3Config{Region: cfg.S3Region, Endpoint: cfg.S3Endpoint}
}

// seasonMatches lists one competition season. A season the source does not
// know is reported as an empty list.
func seasonMatches(ctx context.Context, src statsbomb.Source, competitionID, seasonID int) ([]model.Match, error) {
	matches, err := src.Matches(ctx, competitionID, seasonID)
	if errors.Is(err, statsbomb.ErrNotFound) {
		logger.Get().Warn(ctx, "unknown competition season",
			logger.Int("competition_id", competitionID), logger.Int("season_id", seasonID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list matches for competition %d season %d: %w", competitionID, seasonID, err)
	}
	return matches, nil
}

// storeResult persists analysed matches, their rows and the run record.
func storeResult(db *storage.DB, matches []model.Match, rows []model.Row, run model.RunSummary) error {
	for _, m := range matches {
		if err := db.InsertMatch(m); err != nil {
			return fmt.Errorf("store match %d: %w", m.MatchID, err)
		}
	}
	if err := db.InsertRows(rows); err != nil {
		return fmt.Errorf("store rows: %w", err)
	}
	if err := db.InsertRun(run); err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}
