package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-fb-metrics/internal/export"
	"github.com/pable/go-fb-metrics/internal/model"
	"github.com/pable/go-fb-metrics/pkg/logger"
)

var indexOut string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Write the match index of every available competition season",
	Long: `List the matches of every competition season offered by the data source and
write them as one CSV, sorted by competition, season and match date.
Seasons that fail to load are skipped.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexOut, "out", "data/matches_index.csv", "CSV destination: file path or s3://bucket/key")
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.Named("index")
	src := openSource(nil)

	comps, err := src.Competitions(ctx)
	if err != nil {
		return fmt.Errorf("list competitions: %w", err)
	}

	var (
		mu  sync.Mutex
		all []model.Match
		g   errgroup.Group
	)
	g.SetLimit(cfg.Workers)
	for _, c := range comps {
		g.Go(func() error {
			matches, err := src.Matches(ctx, c.CompetitionID, c.SeasonID)
			if err != nil {
				log.Warn(ctx, "skipping season",
					logger.String("competition", c.CompetitionName),
					logger.String("season", c.SeasonName),
					logger.Error(err))
				return nil
			}
			log.Debug(ctx, "season listed",
				logger.String("competition", c.CompetitionName),
				logger.String("season", c.SeasonName),
				logger.Int("matches", len(matches)))
			mu.Lock()
			all = append(all, matches...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(all) == 0 {
		fmt.Fprintln(os.Stdout, "No matches found.")
		return nil
	}
	body, err := export.EncodeMatchIndex(all)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	dest, err := export.Write(ctx, indexOut, body, s3Config())
	if err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d matches from %d competition seasons to %s\n", len(all), len(comps), dest)
	return nil
}
