package statsbomb

import (
	"context"
	"fmt"

	"github.com/pable/go-fb-metrics/internal/model"
	"github.com/pable/go-fb-metrics/pkg/logger"
)

// EventCache persists raw event streams by match id.
type EventCache interface {
	GetEvents(matchID int) ([]model.Event, bool, error)
	PutEvents(matchID int, events []model.Event) error
}

// CachedSource serves event streams from a cache, falling back to the wrapped
// source on a miss and storing what it fetched. Metadata is never cached.
type CachedSource struct {
	Source
	cache EventCache
	log   logger.Logger
}

func NewCachedSource(src Source, cache EventCache, log logger.Logger) *CachedSource {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedSource{Source: src, cache: cache, log: log}
}

func (c *CachedSource) Events(ctx context.Context, matchID int) ([]model.Event, error) {
	events, ok, err := c.cache.GetEvents(matchID)
	if err != nil {
		// a broken cache entry is refetched rather than failing the match
		c.log.Warn(ctx, "event cache read failed", logger.MatchID(matchID), logger.Error(err))
	} else if ok {
		c.log.Debug(ctx, "event cache hit", logger.MatchID(matchID), logger.Int("events", len(events)))
		return events, nil
	}

	events, err = c.Source.Events(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	if err := c.cache.PutEvents(matchID, events); err != nil {
		c.log.Warn(ctx, "event cache write failed", logger.MatchID(matchID), logger.Error(err))
	}
	return events, nil
}
