// Package batch runs the aggregation engine over many matches, one task per
// match, isolating per-match failures from the rest of the run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-fb-metrics/internal/aggregator"
	"github.com/pable/go-fb-metrics/internal/model"
	"github.com/pable/go-fb-metrics/pkg/logger"
	"github.com/pable/go-fb-metrics/pkg/metrics"
)

// ErrNoRows is returned when a run finishes without producing any row.
var ErrNoRows = errors.New("no rows produced")

// Failure stages, also used as the metrics stage label.
const (
	StageFetch   = "fetch"
	StageAnalyze = "analyze"
	StagePanic   = "panic"
)

// EventSource supplies the raw event stream of one match.
type EventSource interface {
	Events(ctx context.Context, matchID int) ([]model.Event, error)
}

// MatchFailure is a match that was skipped.
type MatchFailure struct {
	MatchID int
	Stage   string
	Err     error
}

func (f *MatchFailure) Error() string {
	return fmt.Sprintf("match %d (%s): %v", f.MatchID, f.Stage, f.Err)
}

func (f *MatchFailure) Unwrap() error { return f.Err }

// Result is the outcome of one run. Rows and Analyses keep the order of the
// input matches.
type Result struct {
	RunID     uuid.UUID
	Rows      []model.Row
	Analyses  []*model.MatchMetrics
	Failures  []*MatchFailure
	Processed int
	Started   time.Time
	Finished  time.Time
}

// Summary converts the result into its stored form.
func (r *Result) Summary() model.RunSummary {
	return model.RunSummary{
		RunID:      r.RunID.String(),
		StartedAt:  r.Started.UTC().Format(time.RFC3339),
		FinishedAt: r.Finished.UTC().Format(time.RFC3339),
		Processed:  r.Processed,
		Failed:     len(r.Failures),
		Rows:       len(r.Rows),
	}
}

// Runner drives the engine over a set of matches. Engine, Logger and
// Metrics may be nil; a nil Engine uses the defaults.
type Runner struct {
	Engine  *aggregator.Engine
	Source  EventSource
	Workers int
	Logger  logger.Logger
	Metrics *metrics.Manager
}

func (r *Runner) log() logger.Logger {
	if r.Logger == nil {
		return logger.Nop()
	}
	return r.Logger
}

func (r *Runner) engine() *aggregator.Engine {
	if r.Engine == nil {
		return aggregator.NewEngine()
	}
	return r.Engine
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.NumCPU()
}

// Run analyses every match. Failed matches are recorded in Result.Failures
// and skipped. Cancelling ctx stops new matches from being scheduled; the
// partial result is returned with the context error.
func (r *Runner) Run(ctx context.Context, matches []model.Match) (*Result, error) {
	res := &Result{RunID: uuid.New(), Started: time.Now()}
	log := r.log().With(logger.String("run_id", res.RunID.String()))
	log.Info(ctx, "batch started", logger.Int("matches", len(matches)), logger.Int("workers", r.workers()))

	var (
		slots    = make([]*outcome, len(matches))
		failures = make([]*MatchFailure, len(matches))
		mu       sync.Mutex
		g        errgroup.Group
	)
	g.SetLimit(r.workers())

	var cancelled error
	for i, m := range matches {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		g.Go(func() error {
			out, err := r.process(ctx, m)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var mf *MatchFailure
				if !errors.As(err, &mf) {
					mf = &MatchFailure{MatchID: m.MatchID, Stage: StageAnalyze, Err: err}
				}
				failures[i] = mf
				r.Metrics.RecordFailure(mf.Stage)
				log.Error(ctx, "match skipped", logger.MatchID(m.MatchID),
					logger.String("stage", mf.Stage), logger.Error(mf.Err))
				return nil
			}
			slots[i] = out
			res.Processed++
			return nil
		})
	}
	_ = g.Wait()

	for i, out := range slots {
		if mf := failures[i]; mf != nil {
			res.Failures = append(res.Failures, mf)
		}
		if out == nil {
			continue
		}
		res.Analyses = append(res.Analyses, out.metrics)
		res.Rows = append(res.Rows, out.rows...)
	}
	res.Finished = time.Now()
	r.Metrics.RecordRun()
	log.Info(ctx, "batch finished",
		logger.Int("processed", res.Processed),
		logger.Int("failed", len(res.Failures)),
		logger.Int("rows", len(res.Rows)),
		logger.Duration("elapsed", res.Finished.Sub(res.Started)))

	if cancelled != nil {
		return res, fmt.Errorf("batch cancelled: %w", cancelled)
	}
	if len(res.Rows) == 0 {
		return res, ErrNoRows
	}
	return res, nil
}

// RunOne analyses a single match chosen from matches by id. An unknown id
// yields an empty result and a warning rather than an error.
func (r *Runner) RunOne(ctx context.Context, matches []model.Match, matchID int) (*Result, error) {
	for _, m := range matches {
		if m.MatchID == matchID {
			return r.Run(ctx, []model.Match{m})
		}
	}
	r.log().Warn(ctx, "match not found", logger.MatchID(matchID), logger.Int("candidates", len(matches)))
	now := time.Now()
	return &Result{RunID: uuid.New(), Started: now, Finished: now}, nil
}

type outcome struct {
	metrics *model.MatchMetrics
	rows    []model.Row
}

// process runs fetch, clean, analyze and flatten for one match. A panic in
// any stage is converted into a MatchFailure.
func (r *Runner) process(ctx context.Context, m model.Match) (out *outcome, err error) {
	r.Metrics.MatchStarted()
	defer r.Metrics.MatchFinished()
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = &MatchFailure{MatchID: m.MatchID, Stage: StagePanic, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	start := time.Now()
	events, err := r.Source.Events(ctx, m.MatchID)
	if err != nil {
		return nil, &MatchFailure{MatchID: m.MatchID, Stage: StageFetch, Err: err}
	}

	cleaned := aggregator.Clean(events)
	mm, err := r.engine().AnalyzeCleaned(m, cleaned)
	if err != nil {
		return nil, &MatchFailure{MatchID: m.MatchID, Stage: StageAnalyze, Err: err}
	}
	rows := aggregator.Flatten(mm)

	r.Metrics.RecordMatch(time.Since(start), len(events), len(cleaned), len(rows))
	r.log().Debug(ctx, "match analysed", logger.MatchID(m.MatchID),
		logger.Int("events", len(events)), logger.Int("dropped", len(events)-len(cleaned)))
	return &outcome{metrics: mm, rows: rows}, nil
}
