package batch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pable/go-fb-metrics/internal/aggregator"
	"github.com/pable/go-fb-metrics/internal/model"
	"github.com/pable/go-fb-metrics/pkg/logger"
	"github.com/pable/go-fb-metrics/pkg/metrics"
)

var errUpstream = errors.New("upstream unavailable")

type fakeSource struct {
	events map[int][]model.Event
	fail   map[int]error
	panics map[int]bool
	delay  map[int]time.Duration
}

func (f *fakeSource) Events(ctx context.Context, matchID int) ([]model.Event, error) {
	if d := f.delay[matchID]; d > 0 {
		time.Sleep(d)
	}
	if f.panics[matchID] {
		panic("corrupt stream")
	}
	if err := f.fail[matchID]; err != nil {
		return nil, err
	}
	return f.events[matchID], nil
}

func fixture(id int, home, away string) model.Match {
	return model.Match{MatchID: id, MatchDate: "2022-12-18", HomeTeam: home, AwayTeam: away}
}

func someEvents(id int, team string) []model.Event {
	return []model.Event{
		{MatchID: id, Index: 1, Type: model.TypePass, Team: team, Period: 1, Minute: 1, Possession: 1,
			Fields: model.FieldPeriod | model.FieldMinute | model.FieldPossession},
		{MatchID: id, Index: 2, Type: model.TypeShot, Team: team, Period: 1, Minute: 2, Possession: 1,
			ShotOutcome: model.OutcomeGoal, XG: 0.4,
			Fields: model.FieldPeriod | model.FieldMinute | model.FieldPossession | model.FieldXG},
	}
}

func TestRunner_Run(t *testing.T) {
	Convey("Given a runner over a mixed batch", t, func() {
		var buf bytes.Buffer
		src := &fakeSource{
			events: map[int][]model.Event{1: someEvents(1, "Argentina"), 5: someEvents(5, "Spain")},
			fail:   map[int]error{2: errUpstream},
			panics: map[int]bool{3: true},
			delay:  map[int]time.Duration{1: 20 * time.Millisecond, 2: 30 * time.Millisecond},
		}
		r := &Runner{
			Engine:  aggregator.NewEngine(),
			Source:  src,
			Workers: 4,
			Logger:  logger.New(&buf, slog.LevelDebug),
			Metrics: metrics.NewManager(),
		}
		matches := []model.Match{
			fixture(1, "Argentina", "France"),
			fixture(2, "Qatar", "Ecuador"),
			fixture(3, "England", "Iran"),
			fixture(4, "Wales", "Wales"),
			fixture(5, "Spain", "Costa Rica"),
		}

		Convey("When the batch runs", func() {
			res, err := r.Run(context.Background(), matches)

			Convey("Then good matches produce rows in input order", func() {
				So(err, ShouldBeNil)
				So(res.Processed, ShouldEqual, 2)
				So(res.Rows, ShouldHaveLength, 4)
				So(res.Rows[0].MatchID, ShouldEqual, 1)
				So(res.Rows[0].TeamType, ShouldEqual, model.SideHome)
				So(res.Rows[1].TeamName, ShouldEqual, "France")
				So(res.Rows[2].MatchID, ShouldEqual, 5)
				So(res.Analyses, ShouldHaveLength, 2)
				So(res.Analyses[1].Match.MatchID, ShouldEqual, 5)
			})

			Convey("Then each failing match is isolated with its stage", func() {
				So(res.Failures, ShouldHaveLength, 3)
				stages := map[int]string{}
				for _, f := range res.Failures {
					stages[f.MatchID] = f.Stage
				}
				So(stages[2], ShouldEqual, StageFetch)
				So(stages[3], ShouldEqual, StagePanic)
				So(stages[4], ShouldEqual, StageAnalyze)

				for _, f := range res.Failures {
					if f.MatchID == 2 {
						So(errors.Is(f, errUpstream), ShouldBeTrue)
					}
					if f.MatchID == 4 {
						So(errors.Is(f, aggregator.ErrInvalidMatch), ShouldBeTrue)
					}
				}
			})

			Convey("Then failures are listed in input order", func() {
				ids := make([]int, len(res.Failures))
				for i, f := range res.Failures {
					ids[i] = f.MatchID
				}
				So(ids, ShouldResemble, []int{2, 3, 4})
			})

			Convey("Then failures are logged with the match id", func() {
				So(buf.String(), ShouldContainSubstring, "match skipped")
				So(buf.String(), ShouldContainSubstring, "match_id=3")
			})

			Convey("Then the run summary reflects the outcome", func() {
				s := res.Summary()
				So(s.RunID, ShouldEqual, res.RunID.String())
				So(s.Processed, ShouldEqual, 2)
				So(s.Failed, ShouldEqual, 3)
				So(s.Rows, ShouldEqual, 4)
				So(res.Finished.Before(res.Started), ShouldBeFalse)
			})
		})
	})
}

func TestRunner_NoRows(t *testing.T) {
	Convey("Given a batch where every match fails", t, func() {
		r := &Runner{Source: &fakeSource{fail: map[int]error{1: errUpstream, 2: errUpstream}}}

		Convey("When the batch runs", func() {
			res, err := r.Run(context.Background(), []model.Match{
				fixture(1, "Argentina", "France"),
				fixture(2, "Qatar", "Ecuador"),
			})

			Convey("Then the run reports ErrNoRows and keeps the failures", func() {
				So(errors.Is(err, ErrNoRows), ShouldBeTrue)
				So(res, ShouldNotBeNil)
				So(res.Failures, ShouldHaveLength, 2)
				So(res.Rows, ShouldBeEmpty)
			})
		})

		Convey("When the batch is empty", func() {
			_, err := r.Run(context.Background(), nil)

			Convey("Then there is nothing to emit", func() {
				So(errors.Is(err, ErrNoRows), ShouldBeTrue)
			})
		})
	})
}

func TestRunner_EmptyStream(t *testing.T) {
	Convey("Given a match with no events at all", t, func() {
		r := &Runner{Source: &fakeSource{}}

		Convey("When it runs", func() {
			res, err := r.Run(context.Background(), []model.Match{fixture(9, "Argentina", "France")})

			Convey("Then both rows are still produced with neutral values", func() {
				So(err, ShouldBeNil)
				So(res.Rows, ShouldHaveLength, 2)
				share, ok := res.Rows[0].Value("possession_share")
				So(ok, ShouldBeTrue)
				So(share, ShouldEqual, 50.0)
			})
		})
	})
}

func TestRunner_Cancelled(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &Runner{Source: &fakeSource{events: map[int][]model.Event{1: someEvents(1, "Argentina")}}}

		Convey("When the batch runs", func() {
			res, err := r.Run(ctx, []model.Match{fixture(1, "Argentina", "France")})

			Convey("Then no match is scheduled", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(res.Processed, ShouldEqual, 0)
				So(res.Rows, ShouldBeEmpty)
			})
		})
	})
}

func TestRunner_RunOne(t *testing.T) {
	Convey("Given a season of matches", t, func() {
		var buf bytes.Buffer
		r := &Runner{
			Source: &fakeSource{events: map[int][]model.Event{1: someEvents(1, "Argentina")}},
			Logger: logger.New(&buf, slog.LevelInfo),
		}
		matches := []model.Match{fixture(1, "Argentina", "France"), fixture(2, "Qatar", "Ecuador")}

		Convey("When a known match is requested", func() {
			res, err := r.RunOne(context.Background(), matches, 1)

			Convey("Then only its two rows are produced", func() {
				So(err, ShouldBeNil)
				So(res.Rows, ShouldHaveLength, 2)
				So(res.Rows[0].MatchID, ShouldEqual, 1)
				goals, _ := res.Rows[0].Value("efficiency_goals_scored")
				So(goals, ShouldEqual, 1)
			})
		})

		Convey("When an unknown match is requested", func() {
			res, err := r.RunOne(context.Background(), matches, 99)

			Convey("Then the result is empty and a warning is logged", func() {
				So(err, ShouldBeNil)
				So(res.Rows, ShouldBeEmpty)
				So(res.Failures, ShouldBeEmpty)
				So(buf.String(), ShouldContainSubstring, "match not found")
			})
		})
	})
}
