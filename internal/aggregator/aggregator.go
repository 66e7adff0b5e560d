package aggregator

import (
	"errors"
	"fmt"
	"math"

	"github.com/pable/go-fb-metrics/internal/model"
)

// ErrInvalidMatch is returned when match metadata cannot name two distinct teams.
var ErrInvalidMatch = errors.New("invalid match")

// Engine runs the per-match analysis pipeline. It holds configuration only
// and is safe for concurrent use across matches.
type Engine struct {
	pitch      Pitch
	minSamples int
}

// Option configures an Engine.
type Option func(*Engine)

// WithPitch overrides the 120x80 coordinate frame.
func WithPitch(p Pitch) Option {
	return func(en *Engine) {
		if p.Length > 0 && p.Width > 0 {
			en.pitch = p
		}
	}
}

// WithMinDirectionSamples sets how many located passes direction inference needs.
func WithMinDirectionSamples(n int) Option {
	return func(en *Engine) {
		if n >= 0 {
			en.minSamples = n
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	en := &Engine{pitch: DefaultPitch(), minSamples: DefaultMinDirectionSamples}
	for _, opt := range opts {
		opt(en)
	}
	return en
}

// Pitch returns the engine's coordinate frame.
func (en *Engine) Pitch() Pitch { return en.pitch }

// TeamContext resolves the team's direction against a cleaned stream.
func (en *Engine) TeamContext(events []model.Event, caps model.Field, team, opponent string) TeamContext {
	return TeamContext{
		Team:      team,
		Opponent:  opponent,
		Direction: InferDirection(events, team, en.minSamples),
		Pitch:     en.pitch,
		Caps:      caps,
	}
}

// Analyze cleans the raw events of one match and computes every metric
// category for both teams. The input slice is not modified.
func (en *Engine) Analyze(match model.Match, events []model.Event) (*model.MatchMetrics, error) {
	return en.AnalyzeCleaned(match, Clean(events))
}

// AnalyzeCleaned is Analyze for a stream that has already been through Clean.
func (en *Engine) AnalyzeCleaned(match model.Match, events []model.Event) (*model.MatchMetrics, error) {
	if match.HomeTeam == "" || match.AwayTeam == "" || match.HomeTeam == match.AwayTeam {
		return nil, fmt.Errorf("match %d: %w: home %q away %q", match.MatchID, ErrInvalidMatch, match.HomeTeam, match.AwayTeam)
	}

	caps := model.Capabilities(events)
	poss := PossessionShare(events, match.HomeTeam, match.AwayTeam)

	home := en.TeamContext(events, caps, match.HomeTeam, match.AwayTeam)
	away := en.TeamContext(events, caps, match.AwayTeam, match.HomeTeam)

	return &model.MatchMetrics{
		Match: match,
		Home:  analyzeTeam(events, home, model.SideHome, poss.A),
		Away:  analyzeTeam(events, away, model.SideAway, poss.B),
	}, nil
}

func analyzeTeam(events []model.Event, tc TeamContext, side model.Side, share float64) model.TeamMatchMetrics {
	return model.TeamMatchMetrics{
		Team:       tc.Team,
		Opponent:   tc.Opponent,
		Side:       side,
		Possession: model.PossessionMetrics{Share: share},
		Passing:    Passing(events, tc),
		Attacking:  Shots(events, tc),
		Defensive:  Defensive(events, tc),
		Goalkeeper: Goalkeeper(events, tc),
		Transition: Transition(events, tc),
		Efficiency: Efficiency(events, tc),
	}
}

// Flatten turns one match result into two rows, home first. Column names are
// the category name joined to the metric name, e.g. "passing_total_passes".
func Flatten(mm *model.MatchMetrics) []model.Row {
	if mm == nil {
		return nil
	}
	return []model.Row{
		flattenTeam(mm.Match, &mm.Home),
		flattenTeam(mm.Match, &mm.Away),
	}
}

func flattenTeam(match model.Match, t *model.TeamMatchMetrics) model.Row {
	row := model.Row{
		MatchID:      match.MatchID,
		MatchDate:    match.MatchDate,
		TeamName:     t.Team,
		TeamType:     t.Side,
		OpponentName: t.Opponent,
	}
	for _, c := range t.Categories() {
		for _, m := range c.Metrics {
			row.Columns = append(row.Columns, model.Metric{Name: c.Name + "_" + m.Name, Value: m.Value})
		}
	}
	return row
}

// round rounds x half away from zero to dp decimal places.
func round(x float64, dp int) float64 {
	p := math.Pow10(dp)
	return math.Round(x*p) / p
}

// percent returns n/d as a one-decimal percentage, or 0 when d is zero.
func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return round(float64(n)/float64(d)*100, 1)
}
