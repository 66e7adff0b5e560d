package aggregator

import "github.com/pable/go-fb-metrics/internal/model"

// shotKey identifies one physical shot. Location is deliberately not part of
// the key: duplicated shots rarely agree on exact coordinates.
type shotKey struct {
	team   string
	minute float64
	period int
}

// shotFilter applies the minute cap and (team, minute, period) dedup to shots.
// It fails open: without minute data, shots pass through untouched.
type shotFilter struct {
	caps model.Field
	seen map[shotKey]struct{}
}

func newShotFilter(caps model.Field) *shotFilter {
	return &shotFilter{caps: caps, seen: make(map[shotKey]struct{})}
}

// keep reports whether shot e survives; the first shot per key wins.
func (f *shotFilter) keep(e *model.Event) bool {
	if !f.caps.Has(model.FieldMinute) {
		return true
	}
	if e.Minute > MaxShotMinute {
		return false
	}
	k := shotKey{team: e.Team, minute: e.Minute}
	if f.caps.Has(model.FieldPeriod) {
		k.period = e.Period
	}
	if _, dup := f.seen[k]; dup {
		return false
	}
	f.seen[k] = struct{}{}
	return true
}

// Clean returns a filtered copy of one match's events: shootout periods are
// removed, shots after minute 120 are removed, and duplicate shots are
// collapsed to their first occurrence. The input slice is never modified.
func Clean(events []model.Event) []model.Event {
	caps := model.Capabilities(events)
	shots := newShotFilter(caps)

	out := make([]model.Event, 0, len(events))
	for i := range events {
		e := &events[i]
		if caps.Has(model.FieldPeriod) && e.Period > MaxRegulationPeriod {
			continue
		}
		if e.Type == model.TypeShot && !shots.keep(e) {
			continue
		}
		out = append(out, *e)
	}
	return out
}

// teamShots re-applies the shot guard to the team's shots. Running it on an
// already cleaned stream changes nothing.
func teamShots(events []model.Event, team string, caps model.Field) []model.Event {
	f := newShotFilter(caps)
	var out []model.Event
	for i := range events {
		e := &events[i]
		if e.Type != model.TypeShot || e.Team != team {
			continue
		}
		if f.keep(e) {
			out = append(out, *e)
		}
	}
	return out
}
