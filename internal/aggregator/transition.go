package aggregator

import (
	"math"

	"github.com/pable/go-fb-metrics/internal/model"
)

// Transition computes counter-attacks and press-to-attack conversion. Both
// need possession ids; without them the record is zero.
func Transition(events []model.Event, tc TeamContext) model.TransitionMetrics {
	var m model.TransitionMetrics
	if !tc.Caps.Has(model.FieldPossession) {
		return m
	}
	units := possessionUnits(events)

	for i := range units {
		u := &units[i]
		if u.owner != tc.Team || len(u.events) > CounterAttackMaxEvents {
			continue
		}
		start, end := u.first(), u.last()
		if !start.Has(model.FieldLocation) || !tc.InDefensiveThird(start.Location.X) {
			continue
		}
		switch {
		case end.Type == model.TypeShot:
			m.CounterAttacks++
			m.CounterAttackShots++
		case end.Has(model.FieldLocation) && tc.InFinalThird(end.Location.X):
			m.CounterAttacks++
		}
	}

	// possession ids whose full window holds a shot by the team
	shotWindows := make(map[int]bool)
	for i := range events {
		e := &events[i]
		if e.Type == model.TypeShot && e.Team == tc.Team && e.Has(model.FieldPossession) {
			shotWindows[e.Possession] = true
		}
	}

	var pressed, converted int
	for i := range units {
		u := &units[i]
		if !hasTeamEvent(u.events, tc.Team, model.TypePressure) {
			continue
		}
		pressed++
		if shotWindows[u.id] {
			converted++
		}
	}
	if pressed > 0 {
		m.PressToAttackConversion = round(math.Min(float64(converted)/float64(pressed)*100, 100), 1)
	}
	return m
}

func hasTeamEvent(events []model.Event, team string, t model.EventType) bool {
	for i := range events {
		if events[i].Team == team && events[i].Type == t {
			return true
		}
	}
	return false
}
