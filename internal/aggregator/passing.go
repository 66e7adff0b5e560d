package aggregator

import "github.com/pable/go-fb-metrics/internal/model"

// Passing computes the team's passing record. Zone classification uses the
// pass start location; progression uses the full displacement.
func Passing(events []model.Event, tc TeamContext) model.PassingMetrics {
	var m model.PassingMetrics
	m.CrossMethod = model.MethodHeuristic
	if tc.Caps.Has(model.FieldCross) {
		m.CrossMethod = model.MethodFlag
	}

	for i := range events {
		e := &events[i]
		if e.Type != model.TypePass || e.Team != tc.Team {
			continue
		}
		m.TotalPasses++
		complete := e.PassOutcome == ""
		if complete {
			m.CompletedPasses++
		}

		// the flag needs no location; the touchline band does
		var cross bool
		if m.CrossMethod == model.MethodFlag {
			cross = e.Cross
		} else {
			cross = e.Has(model.FieldLocation) && tc.nearTouchline(e.Location.Y)
		}
		if cross {
			m.CrossesAttempted++
			if complete {
				m.CrossesCompleted++
			}
		}

		if !e.Has(model.FieldLocation) {
			continue
		}
		if complete && e.Has(model.FieldEndLocation) && tc.Forward(e.Location, e.EndLocation) >= ProgressiveDistance {
			m.ProgressivePasses++
		}
		if tc.InFinalThird(e.Location.X) {
			m.FinalThirdPasses++
		}
		if tc.InPenaltyBand(e.Location.X) {
			m.PenaltyAreaPasses++
		}
	}

	m.Accuracy = percent(m.CompletedPasses, m.TotalPasses)
	m.CrossSuccessRate = percent(m.CrossesCompleted, m.CrossesAttempted)
	return m
}
