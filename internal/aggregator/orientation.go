package aggregator

import "github.com/pable/go-fb-metrics/internal/model"

// InferDirection estimates the team's attacking direction from the mean x
// displacement of its passes that have both a start and an end location.
// With fewer than minSamples such passes it assumes left-to-right.
//
// Teams switch ends between periods and the provider does not normalise
// coordinates per team, so direction is measured rather than assumed.
func InferDirection(events []model.Event, team string, minSamples int) Direction {
	var sum float64
	n := 0
	for i := range events {
		e := &events[i]
		if e.Type != model.TypePass || e.Team != team {
			continue
		}
		if !e.Has(model.FieldLocation | model.FieldEndLocation) {
			continue
		}
		sum += e.EndLocation.X - e.Location.X
		n++
	}
	if n == 0 || n < minSamples {
		return LeftToRight
	}
	if sum/float64(n) >= 0 {
		return LeftToRight
	}
	return RightToLeft
}
