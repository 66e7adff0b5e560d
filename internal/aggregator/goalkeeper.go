package aggregator

import (
	"strings"

	"github.com/pable/go-fb-metrics/internal/model"
)

// Goalkeeper computes the team's goalkeeping record from the opponent's
// on-target shots and the keeper's own defensive actions.
func Goalkeeper(events []model.Event, tc TeamContext) model.GoalkeeperMetrics {
	var m model.GoalkeeperMetrics
	var xgFaced, psxg float64
	hasPSXG := tc.Caps.Has(model.FieldPostShotXG)
	boxEdge := tc.Pitch.Length - PenaltyAreaDepth

	for i := range events {
		e := &events[i]
		if e.Type == model.TypeShot && e.Team != tc.Team {
			if !onTarget(e.ShotOutcome) {
				continue
			}
			m.ShotsFaced++
			if e.ShotOutcome == model.OutcomeGoal {
				m.GoalsConceded++
			} else {
				m.Saves++
			}
			xgFaced += e.XG
			psxg += e.PostShotXG
			continue
		}
		if e.Team == tc.Team && sweeperAction(e) && e.Has(model.FieldLocation) && e.Location.X < boxEdge {
			m.SweeperActions++
		}
	}

	if !hasPSXG {
		psxg = xgFaced
	}
	if m.GoalsConceded == 0 {
		m.CleanSheet = 1
	}
	m.GoalsPrevented = round(xgFaced-float64(m.GoalsConceded), 2)
	m.PostShotXGConceded = round(psxg, 2)
	m.PSXGPlusMinus = m.GoalsPrevented
	return m
}

func sweeperAction(e *model.Event) bool {
	if !strings.Contains(e.Position, model.PositionGoalkeeper) {
		return false
	}
	return e.Type == model.TypePressure || e.Type == model.TypeInterception || e.IsTackle()
}
