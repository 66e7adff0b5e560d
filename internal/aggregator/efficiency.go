package aggregator

import "github.com/pable/go-fb-metrics/internal/model"

// Efficiency compares goals with expected goals for and against the team.
func Efficiency(events []model.Event, tc TeamContext) model.EfficiencyMetrics {
	var m model.EfficiencyMetrics

	own := teamShots(events, tc.Team, tc.Caps)
	var xg float64
	for _, s := range own {
		if s.ShotOutcome == model.OutcomeGoal {
			m.GoalsScored++
		}
		xg += s.XG
	}

	var xga float64
	for _, s := range teamShots(events, tc.Opponent, tc.Caps) {
		if s.ShotOutcome == model.OutcomeGoal {
			m.GoalsConceded++
		}
		xga += s.XG
	}

	m.ConversionRate = percent(m.GoalsScored, len(own))
	m.XGVsGoalsDiff = round(float64(m.GoalsScored)-xg, 2)
	m.XGAVsConcededDiff = round(float64(m.GoalsConceded)-xga, 2)
	return m
}
