package aggregator

import "github.com/pable/go-fb-metrics/internal/model"

func onTarget(outcome string) bool {
	return outcome == model.OutcomeSaved || outcome == model.OutcomeGoal
}

func offTarget(outcome string) bool {
	switch outcome {
	case model.OutcomeOffT, model.OutcomeOffTarget, model.OutcomeWide:
		return true
	}
	return false
}

// Shots computes the team's shooting record.
func Shots(events []model.Event, tc TeamContext) model.ShotMetrics {
	var m model.ShotMetrics
	var xg float64
	for _, s := range teamShots(events, tc.Team, tc.Caps) {
		m.TotalShots++
		switch {
		case onTarget(s.ShotOutcome):
			m.ShotsOnTarget++
		case s.ShotOutcome == model.OutcomeBlocked:
			m.ShotsBlocked++
		case offTarget(s.ShotOutcome):
			m.ShotsOffTarget++
		}
		xg += s.XG
	}
	m.XG = round(xg, 2)
	if m.TotalShots > 0 {
		m.AvgXGPerShot = round(xg/float64(m.TotalShots), 3)
	}
	m.KeyPasses, m.KeyPassMethod = keyPasses(events, tc, m.TotalShots)
	return m
}

// keyPasses counts passes that led directly to a shot, using the strongest
// signal the stream offers.
func keyPasses(events []model.Event, tc TeamContext, totalShots int) (int, model.Method) {
	switch {
	case tc.Caps.Has(model.FieldShotAssist):
		n := 0
		for i := range events {
			e := &events[i]
			if e.Type == model.TypePass && e.Team == tc.Team && e.ShotAssist {
				n++
			}
		}
		return n, model.MethodFlag

	case tc.Caps.Has(model.FieldPossession):
		n := 0
		for i := 0; i+1 < len(events); i++ {
			p, s := &events[i], &events[i+1]
			if p.Type != model.TypePass || p.Team != tc.Team {
				continue
			}
			if s.Type != model.TypeShot || s.Team != tc.Team {
				continue
			}
			if p.Has(model.FieldPossession) && s.Has(model.FieldPossession) && p.Possession == s.Possession {
				n++
			}
		}
		return n, model.MethodHeuristic

	default:
		return int(float64(totalShots) * KeyPassShotRatio), model.MethodEstimated
	}
}
