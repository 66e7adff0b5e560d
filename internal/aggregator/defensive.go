package aggregator

import (
	"math"

	"github.com/pable/go-fb-metrics/internal/model"
)

// Defensive computes the team's out-of-possession record.
func Defensive(events []model.Event, tc TeamContext) model.DefensiveMetrics {
	var m model.DefensiveMetrics
	var xga float64
	highLine := tc.Pitch.Length * 2 / 3
	aerialFlag := tc.Caps.Has(model.FieldAerialWon)

	for i := range events {
		e := &events[i]
		if e.Team != tc.Team {
			if e.Type == model.TypeShot {
				xga += e.XG
			}
			continue
		}

		switch e.Type {
		case model.TypePressure:
			m.Pressures++
			if e.Has(model.FieldLocation) && e.Location.X > highLine {
				m.HighPressures++
			}
		case model.TypeInterception:
			m.Interceptions++
		case model.TypeBallRecovery:
			m.BallRecoveries++
		case model.TypeBlock:
			m.Blocks++
		case model.TypeClearance:
			m.Clearances++
		case model.TypeFoulCommitted:
			m.FoulsCommitted++
		}
		if e.IsTackle() {
			m.Tackles++
		}
		if aerialFlag {
			if e.AerialWon {
				m.AerialDuelsWon++
			}
		} else if e.Type == model.TypeDuel {
			m.AerialDuelsWon++
		}

		switch card(e) {
		case model.CardYellow:
			m.YellowCards++
		case model.CardRed, model.CardSecondYellow:
			m.RedCards++
		}
	}

	m.XGA = round(xga, 2)
	m.PressingSuccess = pressingSuccess(events, tc)
	return m
}

// card reads the card from whichever of the two card fields the event carries.
func card(e *model.Event) string {
	switch {
	case e.Has(model.FieldBadBehaviourCard):
		return e.BadBehaviourCard
	case e.Has(model.FieldFoulCard):
		return e.FoulCard
	}
	return ""
}

// pressingSuccess is recoveries over pressures, both counted within the
// possession units where the team pressed.
func pressingSuccess(events []model.Event, tc TeamContext) float64 {
	if !tc.Caps.Has(model.FieldPossession) {
		return 0
	}
	var pressures, recoveries int
	for _, u := range possessionUnits(events) {
		var p, r int
		for i := range u.events {
			e := &u.events[i]
			if e.Team != tc.Team {
				continue
			}
			switch e.Type {
			case model.TypePressure:
				p++
			case model.TypeBallRecovery:
				r++
			}
		}
		if p > 0 {
			pressures += p
			recoveries += r
		}
	}
	if pressures == 0 {
		return 0
	}
	return round(math.Min(float64(recoveries)/float64(pressures)*100, 100), 1)
}
