// Package statsbomb reads StatsBomb open-data JSON (competitions, matches and
// event streams) into the engine's model, from a local checkout or over HTTP.
package statsbomb

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pable/go-fb-metrics/internal/model"
)

type named struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func nameOf(n *named) string {
	if n == nil {
		return ""
	}
	return n.Name
}

type wireCompetition struct {
	CompetitionID   int    `json:"competition_id"`
	SeasonID        int    `json:"season_id"`
	CompetitionName string `json:"competition_name"`
	SeasonName      string `json:"season_name"`
}

type wireMatch struct {
	MatchID     int    `json:"match_id"`
	MatchDate   string `json:"match_date"`
	MatchWeek   int    `json:"match_week"`
	HomeScore   *int   `json:"home_score"`
	AwayScore   *int   `json:"away_score"`
	Competition struct {
		CompetitionID   int    `json:"competition_id"`
		CompetitionName string `json:"competition_name"`
	} `json:"competition"`
	Season struct {
		SeasonID   int    `json:"season_id"`
		SeasonName string `json:"season_name"`
	} `json:"season"`
	HomeTeam struct {
		Name string `json:"home_team_name"`
	} `json:"home_team"`
	AwayTeam struct {
		Name string `json:"away_team_name"`
	} `json:"away_team"`
	Stage *named `json:"competition_stage"`
}

type aerial struct {
	AerialWon *bool `json:"aerial_won"`
}

type card struct {
	Card *named `json:"card"`
}

// wireEvent is the subset of the v4 event schema the engine reads. Pointer
// fields distinguish "absent" from zero so presence bits can be set.
type wireEvent struct {
	Index      int       `json:"index"`
	Period     *int      `json:"period"`
	Minute     *float64  `json:"minute"`
	Type       named     `json:"type"`
	Possession *int      `json:"possession"`
	Team       named     `json:"team"`
	Player     *named    `json:"player"`
	Position   *named    `json:"position"`
	Location   []float64 `json:"location"`

	Pass *struct {
		EndLocation []float64 `json:"end_location"`
		Outcome     *named    `json:"outcome"`
		Cross       *bool     `json:"cross"`
		ShotAssist  *bool     `json:"shot_assist"`
		GoalAssist  *bool     `json:"goal_assist"`
		AerialWon   *bool     `json:"aerial_won"`
	} `json:"pass"`
	Carry *struct {
		EndLocation []float64 `json:"end_location"`
	} `json:"carry"`
	Shot *struct {
		XG         *float64 `json:"statsbomb_xg"`
		PostShotXG *float64 `json:"post_shot_xg"`
		Outcome    *named   `json:"outcome"`
		AerialWon  *bool    `json:"aerial_won"`
	} `json:"shot"`
	Duel *struct {
		Type *named `json:"type"`
	} `json:"duel"`
	BadBehaviour  *card   `json:"bad_behaviour"`
	FoulCommitted *card   `json:"foul_committed"`
	Clearance     *aerial `json:"clearance"`
	Miscontrol    *aerial `json:"miscontrol"`
}

// DecodeCompetitions decodes competitions.json.
func DecodeCompetitions(r io.Reader) ([]model.Competition, error) {
	var wire []wireCompetition
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode competitions: %w", err)
	}
	out := make([]model.Competition, 0, len(wire))
	for _, c := range wire {
		out = append(out, model.Competition{
			CompetitionID:   c.CompetitionID,
			SeasonID:        c.SeasonID,
			CompetitionName: c.CompetitionName,
			SeasonName:      c.SeasonName,
		})
	}
	return out, nil
}

// DecodeMatches decodes matches/<competition>/<season>.json.
func DecodeMatches(r io.Reader) ([]model.Match, error) {
	var wire []wireMatch
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	out := make([]model.Match, 0, len(wire))
	for _, m := range wire {
		match := model.Match{
			MatchID:       m.MatchID,
			MatchDate:     m.MatchDate,
			HomeTeam:      m.HomeTeam.Name,
			AwayTeam:      m.AwayTeam.Name,
			CompetitionID: m.Competition.CompetitionID,
			SeasonID:      m.Season.SeasonID,
			Competition:   m.Competition.CompetitionName,
			Season:        m.Season.SeasonName,
			Stage:         nameOf(m.Stage),
			MatchWeek:     m.MatchWeek,
		}
		if m.HomeScore != nil {
			match.HomeScore = *m.HomeScore
		}
		if m.AwayScore != nil {
			match.AwayScore = *m.AwayScore
		}
		out = append(out, match)
	}
	return out, nil
}

// DecodeEvents decodes events/<match_id>.json, ordered by event index.
func DecodeEvents(r io.Reader, matchID int) ([]model.Event, error) {
	var wire []wireEvent
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode events for match %d: %w", matchID, err)
	}
	out := make([]model.Event, 0, len(wire))
	for i := range wire {
		out = append(out, convertEvent(&wire[i], matchID))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func point(xy []float64) (model.Point, bool) {
	if len(xy) < 2 {
		return model.Point{}, false
	}
	return model.Point{X: xy[0], Y: xy[1]}, true
}

func convertEvent(w *wireEvent, matchID int) model.Event {
	e := model.Event{
		MatchID: matchID,
		Index:   w.Index,
		Type:    model.EventType(w.Type.Name),
		Team:    w.Team.Name,
		Player:  nameOf(w.Player),
	}
	if w.Position != nil {
		e.Position = w.Position.Name
		e.Fields |= model.FieldPosition
	}
	if w.Period != nil {
		e.Period = *w.Period
		e.Fields |= model.FieldPeriod
	}
	if w.Minute != nil {
		e.Minute = *w.Minute
		e.Fields |= model.FieldMinute
	}
	if w.Possession != nil {
		e.Possession = *w.Possession
		e.Fields |= model.FieldPossession
	}
	if p, ok := point(w.Location); ok {
		e.Location = p
		e.Fields |= model.FieldLocation
	}

	if p := w.Pass; p != nil {
		if end, ok := point(p.EndLocation); ok {
			e.EndLocation = end
			e.Fields |= model.FieldEndLocation
		}
		e.PassOutcome = nameOf(p.Outcome)
		if p.Cross != nil {
			e.Cross = *p.Cross
			e.Fields |= model.FieldCross
		}
		// a goal assist is a shot assist whose shot went in
		if p.ShotAssist != nil || p.GoalAssist != nil {
			e.ShotAssist = isTrue(p.ShotAssist) || isTrue(p.GoalAssist)
			e.Fields |= model.FieldShotAssist
		}
		setAerial(&e, p.AerialWon)
	}
	if c := w.Carry; c != nil {
		if end, ok := point(c.EndLocation); ok {
			e.EndLocation = end
			e.Fields |= model.FieldEndLocation
		}
	}
	if s := w.Shot; s != nil {
		e.ShotOutcome = nameOf(s.Outcome)
		if s.XG != nil {
			e.XG = *s.XG
			e.Fields |= model.FieldXG
		}
		if s.PostShotXG != nil {
			e.PostShotXG = *s.PostShotXG
			e.Fields |= model.FieldPostShotXG
		}
		setAerial(&e, s.AerialWon)
	}
	if d := w.Duel; d != nil {
		e.DuelType = nameOf(d.Type)
	}
	if b := w.BadBehaviour; b != nil && b.Card != nil {
		e.BadBehaviourCard = b.Card.Name
		e.Fields |= model.FieldBadBehaviourCard
	}
	if f := w.FoulCommitted; f != nil && f.Card != nil {
		e.FoulCard = f.Card.Name
		e.Fields |= model.FieldFoulCard
	}
	if c := w.Clearance; c != nil {
		setAerial(&e, c.AerialWon)
	}
	if m := w.Miscontrol; m != nil {
		setAerial(&e, m.AerialWon)
	}
	return e
}

func setAerial(e *model.Event, won *bool) {
	if won == nil {
		return
	}
	e.AerialWon = e.AerialWon || *won
	e.Fields |= model.FieldAerialWon
}

func isTrue(b *bool) bool { return b != nil && *b }
