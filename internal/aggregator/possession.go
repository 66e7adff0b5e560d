package aggregator

import "github.com/pable/go-fb-metrics/internal/model"

// unit is a possession unit: a maximal run of consecutive events sharing one
// possession id, attributed to the team with the most events in it.
type unit struct {
	id     int
	events []model.Event // sub-slice of the match stream
	owner  string
}

func (u *unit) first() *model.Event { return &u.events[0] }
func (u *unit) last() *model.Event  { return &u.events[len(u.events)-1] }

// possessionUnits splits the stream into possession units. Events without a
// possession id belong to no unit and break the current run.
func possessionUnits(events []model.Event) []unit {
	var units []unit
	start := -1
	flush := func(end int) {
		if start >= 0 {
			seg := events[start:end]
			units = append(units, unit{id: seg[0].Possession, events: seg, owner: majorityTeam(seg)})
		}
		start = -1
	}
	for i := range events {
		e := &events[i]
		if !e.Has(model.FieldPossession) {
			flush(i)
			continue
		}
		if start >= 0 && events[start].Possession == e.Possession {
			continue
		}
		flush(i)
		start = i
	}
	flush(len(events))
	return units
}

// majorityTeam returns the team with the most events; ties go to the team
// that appears first.
func majorityTeam(events []model.Event) string {
	counts := make(map[string]int)
	var order []string
	for i := range events {
		t := events[i].Team
		if t == "" {
			continue
		}
		if _, ok := counts[t]; !ok {
			order = append(order, t)
		}
		counts[t]++
	}
	best, bestN := "", 0
	for _, t := range order {
		if counts[t] > bestN {
			best, bestN = t, counts[t]
		}
	}
	return best
}

// PossessionSplit is the possession share of the two teams, in percent.
type PossessionSplit struct {
	A, B    float64
	Grouped bool // weighted by possession units rather than the event proxy
}

// PossessionShare splits possession between teams a and b. Streams with
// possession ids are weighted by the event count of each owned unit;
// streams without fall back to counting ball-progressing events.
func PossessionShare(events []model.Event, a, b string) PossessionSplit {
	if model.Capabilities(events).Has(model.FieldPossession) {
		return possessionShareGrouped(events, a, b)
	}
	return possessionShareProxy(events, a, b)
}

func possessionShareGrouped(events []model.Event, a, b string) PossessionSplit {
	var wa, wb int
	for _, u := range possessionUnits(events) {
		switch u.owner {
		case a:
			wa += len(u.events)
		case b:
			wb += len(u.events)
		}
	}
	s := split(wa, wb)
	s.Grouped = true
	return s
}

func possessionShareProxy(events []model.Event, a, b string) PossessionSplit {
	var wa, wb int
	for i := range events {
		switch events[i].Type {
		case model.TypePass, model.TypeCarry, model.TypeDribble:
		default:
			continue
		}
		switch events[i].Team {
		case a:
			wa++
		case b:
			wb++
		}
	}
	return split(wa, wb)
}

// split converts two weights into percentages that sum to 100.
func split(wa, wb int) PossessionSplit {
	total := wa + wb
	if total == 0 {
		return PossessionSplit{A: 50, B: 50}
	}
	pa := round(float64(wa)/float64(total)*100, 1)
	return PossessionSplit{A: pa, B: round(100-pa, 1)}
}
