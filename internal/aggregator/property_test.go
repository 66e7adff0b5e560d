package aggregator

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/pable/go-fb-metrics/internal/model"
)

// streamFrom decodes generated integers into a possession-tagged stream:
// the low bit picks the team, the rest picks the possession id.
func streamFrom(codes []int) []model.Event {
	events := make([]model.Event, 0, len(codes))
	for _, c := range codes {
		team := teamA
		if c%2 == 1 {
			team = teamB
		}
		events = append(events, inPoss(ev(model.TypePass, team), c/2))
	}
	return seq(events...)
}

func TestProperty_PossessionSumsToHundred(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("split weights sum to 100", prop.ForAll(
		func(wa, wb int) bool {
			s := split(wa, wb)
			return math.Abs(s.A+s.B-100) < 1e-9
		},
		gen.IntRange(0, 5000),
		gen.IntRange(0, 5000),
	))

	properties.Property("grouped shares sum to 100", prop.ForAll(
		func(codes []int) bool {
			s := PossessionShare(streamFrom(codes), teamA, teamB)
			return math.Abs(s.A+s.B-100) < 1e-9 && s.A >= 0 && s.B >= 0
		},
		gen.SliceOf(gen.IntRange(0, 11)),
	))

	properties.TestingRun(t)
}

func TestProperty_CleanInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	shots := func(periods, minutes []int) []model.Event {
		n := len(periods)
		if len(minutes) < n {
			n = len(minutes)
		}
		events := make([]model.Event, 0, n)
		for i := 0; i < n; i++ {
			events = append(events, shot(teamA, float64(minutes[i]), periods[i], model.OutcomeWide, 0.1))
		}
		return seq(events...)
	}

	properties.Property("no event with period above 4 survives", prop.ForAll(
		func(periods, minutes []int) bool {
			for _, e := range Clean(shots(periods, minutes)) {
				if e.Period > MaxRegulationPeriod || e.Minute > MaxShotMinute {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 5)),
		gen.SliceOf(gen.IntRange(0, 130)),
	))

	properties.Property("shot keys are unique after cleaning", prop.ForAll(
		func(periods, minutes []int) bool {
			seen := make(map[shotKey]bool)
			for _, e := range Clean(shots(periods, minutes)) {
				k := shotKey{team: e.Team, minute: e.Minute, period: e.Period}
				if seen[k] {
					return false
				}
				seen[k] = true
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 4)),
		gen.SliceOf(gen.IntRange(0, 20)),
	))

	properties.Property("cleaning is idempotent", prop.ForAll(
		func(periods, minutes []int) bool {
			once := Clean(shots(periods, minutes))
			twice := Clean(once)
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i].Index != twice[i].Index {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 5)),
		gen.SliceOf(gen.IntRange(0, 130)),
	))

	properties.TestingRun(t)
}

func TestProperty_DirectionDefaultsBelowMinSamples(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("fewer than min samples is always +1", prop.ForAll(
		func(deltas []float64) bool {
			events := make([]model.Event, 0, len(deltas))
			for _, d := range deltas {
				events = append(events, pass(teamA, 60, 40, 60+d, 40))
			}
			return InferDirection(events, teamA, len(deltas)+1) == LeftToRight
		},
		gen.SliceOf(gen.Float64Range(-60, 60)),
	))

	properties.TestingRun(t)
}

func TestProperty_GoalsPrevented(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	outcomes := []string{model.OutcomeGoal, model.OutcomeSaved, model.OutcomeWide, model.OutcomeBlocked}

	properties.Property("goals prevented is faced xg minus goals conceded", prop.ForAll(
		func(kinds []int, xgs []float64) bool {
			n := len(kinds)
			if len(xgs) < n {
				n = len(xgs)
			}
			var events []model.Event
			var faced float64
			goals := 0
			for i := 0; i < n; i++ {
				outcome := outcomes[kinds[i]]
				events = append(events, shot(teamB, float64(i), 1, outcome, xgs[i]))
				if onTarget(outcome) {
					faced += xgs[i]
				}
				if outcome == model.OutcomeGoal {
					goals++
				}
			}
			events = seq(events...)
			m := Goalkeeper(events, ctxFor(events, teamA, teamB, LeftToRight))
			return math.Abs(m.GoalsPrevented-(faced-float64(goals))) <= 0.005+1e-9
		},
		gen.SliceOf(gen.IntRange(0, len(outcomes)-1)),
		gen.SliceOf(gen.Float64Range(0, 1)),
	))

	properties.TestingRun(t)
}

func TestProperty_NoPassesZeroAccuracy(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("accuracy is zero without own passes", prop.ForAll(
		func(n int) bool {
			var events []model.Event
			for i := 0; i < n; i++ {
				events = append(events, pass(teamB, 10, 10, 30, 10))
			}
			m := Passing(events, ctxFor(events, teamA, teamB, LeftToRight))
			return m.TotalPasses == 0 && m.Accuracy == 0
		},
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}
