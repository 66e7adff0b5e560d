package aggregator

import "github.com/pable/go-fb-metrics/internal/model"

// Thresholds and approximations used across the analyzers.
const (
	// MaxRegulationPeriod is the last period of extra time; later periods
	// are penalty-shootout artifacts.
	MaxRegulationPeriod = 4
	// MaxShotMinute drops post-extra-time shot noise.
	MaxShotMinute = 120.0

	DefaultMinDirectionSamples = 10

	// ProgressiveDistance is the minimum forward displacement of a progressive pass.
	ProgressiveDistance = 10.0
	// PenaltyAreaDepth is the depth of the penalty-area band from the goal line.
	PenaltyAreaDepth = 18.0
	// CrossTouchlineBand: with no cross flag, a pass starting this close to
	// either touchline is treated as a cross. Undocumented approximation kept as-is.
	CrossTouchlineBand = 20.0
	// KeyPassShotRatio estimates key passes from shots when neither an assist
	// flag nor possession ids exist. Undocumented approximation kept as-is.
	KeyPassShotRatio = 0.05
	// CounterAttackMaxEvents caps the length of a counter-attack possession.
	CounterAttackMaxEvents = 6
)

// Pitch holds the dimensions of the provider's coordinate frame.
type Pitch struct {
	Length float64
	Width  float64
}

// DefaultPitch is the StatsBomb 120x80 frame.
func DefaultPitch() Pitch {
	return Pitch{Length: 120, Width: 80}
}

// Direction is a team's attacking sign along the x axis.
type Direction int

const (
	LeftToRight Direction = 1
	RightToLeft Direction = -1
)

// TeamContext carries everything per-team that zone classification needs,
// resolved once per match so every analyzer agrees on orientation.
type TeamContext struct {
	Team      string
	Opponent  string
	Direction Direction
	Pitch     Pitch
	Caps      model.Field // optional fields present in the match stream
}

// Forward returns the displacement from a to b toward the team's attacking end.
func (tc TeamContext) Forward(a, b model.Point) float64 {
	return (b.X - a.X) * float64(tc.Direction)
}

// InFinalThird reports whether x lies in the third the team attacks.
func (tc TeamContext) InFinalThird(x float64) bool {
	if tc.Direction == RightToLeft {
		return x <= tc.Pitch.Length/3
	}
	return x >= tc.Pitch.Length*2/3
}

// InDefensiveThird reports whether x lies in the third the team defends.
func (tc TeamContext) InDefensiveThird(x float64) bool {
	if tc.Direction == RightToLeft {
		return x >= tc.Pitch.Length*2/3
	}
	return x <= tc.Pitch.Length/3
}

// InPenaltyBand reports whether x lies within the attacked penalty-area depth.
func (tc TeamContext) InPenaltyBand(x float64) bool {
	if tc.Direction == RightToLeft {
		return x <= PenaltyAreaDepth
	}
	return x >= tc.Pitch.Length-PenaltyAreaDepth
}

// nearTouchline reports whether y is inside the cross band of either touchline.
func (tc TeamContext) nearTouchline(y float64) bool {
	return y < CrossTouchlineBand || y > tc.Pitch.Width-CrossTouchlineBand
}
