package model

// EventType is the provider's name for an on-ball or off-ball action.
type EventType string

const (
	TypePass          EventType = "Pass"
	TypeShot          EventType = "Shot"
	TypePressure      EventType = "Pressure"
	TypeTackle        EventType = "Tackle"
	TypeInterception  EventType = "Interception"
	TypeBallRecovery  EventType = "Ball Recovery"
	TypeBlock         EventType = "Block"
	TypeClearance     EventType = "Clearance"
	TypeDuel          EventType = "Duel"
	TypeFoulCommitted EventType = "Foul Committed"
	TypeFoulWon       EventType = "Foul Won"
	TypeDribble       EventType = "Dribble"
	TypeCarry         EventType = "Carry"
	TypeBadBehaviour  EventType = "Bad Behaviour"
)

// Shot outcomes as named by the provider.
const (
	OutcomeGoal      = "Goal"
	OutcomeSaved     = "Saved"
	OutcomeBlocked   = "Blocked"
	OutcomeOffT      = "Off T"
	OutcomeOffTarget = "Off Target"
	OutcomeWide      = "Wide"
)

// Card names.
const (
	CardYellow       = "Yellow Card"
	CardSecondYellow = "Second Yellow"
	CardRed          = "Red Card"
)

// DuelTackle is the duel type the provider uses for tackles.
const DuelTackle = "Tackle"

// PositionGoalkeeper is matched as a substring of Event.Position.
const PositionGoalkeeper = "Goalkeeper"

// Field flags an optional provider field as populated on an event.
// A stream "has" a field when any of its events carries it; analyzers
// choose between flag-based and fallback strategies on that basis.
type Field uint32

const (
	FieldPeriod Field = 1 << iota
	FieldMinute
	FieldPossession
	FieldLocation
	FieldEndLocation
	FieldXG
	FieldPostShotXG
	FieldCross
	FieldShotAssist
	FieldAerialWon
	FieldBadBehaviourCard
	FieldFoulCard
	FieldPosition
)

// Has reports whether every flag in x is set.
func (f Field) Has(x Field) bool { return f&x == x }

// Point is a 2D pitch coordinate in provider units.
type Point struct{ X, Y float64 }

// ---- Raw events handed in by the data collaborator ----

// Event is one sporting action within a match. Optional fields are only
// meaningful when the matching Field flag is set in Fields.
type Event struct {
	MatchID  int
	Index    int // 1-based order within the match
	Type     EventType
	Team     string
	Player   string
	Position string // player's role, e.g. "Goalkeeper"

	Period     int     // 1..4 regulation/extra time; 5 is the shootout
	Minute     float64 // match clock
	Possession int     // sequence id shared by events of one possession

	Location    Point
	EndLocation Point // Pass and Carry only

	PassOutcome string // empty means the pass was completed
	Cross       bool
	ShotAssist  bool // pass led directly to a shot

	ShotOutcome string
	XG          float64
	PostShotXG  float64

	DuelType         string
	AerialWon        bool
	BadBehaviourCard string
	FoulCard         string

	Fields Field
}

// Has reports whether the event carries the given optional field(s).
func (e *Event) Has(f Field) bool { return e.Fields.Has(f) }

// IsTackle reports whether the event is a tackle, either as its own type or
// as a duel of type Tackle.
func (e *Event) IsTackle() bool {
	return e.Type == TypeTackle || (e.Type == TypeDuel && e.DuelType == DuelTackle)
}

// Capabilities returns the union of optional fields present anywhere in events.
func Capabilities(events []Event) Field {
	var f Field
	for i := range events {
		f |= events[i].Fields
	}
	return f
}

// ---- Match metadata ----

// Competition identifies one competition season offered by the provider.
type Competition struct {
	CompetitionID   int
	SeasonID        int
	CompetitionName string
	SeasonName      string
}

// Match is immutable match metadata supplied alongside its event stream.
type Match struct {
	MatchID       int
	MatchDate     string
	HomeTeam      string
	AwayTeam      string
	CompetitionID int
	SeasonID      int
	Competition   string
	Season        string
	Stage         string
	MatchWeek     int
	HomeScore     int
	AwayScore     int
}
