package model

// Method tags which strategy produced a heuristic-dependent count.
type Method int

const (
	MethodFlag      Method = iota // explicit provider flag
	MethodHeuristic               // geometric or adjacency rule
	MethodEstimated               // fixed-ratio estimate
)

func (m Method) String() string {
	switch m {
	case MethodFlag:
		return "flag"
	case MethodHeuristic:
		return "heuristic"
	case MethodEstimated:
		return "estimated"
	default:
		return "?"
	}
}

// Side is the team's role in the fixture; its value is the flattened team_type.
type Side string

const (
	SideHome Side = "home_team"
	SideAway Side = "away_team"
)

// Metric is one named numeric value within a category.
type Metric struct {
	Name  string
	Value float64
}

// Category is an ordered group of metrics, e.g. "passing".
type Category struct {
	Name    string
	Metrics []Metric
}

// ---- Per-team metric records ----

type PossessionMetrics struct {
	Share float64 // percent of weighted possession, 1 dp
}

func (m PossessionMetrics) Metrics() []Metric {
	return []Metric{{"share", m.Share}}
}

type PassingMetrics struct {
	TotalPasses       int
	CompletedPasses   int
	Accuracy          float64
	ProgressivePasses int
	FinalThirdPasses  int
	PenaltyAreaPasses int
	CrossesAttempted  int
	CrossesCompleted  int
	CrossSuccessRate  float64
	CrossMethod       Method
}

func (m PassingMetrics) Metrics() []Metric {
	return []Metric{
		{"total_passes", float64(m.TotalPasses)},
		{"completed_passes", float64(m.CompletedPasses)},
		{"passing_accuracy", m.Accuracy},
		{"progressive_passes", float64(m.ProgressivePasses)},
		{"final_third_passes", float64(m.FinalThirdPasses)},
		{"penalty_area_passes", float64(m.PenaltyAreaPasses)},
		{"crosses_attempted", float64(m.CrossesAttempted)},
		{"crosses_completed", float64(m.CrossesCompleted)},
		{"cross_success_rate", m.CrossSuccessRate},
	}
}

type ShotMetrics struct {
	TotalShots     int
	ShotsOnTarget  int
	ShotsBlocked   int
	ShotsOffTarget int
	XG             float64
	AvgXGPerShot   float64
	KeyPasses      int
	KeyPassMethod  Method
}

func (m ShotMetrics) Metrics() []Metric {
	return []Metric{
		{"total_shots", float64(m.TotalShots)},
		{"shots_on_target", float64(m.ShotsOnTarget)},
		{"shots_blocked", float64(m.ShotsBlocked)},
		{"shots_off_target", float64(m.ShotsOffTarget)},
		{"xg", m.XG},
		{"avg_xg_per_shot", m.AvgXGPerShot},
		{"key_passes", float64(m.KeyPasses)},
	}
}

type DefensiveMetrics struct {
	Pressures       int
	HighPressures   int
	Tackles         int
	Interceptions   int
	BallRecoveries  int
	Blocks          int
	Clearances      int
	XGA             float64
	PressingSuccess float64
	AerialDuelsWon  int
	FoulsCommitted  int
	YellowCards     int
	RedCards        int
}

func (m DefensiveMetrics) Metrics() []Metric {
	return []Metric{
		{"pressures", float64(m.Pressures)},
		{"high_pressures", float64(m.HighPressures)},
		{"tackles", float64(m.Tackles)},
		{"interceptions", float64(m.Interceptions)},
		{"ball_recoveries", float64(m.BallRecoveries)},
		{"blocks", float64(m.Blocks)},
		{"clearances", float64(m.Clearances)},
		{"xga", m.XGA},
		{"pressing_success", m.PressingSuccess},
		{"aerial_duels_won", float64(m.AerialDuelsWon)},
		{"fouls_committed", float64(m.FoulsCommitted)},
		{"yellow_cards", float64(m.YellowCards)},
		{"red_cards", float64(m.RedCards)},
	}
}

type GoalkeeperMetrics struct {
	Saves              int
	ShotsFaced         int
	GoalsConceded      int
	CleanSheet         int // 1 when no goals conceded
	GoalsPrevented     float64
	PostShotXGConceded float64
	PSXGPlusMinus      float64
	SweeperActions     int
}

func (m GoalkeeperMetrics) Metrics() []Metric {
	return []Metric{
		{"saves", float64(m.Saves)},
		{"shots_faced", float64(m.ShotsFaced)},
		{"goals_conceded", float64(m.GoalsConceded)},
		{"clean_sheets", float64(m.CleanSheet)},
		{"goals_prevented", m.GoalsPrevented},
		{"post_shot_xg_conceded", m.PostShotXGConceded},
		{"psxg_plus_minus", m.PSXGPlusMinus},
		{"sweeper_actions", float64(m.SweeperActions)},
	}
}

type TransitionMetrics struct {
	CounterAttacks          int
	CounterAttackShots      int
	PressToAttackConversion float64
}

func (m TransitionMetrics) Metrics() []Metric {
	return []Metric{
		{"counter_attacks", float64(m.CounterAttacks)},
		{"counter_attack_shots", float64(m.CounterAttackShots)},
		{"turnovers_to_shots", float64(m.CounterAttackShots)},
		{"press_to_attack_conversion", m.PressToAttackConversion},
	}
}

type EfficiencyMetrics struct {
	GoalsScored       int
	GoalsConceded     int
	ConversionRate    float64
	XGVsGoalsDiff     float64 // goals scored minus own xG
	XGAVsConcededDiff float64 // goals conceded minus opponent xG
}

func (m EfficiencyMetrics) Metrics() []Metric {
	return []Metric{
		{"goals_scored", float64(m.GoalsScored)},
		{"goals_conceded", float64(m.GoalsConceded)},
		{"conversion_rate", m.ConversionRate},
		{"xg_vs_goals_diff", m.XGVsGoalsDiff},
		{"xga_vs_conceded_diff", m.XGAVsConcededDiff},
	}
}

// TeamMatchMetrics is every metric category for one team in one match.
type TeamMatchMetrics struct {
	Team     string
	Opponent string
	Side     Side

	Possession PossessionMetrics
	Passing    PassingMetrics
	Attacking  ShotMetrics
	Defensive  DefensiveMetrics
	Goalkeeper GoalkeeperMetrics
	Transition TransitionMetrics
	Efficiency EfficiencyMetrics
}

// Categories returns the metric categories in output column order.
func (t *TeamMatchMetrics) Categories() []Category {
	return []Category{
		{"possession", t.Possession.Metrics()},
		{"passing", t.Passing.Metrics()},
		{"attacking", t.Attacking.Metrics()},
		{"defensive", t.Defensive.Metrics()},
		{"goalkeeper", t.Goalkeeper.Metrics()},
		{"transition", t.Transition.Metrics()},
		{"efficiency", t.Efficiency.Metrics()},
	}
}

// AsMap returns category -> metric name -> value.
func (t *TeamMatchMetrics) AsMap() map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, c := range t.Categories() {
		m := make(map[string]float64, len(c.Metrics))
		for _, metric := range c.Metrics {
			m[metric.Name] = metric.Value
		}
		out[c.Name] = m
	}
	return out
}

// MatchMetrics is the nested result for one match.
type MatchMetrics struct {
	Match Match
	Home  TeamMatchMetrics
	Away  TeamMatchMetrics
}

// ---- Flattened output ----

// IdentityColumns are the leading columns of every flattened row.
var IdentityColumns = []string{"match_id", "match_date", "team_name", "team_type", "opponent_name"}

// Row is one team's flattened metrics for one match. Columns keep category
// order and carry prefixed names such as "passing_total_passes".
type Row struct {
	MatchID      int
	MatchDate    string
	TeamName     string
	TeamType     Side
	OpponentName string
	Columns      []Metric
}

// Value looks up a column by its prefixed name.
func (r *Row) Value(name string) (float64, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

// ColumnNames returns identity columns followed by the metric columns.
func (r *Row) ColumnNames() []string {
	names := make([]string, 0, len(IdentityColumns)+len(r.Columns))
	names = append(names, IdentityColumns...)
	for _, c := range r.Columns {
		names = append(names, c.Name)
	}
	return names
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchID     int
	MatchDate   string
	Competition string
	Season      string
	HomeTeam    string
	AwayTeam    string
	HomeScore   int
	AwayScore   int
	Stage       string
}

// RunSummary records one batch run.
type RunSummary struct {
	RunID      string
	StartedAt  string
	FinishedAt string
	Processed  int
	Failed     int
	Rows       int
}

// TeamAverage holds a team's per-match averages across stored matches.
type TeamAverage struct {
	TeamName      string
	Matches       int
	AvgPossession float64
	AvgXG         float64
	AvgXGA        float64
	AvgPassAcc    float64
	GoalsScored   int
	GoalsConceded int
}

func (a *TeamAverage) GoalDiff() int {
	return a.GoalsScored - a.GoalsConceded
}
