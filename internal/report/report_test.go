package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/pable/go-fb-metrics/internal/model"
)

func init() {
	color.NoColor = true
}

func rowsFor(home, away map[string]float64, order []string) []model.Row {
	build := func(team, opp string, side model.Side, vals map[string]float64) model.Row {
		r := model.Row{MatchID: 1, TeamName: team, OpponentName: opp, TeamType: side}
		for _, name := range order {
			r.Columns = append(r.Columns, model.Metric{Name: name, Value: vals[name]})
		}
		return r
	}
	return []model.Row{
		build("Argentina", "France", model.SideHome, home),
		build("France", "Argentina", model.SideAway, away),
	}
}

func TestPrintComparisonTable(t *testing.T) {
	order := []string{"possession_share", "passing_total_passes", "efficiency_xg_vs_goals_diff"}
	rows := rowsFor(
		map[string]float64{"possession_share": 54.3, "passing_total_passes": 612, "efficiency_xg_vs_goals_diff": 0.69},
		map[string]float64{"possession_share": 45.7, "passing_total_passes": 401, "efficiency_xg_vs_goals_diff": -0.3},
		order,
	)

	var buf bytes.Buffer
	if err := PrintComparisonTable(&buf, rows); err != nil {
		t.Fatalf("PrintComparisonTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ARGENTINA", "FRANCE", "possession", "share", "54.3", "45.7", "612", "total_passes", "+0.69", "-0.3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "612.0") {
		t.Errorf("whole numbers should print without decimals:\n%s", out)
	}
}

func TestPrintComparisonTable_BadInput(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintComparisonTable(&buf, nil); err == nil {
		t.Error("expected error for missing rows")
	}
	rows := rowsFor(map[string]float64{}, map[string]float64{}, []string{"possession_share"})
	rows[1].Columns = nil
	if err := PrintComparisonTable(&buf, rows); err == nil {
		t.Error("expected error for mismatched columns")
	}
}

func TestSigned(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		want string
	}{
		{"efficiency_xg_vs_goals_diff", 1.25, "+1.25"},
		{"efficiency_xg_vs_goals_diff", -0.5, "-0.5"},
		{"efficiency_xga_vs_conceded_diff", -0.5, "-0.5"},
		{"goalkeeper_goals_prevented", 0, "0"},
	}
	for _, c := range cases {
		if got := signed(c.name, c.v); got != c.want {
			t.Errorf("signed(%s, %v) = %q, want %q", c.name, c.v, got, c.want)
		}
	}
}

func TestPrintMatchHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintMatchHeader(&buf, model.Match{
		MatchID: 3869685, HomeTeam: "Argentina", AwayTeam: "France", HomeScore: 3, AwayScore: 3,
		MatchDate: "2022-12-18", Competition: "FIFA World Cup", Season: "2022", Stage: "Final",
	})
	out := buf.String()
	for _, want := range []string{"Argentina 3 – 3 France", "2022-12-18", "Final", "3869685"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q: %s", want, out)
		}
	}
}

func TestPrintStrategyNotes(t *testing.T) {
	mm := &model.MatchMetrics{
		Home: model.TeamMatchMetrics{Team: "Argentina",
			Attacking: model.ShotMetrics{KeyPassMethod: model.MethodFlag},
			Passing:   model.PassingMetrics{CrossMethod: model.MethodHeuristic}},
		Away: model.TeamMatchMetrics{Team: "France",
			Attacking: model.ShotMetrics{KeyPassMethod: model.MethodEstimated}},
	}
	var buf bytes.Buffer
	PrintStrategyNotes(&buf, mm)
	out := buf.String()
	if !strings.Contains(out, "Argentina: key passes by flag, crosses by heuristic") {
		t.Errorf("unexpected notes: %s", out)
	}
	if !strings.Contains(out, "France: key passes by estimated") {
		t.Errorf("unexpected notes: %s", out)
	}
}

func TestPrintTeamSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintTeamSummary(&buf, []model.TeamAverage{
		{TeamName: "Argentina", Matches: 7, AvgPossession: 55.25, AvgXG: 2.114, GoalsScored: 15, GoalsConceded: 8},
		{TeamName: "Qatar", Matches: 3, GoalsScored: 1, GoalsConceded: 7},
	})
	out := buf.String()
	for _, want := range []string{"Argentina", "2.11", "+7", "Qatar", "-6"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintRunSummary(&buf, model.RunSummary{RunID: "abc", Processed: 63, Failed: 1, Rows: 126},
		[]error{errors.New("match 7 (fetch): not found")})
	out := buf.String()
	if !strings.Contains(out, "processed 63") || !strings.Contains(out, "rows 126") {
		t.Errorf("unexpected summary: %s", out)
	}
	if !strings.Contains(out, "skipped: match 7 (fetch): not found") {
		t.Errorf("failure not listed: %s", out)
	}
}

func TestPrintMatchAndRunLists(t *testing.T) {
	var buf bytes.Buffer
	PrintMatchList(&buf, []model.MatchSummary{{MatchID: 3869685, HomeTeam: "Argentina", AwayTeam: "France", HomeScore: 3, AwayScore: 3}})
	PrintRunList(&buf, []model.RunSummary{{RunID: "run-1", Processed: 2}})
	out := buf.String()
	for _, want := range []string{"3869685", "3-3", "run-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintQueryResult(t *testing.T) {
	var buf bytes.Buffer
	PrintQueryResult(&buf, []string{"team_name", "value"}, [][]string{{"Argentina", "2.31"}, {"France", "NULL"}})
	out := buf.String()
	for _, want := range []string{"Argentina", "2.31", "NULL", "(2 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintQueryResult(&buf, []string{"x"}, nil)
	if buf.String() != "(no rows)\n" {
		t.Errorf("empty result: got %q", buf.String())
	}
}
