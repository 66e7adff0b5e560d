package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-fb-metrics/internal/model"
)

var (
	cGood  = color.New(color.FgGreen)
	cBad   = color.New(color.FgRed)
	cMuted = color.New(color.Faint)
)

// differentials are coloured by sign: positive is good for the team.
var differentials = map[string]bool{
	"efficiency_xg_vs_goals_diff": true,
	"goalkeeper_goals_prevented":  true,
	"goalkeeper_psxg_plus_minus":  true,
}

// invertedDifferentials are good when negative, e.g. conceding fewer than expected.
var invertedDifferentials = map[string]bool{
	"efficiency_xga_vs_conceded_diff": true,
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// formatValue prints whole numbers without decimals and keeps the stored
// precision otherwise.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func signed(name string, v float64) string {
	s := formatValue(v)
	if v > 0 {
		s = "+" + s
	}
	good := v > 0
	if invertedDifferentials[name] {
		good = v < 0
	}
	switch {
	case v == 0:
		return s
	case good:
		return cGood.Sprint(s)
	default:
		return cBad.Sprint(s)
	}
}

// PrintMatchHeader prints a one-line summary header for the match.
func PrintMatchHeader(w io.Writer, m model.Match) {
	fmt.Fprintf(w, "\n%s %d – %d %s  |  Date: %s  |  %s %s",
		m.HomeTeam, m.HomeScore, m.AwayScore, m.AwayTeam, m.MatchDate, m.Competition, m.Season)
	if m.Stage != "" {
		fmt.Fprintf(w, "  |  %s", m.Stage)
	}
	fmt.Fprintf(w, "  |  Match: %d\n\n", m.MatchID)
}

// PrintComparisonTable prints one line per metric with the home and away
// values side by side. rows must be the two rows of one match, home first.
func PrintComparisonTable(w io.Writer, rows []model.Row) error {
	if len(rows) != 2 {
		return fmt.Errorf("comparison needs 2 rows, got %d", len(rows))
	}
	home, away := rows[0], rows[1]
	if len(home.Columns) != len(away.Columns) {
		return fmt.Errorf("match %d: home has %d columns, away %d", home.MatchID, len(home.Columns), len(away.Columns))
	}

	table := newTable(w)
	table.Header("CATEGORY", "METRIC", strings.ToUpper(home.TeamName), strings.ToUpper(away.TeamName))

	prevCategory := ""
	for i, hc := range home.Columns {
		ac := away.Columns[i]
		category, metric, _ := strings.Cut(hc.Name, "_")
		label := category
		if category == prevCategory {
			label = ""
		}
		prevCategory = category

		hv, av := formatValue(hc.Value), formatValue(ac.Value)
		if differentials[hc.Name] || invertedDifferentials[hc.Name] {
			hv, av = signed(hc.Name, hc.Value), signed(ac.Name, ac.Value)
		}
		table.Append(label, metric, hv, av)
	}
	table.Render()
	return nil
}

// PrintStrategyNotes lists which strategy produced the heuristic-dependent
// counts of each team.
func PrintStrategyNotes(w io.Writer, mm *model.MatchMetrics) {
	for _, t := range []*model.TeamMatchMetrics{&mm.Home, &mm.Away} {
		cMuted.Fprintf(w, "  %s: key passes by %s, crosses by %s\n",
			t.Team, t.Attacking.KeyPassMethod, t.Passing.CrossMethod)
	}
	fmt.Fprintln(w)
}

// PrintMatchList prints stored matches.
func PrintMatchList(w io.Writer, matches []model.MatchSummary) {
	table := newTable(w)
	table.Header("MATCH_ID", "DATE", "COMPETITION", "SEASON", "HOME", "SCORE", "AWAY", "STAGE")
	for _, m := range matches {
		table.Append(
			strconv.Itoa(m.MatchID),
			m.MatchDate,
			m.Competition,
			m.Season,
			m.HomeTeam,
			fmt.Sprintf("%d-%d", m.HomeScore, m.AwayScore),
			m.AwayTeam,
			m.Stage,
		)
	}
	table.Render()
}

// PrintTeamSummary prints per-team averages across stored matches.
func PrintTeamSummary(w io.Writer, avgs []model.TeamAverage) {
	table := newTable(w)
	table.Header("TEAM", "MATCHES", "POSS%", "XG", "XGA", "PASS%", "GF", "GA", "GD")
	for _, a := range avgs {
		gd := strconv.Itoa(a.GoalDiff())
		switch {
		case a.GoalDiff() > 0:
			gd = cGood.Sprint("+" + gd)
		case a.GoalDiff() < 0:
			gd = cBad.Sprint(gd)
		}
		table.Append(
			a.TeamName,
			strconv.Itoa(a.Matches),
			fmt.Sprintf("%.1f", a.AvgPossession),
			fmt.Sprintf("%.2f", a.AvgXG),
			fmt.Sprintf("%.2f", a.AvgXGA),
			fmt.Sprintf("%.1f", a.AvgPassAcc),
			strconv.Itoa(a.GoalsScored),
			strconv.Itoa(a.GoalsConceded),
			gd,
		)
	}
	table.Render()
}

// PrintRunSummary prints the outcome of one batch run followed by any
// skipped matches.
func PrintRunSummary(w io.Writer, s model.RunSummary, failures []error) {
	fmt.Fprintf(w, "\nRun %s  |  processed %d  |  failed %d  |  rows %d  |  %s → %s\n",
		s.RunID, s.Processed, s.Failed, s.Rows, s.StartedAt, s.FinishedAt)
	for _, err := range failures {
		cBad.Fprintf(w, "  skipped: %v\n", err)
	}
}

// PrintRunList prints stored runs, most recent first.
func PrintRunList(w io.Writer, runs []model.RunSummary) {
	table := newTable(w)
	table.Header("RUN_ID", "STARTED", "FINISHED", "PROCESSED", "FAILED", "ROWS")
	for _, r := range runs {
		table.Append(
			r.RunID,
			r.StartedAt,
			r.FinishedAt,
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Rows),
		)
	}
	table.Render()
}

// PrintQueryResult prints the result of a raw query followed by its row count.
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
