package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-fb-metrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func final() model.Match {
	return model.Match{
		MatchID: 3869685, MatchDate: "2022-12-18",
		HomeTeam: "Argentina", AwayTeam: "France",
		CompetitionID: 43, SeasonID: 106, Competition: "FIFA World Cup", Season: "2022",
		Stage: "Final", MatchWeek: 7, HomeScore: 3, AwayScore: 3,
	}
}

func teamRow(matchID int, side model.Side, team, opp string, vals ...float64) model.Row {
	names := []string{"possession_share", "passing_passing_accuracy", "attacking_xg",
		"defensive_xga", "efficiency_goals_scored", "efficiency_goals_conceded"}
	r := model.Row{MatchID: matchID, TeamName: team, TeamType: side, OpponentName: opp}
	for i, v := range vals {
		r.Columns = append(r.Columns, model.Metric{Name: names[i], Value: v})
	}
	return r
}

func TestMatchInsertAndExists(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.InsertMatch(final()))

	exists, err := db.MatchExists(3869685)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = db.MatchExists(1)
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := db.GetMatch(3869685)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, final(), *got)

	missing, err := db.GetMatch(1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInsertMatchIdempotent(t *testing.T) {
	db := openMemDB(t)
	m := final()
	require.NoError(t, db.InsertMatch(m))
	m.HomeScore = 4
	require.NoError(t, db.InsertMatch(m))

	list, err := db.ListMatches()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].HomeScore)
}

func TestListMatches(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.InsertMatch(model.Match{MatchID: 1, MatchDate: "2022-11-20", HomeTeam: "Qatar", AwayTeam: "Ecuador"}))
	require.NoError(t, db.InsertMatch(final()))

	list, err := db.ListMatches()
	require.NoError(t, err)
	require.Len(t, list, 2)
	// newest first
	assert.Equal(t, 3869685, list[0].MatchID)
	assert.Equal(t, "Final", list[0].Stage)
	assert.Equal(t, "Qatar", list[1].HomeTeam)
}

func TestRowsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.InsertMatch(final()))

	home := teamRow(3869685, model.SideHome, "Argentina", "France", 54.3, 88.1, 2.31)
	away := teamRow(3869685, model.SideAway, "France", "Argentina", 45.7, 82.0, 1.12)
	// stored away first; read back home first
	require.NoError(t, db.InsertRows([]model.Row{away, home}))

	got, err := db.GetRows(3869685)
	require.NoError(t, err)
	require.Len(t, got, 2)

	home.MatchDate = "2022-12-18"
	away.MatchDate = "2022-12-18"
	assert.Equal(t, home, got[0])
	assert.Equal(t, away, got[1])

	// re-inserting replaces rather than duplicates
	require.NoError(t, db.InsertRows([]model.Row{home, away}))
	got, err = db.GetRows(3869685)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, got[0].Columns, 3)
}

func TestGetRowsUnknownMatch(t *testing.T) {
	db := openMemDB(t)
	rows, err := db.GetRows(42)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteMatch(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.InsertMatch(final()))
	require.NoError(t, db.InsertRows([]model.Row{teamRow(3869685, model.SideHome, "Argentina", "France", 50)}))
	require.NoError(t, db.PutEvents(3869685, []model.Event{{MatchID: 3869685, Index: 1}}))

	require.NoError(t, db.DeleteMatch(3869685))

	exists, err := db.MatchExists(3869685)
	require.NoError(t, err)
	assert.False(t, exists)
	rows, err := db.GetRows(3869685)
	require.NoError(t, err)
	assert.Empty(t, rows)
	_, ok, err := db.GetEvents(3869685)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRuns(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.InsertRun(model.RunSummary{RunID: "a", StartedAt: "2026-01-01T10:00:00Z", FinishedAt: "2026-01-01T10:01:00Z", Processed: 10, Failed: 1, Rows: 18}))
	require.NoError(t, db.InsertRun(model.RunSummary{RunID: "b", StartedAt: "2026-01-02T10:00:00Z", FinishedAt: "2026-01-02T10:02:00Z", Processed: 3, Rows: 6}))

	runs, err := db.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].RunID)
	assert.Equal(t, 18, runs[1].Rows)
	assert.Equal(t, 1, runs[1].Failed)

	runs, err = db.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestTeamAverages(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.InsertRows([]model.Row{
		teamRow(1, model.SideHome, "Argentina", "France", 60, 90, 2.0, 1.0, 3, 3),
		teamRow(1, model.SideAway, "France", "Argentina", 40, 80, 1.0, 2.0, 3, 3),
		teamRow(2, model.SideAway, "Argentina", "Croatia", 50, 80, 1.0, 0.5, 3, 0),
	}))

	avgs, err := db.TeamAverages()
	require.NoError(t, err)
	require.Len(t, avgs, 2)

	arg := avgs[0]
	assert.Equal(t, "Argentina", arg.TeamName)
	assert.Equal(t, 2, arg.Matches)
	assert.InDelta(t, 55.0, arg.AvgPossession, 1e-9)
	assert.InDelta(t, 85.0, arg.AvgPassAcc, 1e-9)
	assert.InDelta(t, 1.5, arg.AvgXG, 1e-9)
	assert.InDelta(t, 0.75, arg.AvgXGA, 1e-9)
	assert.Equal(t, 6, arg.GoalsScored)
	assert.Equal(t, 3, arg.GoalsConceded)
	assert.Equal(t, 3, arg.GoalDiff())

	assert.Equal(t, "France", avgs[1].TeamName)
	assert.Equal(t, 1, avgs[1].Matches)
}

func TestEventCache(t *testing.T) {
	db := openMemDB(t)
	events := []model.Event{
		{MatchID: 7, Index: 1, Type: model.TypePass, Team: "Argentina", Period: 1, Minute: 3,
			Location: model.Point{X: 50, Y: 40}, EndLocation: model.Point{X: 65, Y: 38},
			Fields: model.FieldPeriod | model.FieldMinute | model.FieldLocation | model.FieldEndLocation},
		{MatchID: 7, Index: 2, Type: model.TypeShot, Team: "Argentina", XG: 0.7835,
			ShotOutcome: model.OutcomeGoal, Fields: model.FieldXG},
	}

	_, ok, err := db.GetEvents(7)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.PutEvents(7, events))
	got, ok, err := db.GetEvents(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, events, got)

	n, err := db.CachedMatches()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEventCacheCorrupt(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.PutEvents(7, []model.Event{{MatchID: 7, Index: 1}}))

	_, err := db.conn.Exec("UPDATE event_cache SET payload = ? WHERE match_id = 7", []byte("garbage"))
	require.NoError(t, err)

	_, ok, err := db.GetEvents(7)
	assert.ErrorIs(t, err, ErrCorruptCache)
	assert.False(t, ok)
}

func TestExportRows(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.InsertMatch(final()))
	require.NoError(t, db.InsertMatch(model.Match{MatchID: 1, MatchDate: "2022-11-20", HomeTeam: "Qatar", AwayTeam: "Ecuador", CompetitionID: 43, SeasonID: 106}))
	require.NoError(t, db.InsertMatch(model.Match{MatchID: 2, MatchDate: "2023-03-01", HomeTeam: "Spain", AwayTeam: "Italy", CompetitionID: 55, SeasonID: 282}))
	require.NoError(t, db.InsertRows([]model.Row{
		teamRow(3869685, model.SideHome, "Argentina", "France", 54),
		teamRow(3869685, model.SideAway, "France", "Argentina", 46),
		teamRow(1, model.SideHome, "Qatar", "Ecuador", 45),
		teamRow(1, model.SideAway, "Ecuador", "Qatar", 55),
		teamRow(2, model.SideHome, "Spain", "Italy", 61),
		teamRow(2, model.SideAway, "Italy", "Spain", 39),
	}))

	all, err := db.ExportRows(RowFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, 1, all[0].MatchID)
	assert.Equal(t, model.SideHome, all[0].TeamType)
	assert.Equal(t, 2, all[5].MatchID)

	wc, err := db.ExportRows(RowFilter{CompetitionID: 43, SeasonID: 106})
	require.NoError(t, err)
	assert.Len(t, wc, 4)

	since, err := db.ExportRows(RowFilter{Since: time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Len(t, since, 4)

	window, err := db.ExportRows(RowFilter{
		Since:  time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC),
		Before: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	teams, err := db.ExportRows(RowFilter{Teams: []string{"Argentina", "Spain"}})
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Argentina", teams[0].TeamName)
	assert.Equal(t, "Spain", teams[1].TeamName)

	byID, err := db.ExportRows(RowFilter{MatchIDs: []int{1, 2}})
	require.NoError(t, err)
	assert.Len(t, byID, 4)
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, db.InsertMatch(final()))

	cols, rows, err := db.QueryRaw("SELECT home_team, away_score, NULL AS empty FROM matches")
	require.NoError(t, err)
	assert.Equal(t, []string{"home_team", "away_score", "empty"}, cols)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Argentina", "3", "NULL"}, rows[0])

	_, _, err = db.QueryRaw("SELECT * FROM no_such_table")
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
