package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/go-fb-metrics/internal/model"
)

// MatchExists returns true if a match with the given id is already stored.
func (db *DB) MatchExists(matchID int) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch inserts a match record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(m model.Match) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO matches(match_id, competition_id, season_id, competition, season,
			match_date, home_team, away_team, home_score, away_score, stage, match_week)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MatchID, m.CompetitionID, m.SeasonID, m.Competition, m.Season,
		m.MatchDate, m.HomeTeam, m.AwayTeam, m.HomeScore, m.AwayScore, m.Stage, m.MatchWeek,
	)
	return err
}

const matchColumns = `match_id, competition_id, season_id, competition, season,
	match_date, home_team, away_team, home_score, away_score, stage, match_week`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (model.Match, error) {
	var m model.Match
	err := s.Scan(&m.MatchID, &m.CompetitionID, &m.SeasonID, &m.Competition, &m.Season,
		&m.MatchDate, &m.HomeTeam, &m.AwayTeam, &m.HomeScore, &m.AwayScore, &m.Stage, &m.MatchWeek)
	return m, err
}

// GetMatch returns the stored match, or nil if it does not exist.
func (db *DB) GetMatch(matchID int) (*model.Match, error) {
	m, err := scanMatch(db.conn.QueryRow(
		"SELECT "+matchColumns+" FROM matches WHERE match_id = ?", matchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatches returns all stored match summaries ordered by match_date desc.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, match_date, competition, season, home_team, away_team,
		       home_score, away_score, stage
		FROM matches ORDER BY match_date DESC, match_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		var s model.MatchSummary
		if err := rows.Scan(&s.MatchID, &s.MatchDate, &s.Competition, &s.Season,
			&s.HomeTeam, &s.AwayTeam, &s.HomeScore, &s.AwayScore, &s.Stage); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// InsertRows bulk-inserts flattened team rows in a transaction, one
// team_match_metrics record per metric column.
func (db *DB) InsertRows(rows []model.Row) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO team_match_metrics(
			match_id, team_type, team_name, opponent_name, column_name, ordinal, value
		) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		for i, c := range r.Columns {
			if _, err := stmt.Exec(r.MatchID, string(r.TeamType), r.TeamName, r.OpponentName,
				c.Name, i, c.Value); err != nil {
				return fmt.Errorf("insert %s for match %d: %w", c.Name, r.MatchID, err)
			}
		}
	}
	return tx.Commit()
}

// GetRows returns the stored rows for a match, home team first. The match
// date comes from the matches table and is empty when the match is unknown.
func (db *DB) GetRows(matchID int) ([]model.Row, error) {
	rows, err := db.conn.Query(`
		SELECT t.match_id, COALESCE(m.match_date, ''), t.team_name, t.team_type, t.opponent_name,
		       t.column_name, t.value
		FROM team_match_metrics t
		LEFT JOIN matches m ON m.match_id = t.match_id
		WHERE t.match_id = ?
		ORDER BY CASE t.team_type WHEN 'home_team' THEN 0 ELSE 1 END, t.ordinal`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

// collectRows folds (row identity, column) records into rows, relying on the
// query to return each row's columns contiguously and in ordinal order.
func collectRows(rows *sql.Rows) ([]model.Row, error) {
	var out []model.Row
	for rows.Next() {
		var (
			r      model.Row
			teamTy string
			metric model.Metric
		)
		if err := rows.Scan(&r.MatchID, &r.MatchDate, &r.TeamName, &teamTy, &r.OpponentName,
			&metric.Name, &metric.Value); err != nil {
			return nil, err
		}
		r.TeamType = model.Side(teamTy)

		if n := len(out); n > 0 && out[n-1].MatchID == r.MatchID && out[n-1].TeamType == r.TeamType {
			out[n-1].Columns = append(out[n-1].Columns, metric)
			continue
		}
		r.Columns = []model.Metric{metric}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteMatch removes a match together with its metric rows and cached events.
func (db *DB) DeleteMatch(matchID int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, q := range []string{
		"DELETE FROM team_match_metrics WHERE match_id = ?",
		"DELETE FROM event_cache WHERE match_id = ?",
		"DELETE FROM matches WHERE match_id = ?",
	} {
		if _, err := tx.Exec(q, matchID); err != nil {
			return fmt.Errorf("delete match %d: %w", matchID, err)
		}
	}
	return tx.Commit()
}

// InsertRun records a finished batch run.
func (db *DB) InsertRun(r model.RunSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO runs(run_id, started_at, finished_at, processed, failed, row_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt, r.FinishedAt, r.Processed, r.Failed, r.Rows,
	)
	return err
}

// ListRuns returns the most recent runs first. A non-positive limit returns all.
func (db *DB) ListRuns(limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT run_id, started_at, finished_at, processed, failed, row_count
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Processed, &r.Failed, &r.Rows); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TeamAverages aggregates every stored team row into per-team averages.
func (db *DB) TeamAverages() ([]model.TeamAverage, error) {
	rows, err := db.conn.Query(`
		SELECT team_name,
		       COUNT(DISTINCT match_id),
		       AVG(CASE WHEN column_name = 'possession_share' THEN value END),
		       AVG(CASE WHEN column_name = 'attacking_xg' THEN value END),
		       AVG(CASE WHEN column_name = 'defensive_xga' THEN value END),
		       AVG(CASE WHEN column_name = 'passing_passing_accuracy' THEN value END),
		       COALESCE(SUM(CASE WHEN column_name = 'efficiency_goals_scored' THEN value END), 0),
		       COALESCE(SUM(CASE WHEN column_name = 'efficiency_goals_conceded' THEN value END), 0)
		FROM team_match_metrics
		GROUP BY team_name
		ORDER BY team_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamAverage
	for rows.Next() {
		var (
			a                 model.TeamAverage
			poss, xg, xga, pa sql.NullFloat64
			scored, conceded  float64
		)
		if err := rows.Scan(&a.TeamName, &a.Matches, &poss, &xg, &xga, &pa, &scored, &conceded); err != nil {
			return nil, err
		}
		a.AvgPossession = poss.Float64
		a.AvgXG = xg.Float64
		a.AvgXGA = xga.Float64
		a.AvgPassAcc = pa.Float64
		a.GoalsScored = int(scored)
		a.GoalsConceded = int(conceded)
		out = append(out, a)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and every value
// rendered as a string. NULL renders as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				rec[i] = "NULL"
			case []byte:
				rec[i] = string(x)
			default:
				rec[i] = fmt.Sprint(x)
			}
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}
