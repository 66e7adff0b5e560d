package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/pable/go-fb-metrics/internal/model"
)

// RowFilter narrows ExportRows. Zero-valued fields do not filter.
type RowFilter struct {
	MatchIDs      []int
	Teams         []string // rows of these teams only
	CompetitionID int
	SeasonID      int
	Since         time.Time // inclusive, by match_date
	Before        time.Time // exclusive, by match_date
}

// where renders the filter as a WHERE clause over team_match_metrics t
// joined to matches m, plus its arguments.
func (f RowFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if len(f.MatchIDs) > 0 {
		conds = append(conds, fmt.Sprintf("t.match_id IN (%s)", placeholders(len(f.MatchIDs))))
		for _, id := range f.MatchIDs {
			args = append(args, id)
		}
	}
	if len(f.Teams) > 0 {
		conds = append(conds, fmt.Sprintf("t.team_name IN (%s)", placeholders(len(f.Teams))))
		for _, team := range f.Teams {
			args = append(args, team)
		}
	}
	if f.CompetitionID != 0 {
		conds = append(conds, "m.competition_id = ?")
		args = append(args, f.CompetitionID)
	}
	if f.SeasonID != 0 {
		conds = append(conds, "m.season_id = ?")
		args = append(args, f.SeasonID)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "m.match_date >= ?")
		args = append(args, f.Since.Format("2006-01-02"))
	}
	if !f.Before.IsZero() {
		conds = append(conds, "m.match_date < ?")
		args = append(args, f.Before.Format("2006-01-02"))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// ExportRows returns stored rows matching the filter, ordered by match date
// then match id, home team first within a match.
func (db *DB) ExportRows(f RowFilter) ([]model.Row, error) {
	where, args := f.where()
	query := fmt.Sprintf(`
		SELECT t.match_id, COALESCE(m.match_date, ''), t.team_name, t.team_type, t.opponent_name,
		       t.column_name, t.value
		FROM team_match_metrics t
		LEFT JOIN matches m ON m.match_id = t.match_id
		%s
		ORDER BY COALESCE(m.match_date, ''), t.match_id,
		         CASE t.team_type WHEN 'home_team' THEN 0 ELSE 1 END, t.ordinal`, where)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
