// Package export writes flattened metric rows and the match index as CSV and
// delivers them to a local directory or an S3 bucket.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pable/go-fb-metrics/internal/model"
)

// IndexColumns is the header of the match index.
var IndexColumns = []string{
	"match_id", "competition", "season", "team1", "team2", "match_date",
	"home_score", "away_score", "competition_stage", "match_week",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteRows writes one CSV record per row. The header is the identity columns
// followed by the first row's metric columns; every row must carry the same
// columns in the same order. With no rows only the identity header is written.
func WriteRows(w io.Writer, rows []model.Row) error {
	cw := csv.NewWriter(w)

	header := model.IdentityColumns
	if len(rows) > 0 {
		header = rows[0].ColumnNames()
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	nid := len(model.IdentityColumns)
	rec := make([]string, len(header))
	for i := range rows {
		r := &rows[i]
		if len(r.Columns) != len(header)-nid {
			return fmt.Errorf("row %d (match %d %s): %d metric columns, header has %d",
				i, r.MatchID, r.TeamType, len(r.Columns), len(header)-nid)
		}
		rec[0] = strconv.Itoa(r.MatchID)
		rec[1] = r.MatchDate
		rec[2] = r.TeamName
		rec[3] = string(r.TeamType)
		rec[4] = r.OpponentName
		for j, c := range r.Columns {
			if c.Name != header[nid+j] {
				return fmt.Errorf("row %d (match %d): column %q where header has %q", i, r.MatchID, c.Name, header[nid+j])
			}
			rec[nid+j] = formatFloat(c.Value)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeRows is WriteRows into a byte slice.
func EncodeRows(rows []model.Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteRows(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SortIndex returns a copy of matches stable-sorted by competition, season
// and match date.
func SortIndex(matches []model.Match) []model.Match {
	out := make([]model.Match, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Competition != b.Competition {
			return a.Competition < b.Competition
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.MatchDate < b.MatchDate
	})
	return out
}

// WriteMatchIndex writes the sorted match index.
func WriteMatchIndex(w io.Writer, matches []model.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(IndexColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range SortIndex(matches) {
		err := cw.Write([]string{
			strconv.Itoa(m.MatchID), m.Competition, m.Season, m.HomeTeam, m.AwayTeam, m.MatchDate,
			strconv.Itoa(m.HomeScore), strconv.Itoa(m.AwayScore), m.Stage, strconv.Itoa(m.MatchWeek),
		})
		if err != nil {
			return fmt.Errorf("write match %d: %w", m.MatchID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeMatchIndex is WriteMatchIndex into a byte slice.
func EncodeMatchIndex(matches []model.Match) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteMatchIndex(&buf, matches); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
