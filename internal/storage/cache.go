package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"

	"github.com/pable/go-fb-metrics/internal/model"
)

// ErrCorruptCache is returned when a cached payload no longer matches the
// fingerprint it was stored with.
var ErrCorruptCache = errors.New("corrupt event cache entry")

// fingerprint is the hex murmur3 128-bit hash of an encoded event stream.
func fingerprint(raw []byte) string {
	h1, h2 := murmur3.Sum128(raw)
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// PutEvents stores a match's raw event stream, replacing any previous copy.
func (db *DB) PutEvents(matchID int, events []model.Event) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events for match %d: %w", matchID, err)
	}
	payload := snappy.Encode(nil, raw)
	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO event_cache(match_id, fingerprint, event_count, payload)
		VALUES (?, ?, ?, ?)`,
		matchID, fingerprint(raw), len(events), payload,
	)
	return err
}

// GetEvents returns the cached event stream for a match. ok is false when
// nothing is cached.
func (db *DB) GetEvents(matchID int) (events []model.Event, ok bool, err error) {
	var (
		fp      string
		count   int
		payload []byte
	)
	err = db.conn.QueryRow(
		"SELECT fingerprint, event_count, payload FROM event_cache WHERE match_id = ?", matchID).
		Scan(&fp, &count, &payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	raw, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, false, fmt.Errorf("match %d: %w: %v", matchID, ErrCorruptCache, err)
	}
	if fingerprint(raw) != fp {
		return nil, false, fmt.Errorf("match %d: %w", matchID, ErrCorruptCache)
	}
	events = make([]model.Event, 0, count)
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, false, fmt.Errorf("decode cached events for match %d: %w", matchID, err)
	}
	return events, true, nil
}

// CachedMatches returns the number of matches with a cached event stream.
func (db *DB) CachedMatches() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM event_cache").Scan(&n)
	return n, err
}
