package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/GeorgeStatho/Cloud9Hackathon/internal/model"
)

// SeriesExists reports whether a log with this hash was already ingested.
func (db *DB) SeriesExists(logHash string) (bool, error) {
	var one int
	err := db.conn.QueryRow(`SELECT 1 FROM series WHERE log_hash = ?`, logHash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("series exists: %w", err)
	}
	return true, nil
}

// InsertSeries upserts a series catalog record.
func (db *DB) InsertSeries(s *model.SeriesSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO series
			(log_hash, series_id, ingest_id, ingest_date, maps, game_count, round_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.LogHash, s.SeriesID, s.IngestID, s.IngestDate,
		strings.Join(s.Maps, ","), s.GameCount, s.RoundCount)
	if err != nil {
		return fmt.Errorf("insert series: %w", err)
	}
	return nil
}

// InsertRoundRows writes the resolved rounds of one log in a single
// transaction.
func (db *DB) InsertRoundRows(rows []model.RoundRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO rounds
			(log_hash, game_id, map_name, number, occurred_at, attacker, defender, winner)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare rounds: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(
			r.LogHash, r.GameID, r.MapName, r.Number,
			r.OccurredAt, r.Attacker, r.Defender, r.Winner); err != nil {
			return fmt.Errorf("insert round %s/%d: %w", r.GameID, r.Number, err)
		}
	}
	return tx.Commit()
}

// ListSeries returns every catalog record, newest ingest first.
func (db *DB) ListSeries() ([]model.SeriesSummary, error) {
	rows, err := db.conn.Query(`
		SELECT log_hash, series_id, ingest_id, ingest_date, maps, game_count, round_count
		FROM series
		ORDER BY ingest_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var out []model.SeriesSummary
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// GetSeriesByPrefix resolves a log hash prefix to its catalog record.
// Ambiguous prefixes are an error; no match returns nil.
func (db *DB) GetSeriesByPrefix(prefix string) (*model.SeriesSummary, error) {
	rows, err := db.conn.Query(`
		SELECT log_hash, series_id, ingest_id, ingest_date, maps, game_count, round_count
		FROM series
		WHERE log_hash LIKE ? || '%'`, prefix)
	if err != nil {
		return nil, fmt.Errorf("series by prefix: %w", err)
	}
	defer rows.Close()

	var match *model.SeriesSummary
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		if match != nil {
			return nil, fmt.Errorf("ambiguous hash prefix %q", prefix)
		}
		match = s
	}
	return match, rows.Err()
}

// GetRounds returns the stored rounds of one log, ordered by game and
// round number.
func (db *DB) GetRounds(logHash string) ([]model.RoundRow, error) {
	rows, err := db.conn.Query(`
		SELECT log_hash, game_id, map_name, number, occurred_at, attacker, defender, winner
		FROM rounds
		WHERE log_hash = ?
		ORDER BY game_id, number`, logHash)
	if err != nil {
		return nil, fmt.Errorf("get rounds: %w", err)
	}
	defer rows.Close()

	var out []model.RoundRow
	for rows.Next() {
		var r model.RoundRow
		var occurredAt, attacker, defender, winner sql.NullString
		if err := rows.Scan(
			&r.LogHash, &r.GameID, &r.MapName, &r.Number,
			&occurredAt, &attacker, &defender, &winner); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		r.OccurredAt = occurredAt.String
		r.Attacker = attacker.String
		r.Defender = defender.String
		r.Winner = winner.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanSeries(rows *sql.Rows) (*model.SeriesSummary, error) {
	var s model.SeriesSummary
	var maps string
	if err := rows.Scan(
		&s.LogHash, &s.SeriesID, &s.IngestID, &s.IngestDate,
		&maps, &s.GameCount, &s.RoundCount); err != nil {
		return nil, fmt.Errorf("scan series: %w", err)
	}
	if maps != "" {
		s.Maps = strings.Split(maps, ",")
	}
	return &s, nil
}
