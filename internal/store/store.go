// Package store maintains a local sqlite index of downloaded snow pits so
// bulk fetches can be resumed and queried without re-parsing every file.
package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/whiteroomlabs/snowpit-etl/internal/domain"
)

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// PitRecord is one indexed pit: identity, summary counts, and where the
// CAAML file landed on disk.
type PitRecord struct {
	PitID               string
	Name                sql.NullString
	ObservedAt          sql.NullTime
	Region              sql.NullString
	Country             sql.NullString
	LayerCount          int
	TestCount           int
	DiagnosticCount     int
	PropagationObserved bool
	FilePath            string
	FetchedAt           time.Time
}

// RecordFromEvent builds an index record from a parsed pit event.
func RecordFromEvent(event domain.PitEvent, filePath string) PitRecord {
	rec := PitRecord{
		PitID:               event.PitID,
		LayerCount:          event.LayerCount,
		TestCount:           event.TestCount,
		DiagnosticCount:     event.DiagnosticCount,
		PropagationObserved: event.PropagationObserved,
		FilePath:            filePath,
	}
	if event.Pit != nil && event.Pit.CoreInfo.PitName != nil {
		rec.Name = sql.NullString{String: *event.Pit.CoreInfo.PitName, Valid: true}
	}
	if event.RecordTime != nil {
		rec.ObservedAt = sql.NullTime{Time: event.RecordTime.UTC(), Valid: true}
	}
	if event.Region != nil {
		rec.Region = sql.NullString{String: *event.Region, Valid: true}
	}
	if event.Country != nil {
		rec.Country = sql.NullString{String: *event.Country, Valid: true}
	}
	return rec
}

// UpsertPit inserts or refreshes the index row for a pit. Re-downloading the
// same pit is idempotent.
func (s *Store) UpsertPit(rec PitRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO snowpits (pit_id, name, observed_at, region, country, layer_count, test_count, diagnostic_count, propagation_observed, file_path, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pit_id) DO UPDATE SET
			name = excluded.name,
			observed_at = excluded.observed_at,
			region = excluded.region,
			country = excluded.country,
			layer_count = excluded.layer_count,
			test_count = excluded.test_count,
			diagnostic_count = excluded.diagnostic_count,
			propagation_observed = excluded.propagation_observed,
			file_path = excluded.file_path,
			fetched_at = excluded.fetched_at
	`, rec.PitID, rec.Name, rec.ObservedAt, rec.Region, rec.Country,
		rec.LayerCount, rec.TestCount, rec.DiagnosticCount, rec.PropagationObserved,
		rec.FilePath, time.Now().UTC())
	return err
}

// GetPit returns the indexed record for a pit id, or nil when absent.
func (s *Store) GetPit(pitID string) (*PitRecord, error) {
	row := s.db.QueryRow(`
		SELECT pit_id, name, observed_at, region, country, layer_count, test_count, diagnostic_count, propagation_observed, file_path, fetched_at
		FROM snowpits
		WHERE pit_id = ?
	`, pitID)

	var rec PitRecord
	err := row.Scan(&rec.PitID, &rec.Name, &rec.ObservedAt, &rec.Region, &rec.Country,
		&rec.LayerCount, &rec.TestCount, &rec.DiagnosticCount, &rec.PropagationObserved,
		&rec.FilePath, &rec.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByRegion returns all pits observed in a region, newest first.
func (s *Store) ListByRegion(region string) ([]PitRecord, error) {
	rows, err := s.db.Query(`
		SELECT pit_id, name, observed_at, region, country, layer_count, test_count, diagnostic_count, propagation_observed, file_path, fetched_at
		FROM snowpits
		WHERE region = ?
		ORDER BY observed_at DESC
	`, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListByDateRange returns pits observed within [start, end], oldest first.
func (s *Store) ListByDateRange(start, end time.Time) ([]PitRecord, error) {
	rows, err := s.db.Query(`
		SELECT pit_id, name, observed_at, region, country, layer_count, test_count, diagnostic_count, propagation_observed, file_path, fetched_at
		FROM snowpits
		WHERE observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CountPits returns the total number of indexed pits.
func (s *Store) CountPits() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM snowpits`).Scan(&n)
	return n, err
}

func scanRecords(rows *sql.Rows) ([]PitRecord, error) {
	var records []PitRecord
	for rows.Next() {
		var rec PitRecord
		if err := rows.Scan(&rec.PitID, &rec.Name, &rec.ObservedAt, &rec.Region, &rec.Country,
			&rec.LayerCount, &rec.TestCount, &rec.DiagnosticCount, &rec.PropagationObserved,
			&rec.FilePath, &rec.FetchedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
