// Package sqlitestore archives classified inversion events in a local sqlite
// database for later querying across runs.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/soundinglab/inversion-etl/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS inversion_events (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		station      TEXT    NOT NULL,
		observed_at  TEXT    NOT NULL,
		delta_t      REAL    NOT NULL,
		delta_h      REAL    NOT NULL,
		base_height  REAL    NOT NULL,
		base_temp    REAL    NOT NULL,
		ground       INTEGER NOT NULL,
		night        INTEGER NOT NULL,
		day          INTEGER NOT NULL,
		processed_at TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_inversion_events_station_observed
		ON inversion_events (station, observed_at);
`

// Store provides event persistence on a sqlite database.
// It implements pipeline.Archiver.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertEvents stores one profile's events in a single transaction.
func (s *Store) InsertEvents(ctx context.Context, station string, events []domain.InversionEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO inversion_events (
			station, observed_at, delta_t, delta_h, base_height, base_temp,
			ground, night, day, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, e := range events {
		_, err := tx.ExecContext(ctx, query,
			station,
			e.Observed.UTC().Format(time.RFC3339),
			e.DeltaT,
			e.DeltaH,
			e.BaseHgt,
			e.BaseTemp,
			boolToInt(e.Ground),
			boolToInt(e.Night),
			boolToInt(e.Day),
			e.ProcessedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// EventsBetween returns all archived events for a station observed in
// [from, to), ordered by observation time.
func (s *Store) EventsBetween(ctx context.Context, station string, from, to time.Time) ([]domain.InversionEvent, error) {
	query := `
		SELECT observed_at, delta_t, delta_h, base_height, base_temp,
		       ground, night, day, processed_at
		FROM inversion_events
		WHERE station = ? AND observed_at >= ? AND observed_at < ?
		ORDER BY observed_at
	`

	rows, err := s.db.QueryContext(ctx, query,
		station,
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.InversionEvent
	for rows.Next() {
		var e domain.InversionEvent
		var observed, processed string
		var ground, night, day int

		err := rows.Scan(
			&observed,
			&e.DeltaT,
			&e.DeltaH,
			&e.BaseHgt,
			&e.BaseTemp,
			&ground,
			&night,
			&day,
			&processed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		if e.Observed, err = time.Parse(time.RFC3339, observed); err != nil {
			return nil, fmt.Errorf("parse observed_at: %w", err)
		}
		if e.ProcessedAt, err = time.Parse(time.RFC3339, processed); err != nil {
			return nil, fmt.Errorf("parse processed_at: %w", err)
		}
		e.Ground = ground == 1
		e.Night = night == 1
		e.Day = day == 1

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
