package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"colocate/contact-agent/internal/model"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database connection and schema lifecycle.
type Store struct {
	db *sql.DB
}

// Open initializes the database connection, creating directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InitSchema ensures baseline tables exist.
func (s *Store) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contact_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			peer_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			rssi_values TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			received_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contact_events_started ON contact_events(started_at);`,
		`CREATE TABLE IF NOT EXISTS registration (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			registration_id TEXT NOT NULL,
			secret_key TEXT NOT NULL,
			public_key TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// InsertContactEvent persists a finalized contact event.
func (s *Store) InsertContactEvent(ctx context.Context, event model.ContactEvent) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}

	peerID, err := event.PeerID.MarshalText()
	if err != nil {
		return fmt.Errorf("encode peer id: %w", err)
	}

	rssiJSON, err := json.Marshal(event.RSSIValues)
	if err != nil {
		return fmt.Errorf("encode rssi values: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO contact_events (peer_id, started_at, rssi_values, duration_seconds) VALUES (?, ?, ?, ?);`,
		string(peerID),
		event.StartedAt.UTC().Format(time.RFC3339Nano),
		string(rssiJSON),
		event.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert contact event: %w", err)
	}

	return nil
}

// RecentContactEvents returns the most recent events ordered by received
// time descending.
func (s *Store) RecentContactEvents(ctx context.Context, limit int, since *time.Time) ([]model.StoredContactEvent, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}

	if limit <= 0 {
		limit = 25
	}

	query := `SELECT id, peer_id, started_at, rssi_values, duration_seconds, received_at FROM contact_events`
	var args []interface{}
	if since != nil {
		query += ` WHERE received_at > ?`
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += ` ORDER BY received_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("query recent contact events: %w", err)
	}
	defer rows.Close()

	events := make([]model.StoredContactEvent, 0, limit)

	for rows.Next() {
		event, err := scanContactEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact events: %w", err)
	}

	return events, nil
}

// AllContactEvents returns every stored event, oldest first.
func (s *Store) AllContactEvents(ctx context.Context) ([]model.StoredContactEvent, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, peer_id, started_at, rssi_values, duration_seconds, received_at FROM contact_events ORDER BY started_at ASC;`)
	if err != nil {
		return nil, fmt.Errorf("query contact events: %w", err)
	}
	defer rows.Close()

	var events []model.StoredContactEvent
	for rows.Next() {
		event, err := scanContactEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact events: %w", err)
	}

	return events, nil
}

// PurgeContactEventsBefore deletes events that started before the cutoff and
// returns how many were removed.
func (s *Store) PurgeContactEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("store not initialized")
	}

	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM contact_events WHERE started_at < ?;`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("purge contact events: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge contact events: %w", err)
	}
	return n, nil
}

// SaveRegistration persists the device identity issued by the resident API.
// There is at most one registration per device; saving replaces it.
func (s *Store) SaveRegistration(ctx context.Context, reg model.Registration) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO registration (id, registration_id, secret_key, public_key)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id)
		 DO UPDATE SET registration_id = excluded.registration_id,
			 secret_key = excluded.secret_key,
			 public_key = excluded.public_key;`,
		reg.ID,
		reg.SecretKey,
		reg.PublicKey,
	)
	if err != nil {
		return fmt.Errorf("save registration: %w", err)
	}
	return nil
}

// Registration loads the persisted device identity; ok is false when the
// device has never been registered.
func (s *Store) Registration(ctx context.Context) (model.Registration, bool, error) {
	if s.db == nil {
		return model.Registration{}, false, fmt.Errorf("store not initialized")
	}

	var reg model.Registration
	err := s.db.QueryRowContext(ctx, `SELECT registration_id, secret_key, public_key FROM registration WHERE id = 1;`).
		Scan(&reg.ID, &reg.SecretKey, &reg.PublicKey)
	if err == sql.ErrNoRows {
		return model.Registration{}, false, nil
	}
	if err != nil {
		return model.Registration{}, false, fmt.Errorf("load registration: %w", err)
	}
	return reg, true, nil
}

// WipeData clears all captured telemetry while keeping the schema.
func (s *Store) WipeData(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}

	for _, stmt := range []string{
		`DELETE FROM contact_events;`,
		`DELETE FROM registration;`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wipe data: %w", err)
		}
	}
	return nil
}

func scanContactEvent(rows *sql.Rows) (model.StoredContactEvent, error) {
	var (
		id           int64
		peerIDText   string
		startedAtStr string
		rssiJSON     string
		duration     int64
		receivedStr  string
	)

	if err := rows.Scan(&id, &peerIDText, &startedAtStr, &rssiJSON, &duration, &receivedStr); err != nil {
		return model.StoredContactEvent{}, fmt.Errorf("scan contact event: %w", err)
	}

	var event model.StoredContactEvent
	event.ID = id
	event.DurationSeconds = duration

	if err := event.PeerID.UnmarshalText([]byte(peerIDText)); err != nil {
		return model.StoredContactEvent{}, fmt.Errorf("scan contact event: %w", err)
	}

	if err := json.Unmarshal([]byte(rssiJSON), &event.RSSIValues); err != nil {
		return model.StoredContactEvent{}, fmt.Errorf("scan contact event rssi values: %w", err)
	}

	startedAt, err := time.Parse(time.RFC3339Nano, startedAtStr)
	if err != nil {
		startedAt, _ = time.Parse("2006-01-02T15:04:05Z07:00", startedAtStr)
	}
	event.StartedAt = startedAt

	receivedAt, err := time.Parse(time.RFC3339Nano, receivedStr)
	if err != nil {
		receivedAt, _ = time.Parse("2006-01-02T15:04:05Z07:00", receivedStr)
	}
	event.ReceivedAt = receivedAt

	return event, nil
}
