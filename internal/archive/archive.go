// Copyright (c) 2025 Sujith Cherukuri
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps a local history of completed sessions.
//
// When the user clears the transcript, the replaced session is archived
// here before the fresh one starts, so "clear" never silently destroys
// a conversation. Backed by SQLite; each row stores the lightweight
// listing columns plus the full session document as JSON.
package archive

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sujithcherukuri72/shift-ai/internal/model"
)

// ErrNotFound is returned when no archived session matches the id.
var ErrNotFound = errors.New("archived session not found")

// Meta is the lightweight listing view of an archived session.
type Meta struct {
	ID           string    `json:"id"`
	StartTime    time.Time `json:"start_time"`
	ArchivedAt   time.Time `json:"archived_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

// =============================================================================
// STORE
// =============================================================================

// Store is a SQLite-backed archive of completed sessions.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id    TEXT PRIMARY KEY,
		start_time    DATETIME NOT NULL,
		archived_at   DATETIME NOT NULL,
		message_count INTEGER NOT NULL,
		preview       TEXT,
		payload       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_archived_at ON sessions(archived_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Save archives a session snapshot, replacing any prior row for the
// same session id.
func (s *Store) Save(session model.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (session_id, start_time, archived_at, message_count, preview, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			archived_at = excluded.archived_at,
			message_count = excluded.message_count,
			preview = excluded.preview,
			payload = excluded.payload`,
		session.ID,
		session.StartTime.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
		session.MessageCount(),
		session.Preview(80),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to archive session: %w", err)
	}
	return nil
}

// List returns archived session metadata, most recently archived first.
func (s *Store) List() ([]Meta, error) {
	rows, err := s.db.Query(`
		SELECT session_id, start_time, archived_at, message_count, preview
		FROM sessions
		ORDER BY archived_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		var start, archived string
		if err := rows.Scan(&m.ID, &start, &archived, &m.MessageCount, &m.Preview); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		m.StartTime, _ = time.Parse(time.RFC3339Nano, start)
		m.ArchivedAt, _ = time.Parse(time.RFC3339Nano, archived)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Load fetches the full archived session by id.
func (s *Store) Load(id string) (model.Session, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM sessions WHERE session_id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to load archived session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return model.Session{}, fmt.Errorf("archived session is corrupt: %w", err)
	}
	return session, nil
}

// Delete removes an archived session by id.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete archived session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
