package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/evry-ai/evry/internal/chat"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	pos   INTEGER PRIMARY KEY,
	id    TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS turns (
	session_id TEXT NOT NULL,
	pos        INTEGER NOT NULL,
	id         TEXT NOT NULL,
	role       TEXT NOT NULL,
	text       TEXT NOT NULL,
	PRIMARY KEY (session_id, pos)
);
`

// SQLiteStore persists the directory in a SQLite database. SaveAll still
// follows whole-document semantics: the previous contents are replaced in
// one transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadAll implements chat.SessionStore.
func (s *SQLiteStore) LoadAll() ([]chat.Session, error) {
	rows, err := s.db.Query(`SELECT id, title FROM sessions ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []chat.Session
	for rows.Next() {
		var sess chat.Session
		if err := rows.Scan(&sess.ID, &sess.Title); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	for i := range sessions {
		transcript, err := s.loadTranscript(sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Transcript = transcript
	}
	return sessions, nil
}

func (s *SQLiteStore) loadTranscript(sessionID string) ([]chat.Turn, error) {
	rows, err := s.db.Query(
		`SELECT id, role, text FROM turns WHERE session_id = ? ORDER BY pos`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var t chat.Turn
		var role string
		if err := rows.Scan(&t.ID, &role, &t.Text); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = chat.Role(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return turns, nil
}

// SaveAll implements chat.SessionStore.
func (s *SQLiteStore) SaveAll(sessions []chat.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM turns`); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}

	for i, sess := range sessions {
		if _, err := tx.Exec(
			`INSERT INTO sessions (pos, id, title) VALUES (?, ?, ?)`,
			i, sess.ID, sess.Title); err != nil {
			return fmt.Errorf("failed to insert session %s: %w", sess.ID, err)
		}
		for j, turn := range sess.Transcript {
			if _, err := tx.Exec(
				`INSERT INTO turns (session_id, pos, id, role, text) VALUES (?, ?, ?, ?, ?)`,
				sess.ID, j, turn.ID, string(turn.Role), turn.Text); err != nil {
				return fmt.Errorf("failed to insert turn: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
