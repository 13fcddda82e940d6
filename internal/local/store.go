// Package local is the offline side of the session runner: a SQLite cache
// of exercise history for pre-fill and PR detection without a server, plus
// a queue of finished sessions awaiting sync.
package local

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/repflow/internal/pr"
	"github.com/claude/repflow/internal/storage"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the local SQLite database at dir/repflow.db.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the local database.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating local dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "repflow.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS exercise_history (
			exercise     TEXT NOT NULL,
			weight_kg    REAL NOT NULL,
			reps         INTEGER NOT NULL,
			performed_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exercise_history_name
			ON exercise_history (exercise, performed_at DESC)`,
		`CREATE TABLE IF NOT EXISTS pending_sessions (
			id         TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			synced     INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating local schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// SaveSet records one completed strength set locally.
func (s *Store) SaveSet(exercise string, weightKg float64, reps int, performedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO exercise_history (exercise, weight_kg, reps, performed_at) VALUES (?, ?, ?, ?)`,
		exercise, weightKg, reps, performedAt,
	)
	if err != nil {
		return fmt.Errorf("saving set: %w", err)
	}
	return nil
}

// LastPerformance returns the most recent set for an exercise, or ok=false
// when none is recorded.
func (s *Store) LastPerformance(exercise string) (weightKg float64, reps int, ok bool, err error) {
	err = s.db.QueryRow(
		`SELECT weight_kg, reps FROM exercise_history
		 WHERE exercise = ? ORDER BY performed_at DESC LIMIT 1`,
		exercise,
	).Scan(&weightKg, &reps)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("querying last performance: %w", err)
	}
	return weightKg, reps, true, nil
}

// BestLookup returns a pr.LookupFunc backed by the local history, ranked by
// estimated one-rep max.
func (s *Store) BestLookup() pr.LookupFunc {
	return func(exercise string) (pr.Best, bool) {
		var best pr.Best
		err := s.db.QueryRow(
			`SELECT weight_kg, reps FROM exercise_history
			 WHERE exercise = ?
			 ORDER BY weight_kg * (1 + reps / 30.0) DESC, weight_kg DESC, reps DESC
			 LIMIT 1`,
			exercise,
		).Scan(&best.Weight, &best.Reps)
		if err != nil {
			return pr.Best{}, false
		}
		return best, true
	}
}

// QueueSession stores a finished session for later sync. Re-queuing the
// same session replaces the payload and resets its sync flag.
func (s *Store) QueueSession(detail storage.SessionDetail) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO pending_sessions (id, payload, synced) VALUES (?, ?, 0)`,
		detail.ID.String(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("queuing session: %w", err)
	}
	return nil
}

// PendingSessions returns sessions not yet synced, oldest first.
func (s *Store) PendingSessions() ([]storage.SessionDetail, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM pending_sessions WHERE synced = 0 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying pending sessions: %w", err)
	}
	defer rows.Close()

	var pending []storage.SessionDetail
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning pending session: %w", err)
		}
		var detail storage.SessionDetail
		if err := json.Unmarshal([]byte(payload), &detail); err != nil {
			return nil, fmt.Errorf("decoding pending session: %w", err)
		}
		pending = append(pending, detail)
	}
	return pending, rows.Err()
}

// MarkSynced flags a session as uploaded.
func (s *Store) MarkSynced(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE pending_sessions SET synced = 1 WHERE id = ?`, id.String())
	return err
}

// Close closes the local database.
func (s *Store) Close() error {
	return s.db.Close()
}
