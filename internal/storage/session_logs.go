package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repflow/internal/models"
	"github.com/google/uuid"
)

// InsertSessionLog stores a finalized session and its sets in one
// transaction.
func (db *DB) InsertSessionLog(ctx context.Context, log models.SessionLogRow, sets []models.SessionSetRow) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning session log tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO session_logs (id, user_id, focus, plan_name, elapsed_minutes, started_at, finished_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT DO NOTHING`,
		log.ID, log.UserID, log.Focus, log.PlanName, log.ElapsedMinutes, log.StartedAt, log.FinishedAt)
	if err != nil {
		return fmt.Errorf("inserting session log: %w", err)
	}

	if len(sets) > 0 {
		query := `INSERT INTO session_sets (session_id, user_id, exercise_name, set_number, round, weight_kg, reps, duration_sec) VALUES `
		args := make([]any, 0, len(sets)*8)
		valueStrings := make([]string, 0, len(sets))

		for i, s := range sets {
			base := i * 8
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
			))
			args = append(args, s.SessionID, s.UserID, s.ExerciseName, s.SetNumber,
				s.Round, s.WeightKg, s.Reps, s.DurationSec)
		}

		query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting session sets: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing session log: %w", err)
	}
	return nil
}

// QuerySessionLogs retrieves finished sessions in a date range, most recent
// first.
func (db *DB) QuerySessionLogs(ctx context.Context, userID int, start, end time.Time) ([]models.SessionLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, focus, plan_name, elapsed_minutes, started_at, finished_at
		 FROM session_logs
		 WHERE user_id = $1 AND finished_at >= $2 AND finished_at < $3
		 ORDER BY finished_at DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying session logs: %w", err)
	}
	defer rows.Close()

	var result []models.SessionLogRow
	for rows.Next() {
		var r models.SessionLogRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Focus, &r.PlanName, &r.ElapsedMinutes, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning session log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// SessionDetail is one finished session with its logged sets.
type SessionDetail struct {
	models.SessionLogRow
	Sets []models.SessionSetRow `json:"sets"`
}

// GetSessionLog retrieves one finished session and its sets.
func (db *DB) GetSessionLog(ctx context.Context, sessionID uuid.UUID, userID int) (*SessionDetail, error) {
	var detail SessionDetail
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, focus, plan_name, elapsed_minutes, started_at, finished_at
		 FROM session_logs
		 WHERE id = $1 AND user_id = $2`,
		sessionID, userID).Scan(&detail.ID, &detail.UserID, &detail.Focus, &detail.PlanName,
		&detail.ElapsedMinutes, &detail.StartedAt, &detail.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("querying session log: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, user_id, exercise_name, set_number, round, weight_kg, reps, duration_sec
		 FROM session_sets
		 WHERE session_id = $1 AND user_id = $2
		 ORDER BY set_number ASC`,
		sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.SessionSetRow
		if err := rows.Scan(&s.SessionID, &s.UserID, &s.ExerciseName, &s.SetNumber,
			&s.Round, &s.WeightKg, &s.Reps, &s.DurationSec); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		detail.Sets = append(detail.Sets, s)
	}
	return &detail, rows.Err()
}
