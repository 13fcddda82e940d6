package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repflow/internal/models"
	"github.com/jackc/pgx/v5"
)

// InsertExerciseHistory records one completed strength set.
func (db *DB) InsertExerciseHistory(ctx context.Context, row models.ExerciseHistoryRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_history (user_id, exercise_name, weight_kg, reps, performed_at, source)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		row.UserID, row.ExerciseName, row.WeightKg, row.Reps, row.PerformedAt, row.Source)
	if err != nil {
		return fmt.Errorf("inserting exercise history: %w", err)
	}
	return nil
}

// BatchInsertExerciseHistory batch-inserts history rows (CSV imports).
// Returns count inserted.
func (db *DB) BatchInsertExerciseHistory(ctx context.Context, rows []models.ExerciseHistoryRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercise_history (user_id, exercise_name, weight_kg, reps, performed_at, source) VALUES `
	args := make([]any, 0, len(rows)*6)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, r.UserID, r.ExerciseName, r.WeightKg, r.Reps, r.PerformedAt, r.Source)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting exercise history batch: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetLastPerformance returns the most recent logged set for an exercise,
// or nil when there is no history. Used to pre-fill session inputs.
func (db *DB) GetLastPerformance(ctx context.Context, userID int, exercise string) (*models.ExerciseHistoryRow, error) {
	var r models.ExerciseHistoryRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, exercise_name, weight_kg, reps, performed_at, source
		 FROM exercise_history
		 WHERE user_id = $1 AND exercise_name = $2
		 ORDER BY performed_at DESC, id DESC
		 LIMIT 1`,
		userID, exercise).Scan(&r.ID, &r.UserID, &r.ExerciseName, &r.WeightKg, &r.Reps, &r.PerformedAt, &r.Source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying last performance: %w", err)
	}
	return &r, nil
}

// GetBestPerformance returns the set with the highest estimated 1RM for an
// exercise, or nil when there is no history.
func (db *DB) GetBestPerformance(ctx context.Context, userID int, exercise string) (*models.ExerciseHistoryRow, error) {
	var r models.ExerciseHistoryRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, exercise_name, weight_kg, reps, performed_at, source
		 FROM exercise_history
		 WHERE user_id = $1 AND exercise_name = $2 AND reps > 0
		 ORDER BY weight_kg * (1 + reps / 30.0) DESC, weight_kg DESC, reps DESC
		 LIMIT 1`,
		userID, exercise).Scan(&r.ID, &r.UserID, &r.ExerciseName, &r.WeightKg, &r.Reps, &r.PerformedAt, &r.Source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying best performance: %w", err)
	}
	return &r, nil
}

// QueryExerciseHistory retrieves history rows for an exercise in a date
// range, most recent first.
func (db *DB) QueryExerciseHistory(ctx context.Context, userID int, exercise string, start, end time.Time, limit int) ([]models.ExerciseHistoryRow, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, exercise_name, weight_kg, reps, performed_at, source
		 FROM exercise_history
		 WHERE user_id = $1 AND exercise_name = $2 AND performed_at >= $3 AND performed_at < $4
		 ORDER BY performed_at DESC, id DESC
		 LIMIT $5`,
		userID, exercise, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseHistoryRow
	for rows.Next() {
		var r models.ExerciseHistoryRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.ExerciseName, &r.WeightKg, &r.Reps, &r.PerformedAt, &r.Source); err != nil {
			return nil, fmt.Errorf("scanning exercise history: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
