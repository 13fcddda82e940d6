package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TrackedExercise is an entry in the PR-tracking list: exercises whose
// personal records are worth detecting and celebrating.
type TrackedExercise struct {
	ExerciseName string `json:"exercise_name"`
	Category     string `json:"category"`
	Enabled      bool   `json:"enabled"`
}

// ExerciseTracking reports whether an exercise has an explicit tracking
// entry. known is false when the exercise is absent, in which case the
// caller falls back to the name-based heuristic.
func (db *DB) ExerciseTracking(ctx context.Context, exercise string) (enabled, known bool, err error) {
	err = db.Pool.QueryRow(ctx,
		`SELECT enabled FROM tracked_exercises WHERE exercise_name = $1`,
		exercise).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("checking tracked exercise: %w", err)
	}
	return enabled, true, nil
}

// GetTrackedExercises returns the full tracking list.
func (db *DB) GetTrackedExercises(ctx context.Context) ([]TrackedExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, category, enabled FROM tracked_exercises ORDER BY category, exercise_name`)
	if err != nil {
		return nil, fmt.Errorf("querying tracked exercises: %w", err)
	}
	defer rows.Close()

	var result []TrackedExercise
	for rows.Next() {
		var t TrackedExercise
		if err := rows.Scan(&t.ExerciseName, &t.Category, &t.Enabled); err != nil {
			return nil, fmt.Errorf("scanning tracked exercise: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// SetExerciseTracking creates or updates a tracking entry.
func (db *DB) SetExerciseTracking(ctx context.Context, exercise, category string, enabled bool) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO tracked_exercises (exercise_name, category, enabled)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (exercise_name) DO UPDATE
			SET category = COALESCE(NULLIF($2, ''), tracked_exercises.category),
			    enabled = $3`,
		exercise, category, enabled)
	if err != nil {
		return fmt.Errorf("setting exercise tracking: %w", err)
	}
	return nil
}
