package storage

import (
	"context"
	"fmt"

	"github.com/claude/repflow/internal/models"
)

// UpsertPersonalRecord stores a new best for an exercise, keeping the
// existing row when its estimated 1RM is higher. Returns true when the
// record was created or improved.
func (db *DB) UpsertPersonalRecord(ctx context.Context, row models.PersonalRecordRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO personal_records (user_id, exercise_name, weight_kg, reps, estimated_1rm, achieved_at, session_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (user_id, exercise_name) DO UPDATE
			SET weight_kg = EXCLUDED.weight_kg,
			    reps = EXCLUDED.reps,
			    estimated_1rm = EXCLUDED.estimated_1rm,
			    achieved_at = EXCLUDED.achieved_at,
			    session_id = EXCLUDED.session_id
			WHERE EXCLUDED.estimated_1rm > personal_records.estimated_1rm`,
		row.UserID, row.ExerciseName, row.WeightKg, row.Reps, row.Estimated1RM, row.AchievedAt, row.SessionID)
	if err != nil {
		return false, fmt.Errorf("upserting personal record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// QueryPersonalRecords returns all personal records for a user, strongest
// first.
func (db *DB) QueryPersonalRecords(ctx context.Context, userID int) ([]models.PersonalRecordRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, exercise_name, weight_kg, reps, estimated_1rm, achieved_at, session_id
		 FROM personal_records
		 WHERE user_id = $1
		 ORDER BY estimated_1rm DESC, exercise_name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var result []models.PersonalRecordRow
	for rows.Next() {
		var r models.PersonalRecordRow
		if err := rows.Scan(&r.UserID, &r.ExerciseName, &r.WeightKg, &r.Reps,
			&r.Estimated1RM, &r.AchievedAt, &r.SessionID); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
