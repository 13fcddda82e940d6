package storage

import (
	"context"
	"fmt"
	"time"
)

// ExerciseVolumeSummary holds aggregated set data for one exercise within a
// period.
type ExerciseVolumeSummary struct {
	ExerciseName string  `json:"exercise_name"`
	Sets         int     `json:"sets"`
	TotalReps    int     `json:"total_reps"`
	TonnageKg    float64 `json:"tonnage_kg"`
	MaxWeightKg  float64 `json:"max_weight_kg"`
}

// VolumePeriod holds per-exercise volume plus session totals for one time
// period.
type VolumePeriod struct {
	Period    string                  `json:"period"`
	Sessions  int                     `json:"sessions"`
	Minutes   int                     `json:"minutes"`
	Exercises []ExerciseVolumeSummary `json:"exercises"`
}

// truncInterval maps a bucket name to a date_trunc field.
func truncInterval(bucket string) string {
	switch bucket {
	case "1 month":
		return "month"
	case "1 day":
		return "day"
	default:
		return "week"
	}
}

// GetTrainingVolume returns per-period training volume: session counts and
// duration, plus set/rep/tonnage totals per exercise.
func (db *DB) GetTrainingVolume(ctx context.Context, start, end time.Time, bucket string, userID int) ([]VolumePeriod, error) {
	trunc := truncInterval(bucket)

	sessionRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, finished_at)::date AS period,
		        COUNT(*)::int,
		        COALESCE(SUM(elapsed_minutes), 0)::int
		 FROM session_logs
		 WHERE finished_at >= $2 AND finished_at < $3 AND user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		trunc, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying session volume: %w", err)
	}
	defer sessionRows.Close()

	byPeriod := map[string]*VolumePeriod{}
	var order []string
	for sessionRows.Next() {
		var period time.Time
		var p VolumePeriod
		if err := sessionRows.Scan(&period, &p.Sessions, &p.Minutes); err != nil {
			return nil, fmt.Errorf("scanning session volume: %w", err)
		}
		p.Period = period.Format("2006-01-02")
		byPeriod[p.Period] = &p
		order = append(order, p.Period)
	}
	if err := sessionRows.Err(); err != nil {
		return nil, err
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, sl.finished_at)::date AS period,
		        ss.exercise_name,
		        COUNT(*)::int,
		        COALESCE(SUM(ss.reps), 0)::int,
		        COALESCE(SUM(ss.weight_kg * ss.reps), 0),
		        COALESCE(MAX(ss.weight_kg), 0)
		 FROM session_sets ss
		 JOIN session_logs sl ON sl.id = ss.session_id
		 WHERE sl.finished_at >= $2 AND sl.finished_at < $3 AND ss.user_id = $4
		 GROUP BY period, ss.exercise_name
		 ORDER BY period DESC, COUNT(*) DESC`,
		trunc, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying set volume: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var period time.Time
		var e ExerciseVolumeSummary
		if err := setRows.Scan(&period, &e.ExerciseName, &e.Sets, &e.TotalReps, &e.TonnageKg, &e.MaxWeightKg); err != nil {
			return nil, fmt.Errorf("scanning set volume: %w", err)
		}
		key := period.Format("2006-01-02")
		p, ok := byPeriod[key]
		if !ok {
			p = &VolumePeriod{Period: key}
			byPeriod[key] = p
			order = append(order, key)
		}
		p.Exercises = append(p.Exercises, e)
	}
	if err := setRows.Err(); err != nil {
		return nil, err
	}

	result := make([]VolumePeriod, 0, len(order))
	for _, key := range order {
		result = append(result, *byPeriod[key])
	}
	return result, nil
}
