package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseHistoryRow is a row ready for insertion into the exercise_history
// table: one completed strength set.
type ExerciseHistoryRow struct {
	ID           int64     `json:"id,omitempty"`
	UserID       int       `json:"user_id"`
	ExerciseName string    `json:"exercise_name"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	PerformedAt  time.Time `json:"performed_at"`
	Source       string    `json:"source,omitempty"`
}

// SessionLogRow is the finalized record of one workout session.
type SessionLogRow struct {
	ID             uuid.UUID `json:"id"`
	UserID         int       `json:"user_id"`
	Focus          string    `json:"focus"`
	PlanName       string    `json:"plan_name"`
	ElapsedMinutes int       `json:"elapsed_minutes"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// SessionSetRow is one logged set within a finalized session.
type SessionSetRow struct {
	SessionID    uuid.UUID `json:"session_id"`
	UserID       int       `json:"user_id"`
	ExerciseName string    `json:"exercise_name"`
	SetNumber    int       `json:"set_number"`
	Round        int       `json:"round"`
	WeightKg     float64   `json:"weight_kg,omitempty"`
	Reps         int       `json:"reps,omitempty"`
	DurationSec  int       `json:"duration_sec,omitempty"`
}

// PersonalRecordRow is the best recorded performance for one exercise.
type PersonalRecordRow struct {
	UserID       int       `json:"user_id"`
	ExerciseName string    `json:"exercise_name"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	Estimated1RM float64   `json:"estimated_1rm"`
	AchievedAt   time.Time `json:"achieved_at"`
	SessionID    uuid.UUID `json:"session_id"`
}
