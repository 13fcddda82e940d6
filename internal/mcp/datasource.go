package mcp

import (
	"context"
	"time"

	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryExerciseHistory(ctx context.Context, userID int, exercise string, start, end time.Time, limit int) ([]models.ExerciseHistoryRow, error)
	GetLastPerformance(ctx context.Context, userID int, exercise string) (*models.ExerciseHistoryRow, error)
	QueryPersonalRecords(ctx context.Context, userID int) ([]models.PersonalRecordRow, error)
	QuerySessionLogs(ctx context.Context, userID int, start, end time.Time) ([]models.SessionLogRow, error)
	GetSessionLog(ctx context.Context, sessionID uuid.UUID, userID int) (*storage.SessionDetail, error)
	GetTrainingVolume(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.VolumePeriod, error)
	GetTrackedExercises(ctx context.Context) ([]storage.TrackedExercise, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
