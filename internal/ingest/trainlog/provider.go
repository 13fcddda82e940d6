package trainlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/repflow/internal/ingest"
	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/storage"
)

// Provider imports training-log CSV exports into exercise history.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new training-log import provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a CSV export and stores the working sets as exercise
// history. Warmup sets are dropped; duplicate rows are skipped on insert,
// so re-importing the same file is safe.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsSeen: len(sessions)}
	var rows []models.ExerciseHistoryRow

	for _, s := range sessions {
		for _, ex := range s.Exercises {
			for _, set := range ex.Sets {
				if set.Warmup {
					continue
				}
				rows = append(rows, models.ExerciseHistoryRow{
					UserID:       userID,
					ExerciseName: ex.Name,
					WeightKg:     set.WeightKg,
					Reps:         set.Reps,
					PerformedAt:  s.Date,
					Source:       "import",
				})
			}
		}
	}

	result.SetsReceived = len(rows)
	if len(rows) > 0 {
		inserted, err := p.db.BatchInsertExerciseHistory(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("inserting history: %w", err)
		}
		result.SetsInserted = inserted
		result.SetsSkipped = int64(len(rows)) - inserted
	}

	p.log.Info("training log imported",
		"user", userID,
		"sessions", result.SessionsSeen,
		"sets", result.SetsReceived,
		"inserted", result.SetsInserted,
	)
	return result, nil
}
