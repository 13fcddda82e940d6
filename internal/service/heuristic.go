package service

import (
	"context"
	"log/slog"

	"github.com/claude/repflow/internal/pr"
	"github.com/claude/repflow/internal/session"
)

// trackingHeuristic layers the per-exercise tracking table over the
// name-based PR heuristic: an explicit row wins, unknown exercises fall
// back to the keyword denylist. Lookup failures fall back too.
type trackingHeuristic struct {
	base  *pr.Heuristic
	store Store
	log   *slog.Logger
}

var _ session.Heuristic = (*trackingHeuristic)(nil)

func (t *trackingHeuristic) ShouldTrack(exercise string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	enabled, known, err := t.store.ExerciseTracking(ctx, exercise)
	if err != nil {
		t.log.Warn("exercise tracking lookup failed", "exercise", exercise, "error", err)
		return t.base.ShouldTrack(exercise)
	}
	if known {
		return enabled
	}
	return t.base.ShouldTrack(exercise)
}

func (t *trackingHeuristic) Detect(exercise string, weight float64, reps int, sessionSets []session.LoggedSet) bool {
	return t.base.Detect(exercise, weight, reps, sessionSets)
}
