package local

import (
	"testing"
	"time"

	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/storage"
	"github.com/google/uuid"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSaveAndLastPerformance round-trips sets and returns the most recent.
func TestSaveAndLastPerformance(t *testing.T) {
	s := openTest(t)

	base := time.Date(2026, 2, 1, 17, 0, 0, 0, time.UTC)
	if err := s.SaveSet("Back Squat", 100, 5, base); err != nil {
		t.Fatalf("SaveSet: %v", err)
	}
	if err := s.SaveSet("Back Squat", 102.5, 5, base.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("SaveSet: %v", err)
	}

	w, r, ok, err := s.LastPerformance("Back Squat")
	if err != nil {
		t.Fatalf("LastPerformance: %v", err)
	}
	if !ok || w != 102.5 || r != 5 {
		t.Errorf("last = (%v, %d, %v), want (102.5, 5, true)", w, r, ok)
	}

	_, _, ok, err = s.LastPerformance("Bench Press")
	if err != nil {
		t.Fatalf("LastPerformance empty: %v", err)
	}
	if ok {
		t.Error("expected no history for Bench Press")
	}
}

// TestBestLookup ranks by estimated one-rep max, not raw weight.
func TestBestLookup(t *testing.T) {
	s := openTest(t)

	now := time.Now()
	// 100x1 -> 1RM 100; 90x8 -> 1RM 114
	if err := s.SaveSet("Deadlift", 100, 1, now); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveSet("Deadlift", 90, 8, now); err != nil {
		t.Fatal(err)
	}

	best, ok := s.BestLookup()("Deadlift")
	if !ok {
		t.Fatal("expected a best performance")
	}
	if best.Weight != 90 || best.Reps != 8 {
		t.Errorf("best = %+v, want 90x8", best)
	}

	if _, ok := s.BestLookup()("Unknown"); ok {
		t.Error("expected no best for unknown exercise")
	}
}

// TestQueueAndSync round-trips a pending session and clears it once synced.
func TestQueueAndSync(t *testing.T) {
	s := openTest(t)

	id := uuid.New()
	detail := storage.SessionDetail{
		SessionLogRow: models.SessionLogRow{ID: id, Focus: "legs", ElapsedMinutes: 45},
		Sets: []models.SessionSetRow{
			{SessionID: id, ExerciseName: "Back Squat", SetNumber: 1, Round: 1, WeightKg: 100, Reps: 5},
		},
	}
	if err := s.QueueSession(detail); err != nil {
		t.Fatalf("QueueSession: %v", err)
	}

	pending, err := s.PendingSessions()
	if err != nil {
		t.Fatalf("PendingSessions: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id || len(pending[0].Sets) != 1 {
		t.Fatalf("pending = %+v", pending)
	}

	if err := s.MarkSynced(id); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	pending, err = s.PendingSessions()
	if err != nil {
		t.Fatalf("PendingSessions after sync: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}

	// Re-queuing resets the sync flag
	if err := s.QueueSession(detail); err != nil {
		t.Fatalf("re-QueueSession: %v", err)
	}
	pending, _ = s.PendingSessions()
	if len(pending) != 1 {
		t.Errorf("pending after re-queue = %d, want 1", len(pending))
	}
}
