package session

import (
	"testing"
	"time"
)

// TestFinalize verifies elapsed-minute rounding and that the exercise list
// matches the distinct exercises with logged sets, in insertion order.
func TestFinalize(t *testing.T) {
	s := NewRecordStore()
	s.Append("Squat", StrengthSet(1, 100, 5))
	s.Append("Squat", StrengthSet(2, 100, 5))
	s.Append("Plank", DurationSet(1, 60))

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(44*time.Minute + 40*time.Second) // rounds up to 45

	sum := Finalize(s, start, now, "legs")
	if sum.Focus != "legs" {
		t.Errorf("focus = %q, want legs", sum.Focus)
	}
	if sum.ElapsedMinutes != 45 {
		t.Errorf("elapsed = %d, want 45", sum.ElapsedMinutes)
	}
	if len(sum.Exercises) != s.CompletedExerciseCount() {
		t.Fatalf("exercises = %d, want %d", len(sum.Exercises), s.CompletedExerciseCount())
	}
	if sum.Exercises[0].Name != "Squat" || len(sum.Exercises[0].Sets) != 2 {
		t.Errorf("first exercise = %+v, want Squat with 2 sets", sum.Exercises[0])
	}
	if sum.Exercises[1].Name != "Plank" || len(sum.Exercises[1].Sets) != 1 {
		t.Errorf("second exercise = %+v, want Plank with 1 set", sum.Exercises[1])
	}
}

// TestFinalizeRoundsDown verifies sub-half-minute durations round down.
func TestFinalizeRoundsDown(t *testing.T) {
	s := NewRecordStore()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(10*time.Minute + 20*time.Second)

	sum := Finalize(s, start, now, "")
	if sum.ElapsedMinutes != 10 {
		t.Errorf("elapsed = %d, want 10", sum.ElapsedMinutes)
	}
	if len(sum.Exercises) != 0 {
		t.Errorf("exercises = %d, want 0 for empty store", len(sum.Exercises))
	}
}
