package session

import "testing"

// TestAppendAndSnapshot verifies insertion order, list creation, and that
// snapshots are detached copies.
func TestAppendAndSnapshot(t *testing.T) {
	s := NewRecordStore()
	s.Append("Squat", StrengthSet(1, 100, 5))
	s.Append("Bench Press", StrengthSet(1, 80, 8))
	s.Append("Squat", StrengthSet(2, 100, 5))

	if got := s.CompletedExerciseCount(); got != 2 {
		t.Errorf("CompletedExerciseCount = %d, want 2", got)
	}
	order := s.Exercises()
	if len(order) != 2 || order[0] != "Squat" || order[1] != "Bench Press" {
		t.Errorf("Exercises = %v, want [Squat, Bench Press]", order)
	}
	if got := len(s.Sets("Squat")); got != 2 {
		t.Errorf("Squat sets = %d, want 2", got)
	}

	snap := s.Snapshot()
	snap["Squat"][0].Weight = 999
	if s.Sets("Squat")[0].Weight != 100 {
		t.Error("snapshot mutation leaked into store")
	}
}

// TestAppendNeverRejects verifies the store accepts any set — validation is
// an upstream concern.
func TestAppendNeverRejects(t *testing.T) {
	s := NewRecordStore()
	s.Append("Odd", LoggedSet{})
	s.Append("Odd", DurationSet(1, 0))
	if got := len(s.Sets("Odd")); got != 2 {
		t.Errorf("sets = %d, want 2", got)
	}
}
