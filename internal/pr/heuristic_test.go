package pr

import (
	"testing"

	"github.com/claude/repflow/internal/session"
)

// TestShouldTrack verifies the name-based deny list.
func TestShouldTrack(t *testing.T) {
	h := New(nil)
	cases := []struct {
		name string
		want bool
	}{
		{"Bench Press", true},
		{"Back Squat", true},
		{"Warmup Circuit", false},
		{"Morning Run", false},
		{"Hamstring Stretch", false},
		{"Plank", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := h.ShouldTrack(tc.name); got != tc.want {
			t.Errorf("ShouldTrack(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// TestEpley1RM verifies the estimation formula and its single-rep identity.
func TestEpley1RM(t *testing.T) {
	if got := Epley1RM(100, 1); got != 100 {
		t.Errorf("Epley1RM(100, 1) = %v, want 100", got)
	}
	// 100 * (1 + 10/30) = 133.33...
	got := Epley1RM(100, 10)
	if got < 133.3 || got > 133.4 {
		t.Errorf("Epley1RM(100, 10) = %v, want ~133.33", got)
	}
	if got := Epley1RM(100, 0); got != 0 {
		t.Errorf("Epley1RM(100, 0) = %v, want 0", got)
	}
}

// TestDetectAgainstHistory verifies comparison against the stored best.
func TestDetectAgainstHistory(t *testing.T) {
	h := New(func(exercise string) (Best, bool) {
		if exercise == "Squat" {
			return Best{Weight: 100, Reps: 5}, true
		}
		return Best{}, false
	})

	// 105x5 beats 100x5.
	if !h.Detect("Squat", 105, 5, nil) {
		t.Error("heavier set not detected as PR")
	}
	// 90x5 loses to 100x5.
	if h.Detect("Squat", 90, 5, nil) {
		t.Error("lighter set detected as PR")
	}
	// Same 1RM-tier weight but more reps: 100x6 beats 100x5.
	if !h.Detect("Squat", 100, 6, nil) {
		t.Error("higher-rep set not detected as PR")
	}
	// No history: first real set is a PR.
	if !h.Detect("Deadlift", 140, 3, nil) {
		t.Error("first set without history not detected as PR")
	}
	// Degenerate inputs are never PRs.
	if h.Detect("Deadlift", 0, 5, nil) || h.Detect("Deadlift", 100, 0, nil) {
		t.Error("zero weight/reps detected as PR")
	}
}

// TestDetectAgainstSessionLogs verifies earlier in-session sets also gate
// detection, while an identical duplicate is left to the celebration set.
func TestDetectAgainstSessionLogs(t *testing.T) {
	h := New(nil)
	logs := []session.LoggedSet{
		session.StrengthSet(1, 110, 5),
		session.DurationSet(2, 60), // duration sets are ignored
	}

	if h.Detect("Squat", 100, 5, logs) {
		t.Error("set weaker than session best detected as PR")
	}
	if !h.Detect("Squat", 115, 5, logs) {
		t.Error("set beating session best not detected as PR")
	}
	// Identical tuple passes Detect; de-duplication happens downstream.
	logs = append(logs, session.StrengthSet(3, 115, 5))
	if !h.Detect("Squat", 115, 5, logs) {
		t.Error("identical tuple blocked at detection")
	}
}
