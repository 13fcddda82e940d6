package plan

import "testing"

const validPlanYAML = `
name: "Push Day"
focus: "chest"
blocks:
  - kind: single
    exercises:
      - name: "Bench Press"
        target_sets: 4
        target_reps: 8
        rest_seconds: 120
  - kind: superset
    rounds: 3
    exercises:
      - name: "Incline DB Press"
        target_reps: 10
      - name: "Cable Fly"
        target_reps: 12
        rest_seconds: 60
  - kind: single
    exercises:
      - name: "Morning Run"
        metric: duration
`

// TestParseValid verifies a well-formed plan decodes with blocks, rounds,
// and rest periods intact.
func TestParseValid(t *testing.T) {
	tmpl, err := Parse([]byte(validPlanYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tmpl.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(tmpl.Blocks))
	}
	if tmpl.Blocks[0].Kind != BlockSingle {
		t.Errorf("block 0 kind = %q, want single", tmpl.Blocks[0].Kind)
	}
	if got := tmpl.Blocks[0].TotalRounds(); got != 4 {
		t.Errorf("block 0 rounds = %d, want 4", got)
	}
	if tmpl.Blocks[1].Kind != BlockSuperset {
		t.Errorf("block 1 kind = %q, want superset", tmpl.Blocks[1].Kind)
	}
	if got := tmpl.Blocks[1].TotalRounds(); got != 3 {
		t.Errorf("block 1 rounds = %d, want 3", got)
	}
	if tmpl.Blocks[1].Exercises[1].RestSeconds != 60 {
		t.Errorf("rest = %d, want 60", tmpl.Blocks[1].Exercises[1].RestSeconds)
	}
}

// TestParseRejectsEmpty verifies structural validation failures.
func TestParseRejectsEmpty(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no blocks", `name: "x"`},
		{"superset one exercise", "blocks:\n  - kind: superset\n    rounds: 3\n    exercises:\n      - name: \"A\""},
		{"superset no rounds", "blocks:\n  - kind: superset\n    exercises:\n      - name: \"A\"\n      - name: \"B\""},
		{"unknown kind", "blocks:\n  - kind: circuit\n    exercises:\n      - name: \"A\""},
		{"unnamed exercise", "blocks:\n  - kind: single\n    exercises:\n      - target_sets: 3"},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.yaml)); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}

// TestDefaultTargetSets verifies the 3-set default when target_sets is unset.
func TestDefaultTargetSets(t *testing.T) {
	b := Block{Kind: BlockSingle, Exercises: []Exercise{{Name: "Squat"}}}
	if got := b.TotalRounds(); got != 3 {
		t.Errorf("TotalRounds = %d, want 3", got)
	}
}

// TestIsTimeBased covers explicit metrics and keyword classification.
func TestIsTimeBased(t *testing.T) {
	cases := []struct {
		ex   Exercise
		want bool
	}{
		{Exercise{Name: "Bench Press"}, false},
		{Exercise{Name: "Bench Press", Metric: MetricDuration}, true},
		{Exercise{Name: "Morning Run"}, true},
		{Exercise{Name: "Plank"}, true},
		{Exercise{Name: "Farmer Carry"}, true},
		{Exercise{Name: "Running Lunge", Metric: MetricReps}, false},
		{Exercise{Name: "Rowing Machine"}, true},
	}
	for _, tc := range cases {
		if got := tc.ex.IsTimeBased(); got != tc.want {
			t.Errorf("IsTimeBased(%q) = %v, want %v", tc.ex.Name, got, tc.want)
		}
	}
}

// TestTargetDurationResolution verifies the resolution priority:
// target_duration_min, duration_min, target_duration_sec, keyword default.
func TestTargetDurationResolution(t *testing.T) {
	min20, min15, sec45 := 20, 15, 45

	cases := []struct {
		name string
		ex   Exercise
		want int
	}{
		{"target_duration_min wins", Exercise{Name: "Run", TargetDurationMin: &min20, DurationMin: &min15, TargetDurationSec: &sec45}, 1200},
		{"duration_min next", Exercise{Name: "Run", DurationMin: &min15, TargetDurationSec: &sec45}, 900},
		{"target_duration_sec next", Exercise{Name: "Plank", TargetDurationSec: &sec45}, 45},
		{"cardio keyword default", Exercise{Name: "Morning Run"}, 1800},
		{"non-cardio default", Exercise{Name: "Dead Hang"}, 30},
	}
	for _, tc := range cases {
		if got := tc.ex.TargetDurationSeconds(); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}
