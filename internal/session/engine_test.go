package session

import (
	"testing"

	"github.com/claude/repflow/internal/plan"
)

func singleBlock(name string, sets, rest int) plan.Block {
	return plan.Block{
		Kind:      plan.BlockSingle,
		Exercises: []plan.Exercise{{Name: name, TargetSets: sets, RestSeconds: rest}},
	}
}

func supersetBlock(rounds, rest int, names ...string) plan.Block {
	exercises := make([]plan.Exercise, len(names))
	for i, n := range names {
		exercises[i] = plan.Exercise{Name: n}
	}
	// Rest is declared on the last exercise: the one whose completion closes
	// a superset round.
	exercises[len(exercises)-1].RestSeconds = rest
	return plan.Block{Kind: plan.BlockSuperset, Rounds: rounds, Exercises: exercises}
}

func mustApply(t *testing.T, e *Engine, ev Event) []Intent {
	t.Helper()
	intents, err := e.Apply(ev)
	if err != nil {
		t.Fatalf("Apply(%T): %v", ev, err)
	}
	return intents
}

// allowAllHeuristic flags every tracked set as a PR.
type allowAllHeuristic struct{}

func (allowAllHeuristic) ShouldTrack(string) bool { return true }
func (allowAllHeuristic) Detect(string, float64, int, []LoggedSet) bool {
	return true
}

// TestSingleBlockProgression verifies that a single-exercise block with R
// target sets advances the block exactly once after R completions, with the
// round number strictly increasing from 1 to R.
func TestSingleBlockProgression(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{
		singleBlock("Squat", 3, 0),
		singleBlock("Lunge", 2, 0),
	}}
	e := NewEngine(tmpl, nil)

	for want := 1; want <= 3; want++ {
		if got := e.Position().Round; got != want {
			t.Errorf("round before completion %d = %d, want %d", want, got, want)
		}
		mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	}

	pos := e.Position()
	if pos.Block != 1 || pos.Exercise != 0 || pos.Round != 1 {
		t.Errorf("after 3 completions position = %+v, want block 1 exercise 0 round 1", pos)
	}
	if e.Status() != StatusInProgress {
		t.Errorf("status = %q, want in_progress", e.Status())
	}
}

// TestSingleBlockToFinished runs the spec scenario: one Squat block of 3
// sets; three completions reach the finished state and the store holds
// three strength sets.
func TestSingleBlockToFinished(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{singleBlock("Squat", 3, 0)}}
	e := NewEngine(tmpl, nil)

	var finished bool
	for i := 0; i < 3; i++ {
		for _, in := range mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)}) {
			if _, ok := in.(SessionFinished); ok {
				finished = true
			}
		}
	}

	if !finished {
		t.Error("SessionFinished intent never emitted")
	}
	if e.Status() != StatusFinished {
		t.Errorf("status = %q, want finished", e.Status())
	}
	sets := e.Store().Sets("Squat")
	if len(sets) != 3 {
		t.Fatalf("logged sets = %d, want 3", len(sets))
	}
	for i, s := range sets {
		if s.Round != i+1 {
			t.Errorf("set %d round = %d, want %d", i, s.Round, i+1)
		}
		if s.Weight != 100 || s.Reps != 5 {
			t.Errorf("set %d = %+v, want weight 100 reps 5", i, s)
		}
	}
}

// TestSupersetCycling verifies that a superset with E exercises and R
// rounds needs exactly E*R completions, with the exercise index cycling
// 0..E-1 each round and the round sequence 1,1,2,2.
func TestSupersetCycling(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{supersetBlock(2, 0, "A", "B")}}
	e := NewEngine(tmpl, nil)

	wantRounds := []int{1, 1, 2, 2}
	wantExercises := []int{0, 1, 0, 1}
	var finished bool

	for i := 0; i < 4; i++ {
		pos := e.Position()
		if pos.Round != wantRounds[i] {
			t.Errorf("completion %d: round = %d, want %d", i, pos.Round, wantRounds[i])
		}
		if pos.Exercise != wantExercises[i] {
			t.Errorf("completion %d: exercise = %d, want %d", i, pos.Exercise, wantExercises[i])
		}
		for _, in := range mustApply(t, e, CompleteSet{Set: StrengthSet(0, 50, 10)}) {
			if _, ok := in.(SessionFinished); ok {
				finished = true
			}
		}
		if i < 3 && finished {
			t.Fatalf("finished after %d completions, want 4", i+1)
		}
	}

	if !finished {
		t.Error("not finished after E*R completions")
	}
}

// TestRestOnlyOnRoundBoundary verifies rest opens iff the completed
// exercise declares rest seconds and a round boundary was crossed — never
// on an intra-round superset transition.
func TestRestOnlyOnRoundBoundary(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{supersetBlock(3, 90, "A", "B")}}
	e := NewEngine(tmpl, nil)

	// A -> B within round 1: no rest.
	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 50, 10)})
	if e.Rest() != nil {
		t.Error("rest opened on intra-round transition")
	}

	// B completes round 1 of 3: rest opens with B's declared duration.
	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 50, 10)})
	rest := e.Rest()
	if rest == nil {
		t.Fatal("rest not opened on round boundary")
	}
	if rest.TotalSeconds != 90 || rest.RemainingSeconds != 90 {
		t.Errorf("rest = %+v, want 90/90", rest)
	}
	if pos := e.Position(); pos.Exercise != 0 || pos.Round != 2 {
		t.Errorf("position = %+v, want exercise 0 round 2", pos)
	}
}

// TestNoRestWithoutDeclaration verifies no rest opens when rest_seconds is
// zero, and none opens on the final round's block advance.
func TestNoRestWithoutDeclaration(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{
		singleBlock("Squat", 2, 0),
		singleBlock("Bench Press", 2, 60),
	}}
	e := NewEngine(tmpl, nil)

	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	if e.Rest() != nil {
		t.Error("rest opened for exercise without rest_seconds")
	}
	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	if e.Rest() != nil {
		t.Error("rest opened on block advance")
	}

	// Bench round 1 of 2: rest opens.
	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 80, 8)})
	if e.Rest() == nil {
		t.Error("rest not opened between rounds")
	}
	// Final round: block advance, no rest even though declared.
	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 80, 8)})
	if e.Rest() != nil {
		t.Error("rest opened after final round")
	}
}

// TestRestTickAndSkip verifies the countdown clears at zero and that an
// explicit skip clears it immediately without re-triggering.
func TestRestTickAndSkip(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{singleBlock("Squat", 3, 2)}}
	e := NewEngine(tmpl, nil)

	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	mustApply(t, e, RestTick{})
	if rest := e.Rest(); rest == nil || rest.RemainingSeconds != 1 {
		t.Fatalf("rest after one tick = %+v, want remaining 1", rest)
	}
	mustApply(t, e, RestTick{})
	if e.Rest() != nil {
		t.Error("rest not cleared at zero")
	}
	// Further ticks are no-ops.
	mustApply(t, e, RestTick{})
	if e.Rest() != nil {
		t.Error("rest re-triggered by tick")
	}

	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	if e.Rest() == nil {
		t.Fatal("rest not opened")
	}
	mustApply(t, e, SkipRest{})
	if e.Rest() != nil {
		t.Error("rest not cleared by skip")
	}
}

// TestSkipExerciseAdvancesBlock verifies skip moves the block index by
// exactly one regardless of round or rest state, clearing any active rest.
func TestSkipExerciseAdvancesBlock(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{
		singleBlock("Squat", 3, 60),
		supersetBlock(2, 0, "A", "B"),
		singleBlock("Lunge", 2, 0),
	}}
	e := NewEngine(tmpl, nil)

	// Open a rest mid-block, then skip.
	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	if e.Rest() == nil {
		t.Fatal("rest not opened")
	}
	mustApply(t, e, SkipExercise{})
	if e.Rest() != nil {
		t.Error("skip did not clear rest")
	}
	if pos := e.Position(); pos.Block != 1 || pos.Exercise != 0 || pos.Round != 1 {
		t.Errorf("position after skip = %+v, want block 1 exercise 0 round 1", pos)
	}

	// Skip mid-superset-round: block-level, abandons the partial round.
	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 50, 10)})
	mustApply(t, e, SkipExercise{})
	if pos := e.Position(); pos.Block != 2 {
		t.Errorf("block after mid-round skip = %d, want 2", pos.Block)
	}

	// Skipping the last block finishes the session.
	intents := mustApply(t, e, SkipExercise{})
	if e.Status() != StatusFinished {
		t.Errorf("status = %q, want finished", e.Status())
	}
	if len(intents) != 1 {
		t.Fatalf("intents = %d, want 1 SessionFinished", len(intents))
	}
	if _, ok := intents[0].(SessionFinished); !ok {
		t.Errorf("intent = %T, want SessionFinished", intents[0])
	}
}

// TestNavigateResetsRoundAndRest verifies direct jumps reset the round to 1
// unconditionally and clear any active rest.
func TestNavigateResetsRoundAndRest(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{
		singleBlock("Squat", 3, 60),
		supersetBlock(2, 0, "A", "B"),
	}}
	e := NewEngine(tmpl, nil)

	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	if e.Position().Round != 3 {
		t.Fatalf("round = %d, want 3", e.Position().Round)
	}
	if e.Rest() == nil {
		t.Fatal("rest not active")
	}

	mustApply(t, e, Navigate{Block: 1, Exercise: 1})
	pos := e.Position()
	if pos.Block != 1 || pos.Exercise != 1 || pos.Round != 1 {
		t.Errorf("position = %+v, want block 1 exercise 1 round 1", pos)
	}
	if e.Rest() != nil {
		t.Error("navigate did not clear rest")
	}

	// Jumping back does not restore the previously reached round.
	mustApply(t, e, Navigate{Block: 0, Exercise: 0})
	if e.Position().Round != 1 {
		t.Errorf("round after jump back = %d, want 1", e.Position().Round)
	}

	if _, err := e.Apply(Navigate{Block: 5, Exercise: 0}); err == nil {
		t.Error("expected error for out-of-range block")
	}
	if _, err := e.Apply(Navigate{Block: 1, Exercise: 9}); err == nil {
		t.Error("expected error for out-of-range exercise")
	}
}

// TestFinishedGuard verifies events after the finished transition are
// no-ops: nothing is appended, no intents are produced.
func TestFinishedGuard(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{singleBlock("Squat", 1, 0)}}
	e := NewEngine(tmpl, nil)

	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	if e.Status() != StatusFinished {
		t.Fatalf("status = %q, want finished", e.Status())
	}

	intents := mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	if len(intents) != 0 {
		t.Errorf("intents after finish = %d, want 0", len(intents))
	}
	if got := len(e.Store().Sets("Squat")); got != 1 {
		t.Errorf("sets = %d, want 1", got)
	}
	if intents := mustApply(t, e, SkipExercise{}); len(intents) != 0 {
		t.Errorf("skip after finish produced %d intents", len(intents))
	}
	if pos := e.Position(); pos.Block != 1 {
		t.Errorf("block = %d, want 1 (unchanged)", pos.Block)
	}
}

// TestCancel verifies cancel ends the session without a finished intent.
func TestCancel(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{singleBlock("Squat", 3, 60)}}
	e := NewEngine(tmpl, nil)

	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	mustApply(t, e, Cancel{})
	if e.Status() != StatusCanceled {
		t.Errorf("status = %q, want canceled", e.Status())
	}
	if e.Rest() != nil {
		t.Error("cancel did not clear rest")
	}
	if intents := mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)}); len(intents) != 0 {
		t.Error("events accepted after cancel")
	}
}

// TestSaveHistoryIntent verifies strength completions emit a SaveHistory
// intent while duration completions do not.
func TestSaveHistoryIntent(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{
		singleBlock("Bench Press", 2, 0),
		{Kind: plan.BlockSingle, Exercises: []plan.Exercise{{Name: "Plank", Metric: plan.MetricDuration, TargetSets: 1}}},
	}}
	e := NewEngine(tmpl, nil)

	intents := mustApply(t, e, CompleteSet{Set: StrengthSet(0, 80, 8)})
	if len(intents) != 1 {
		t.Fatalf("intents = %d, want 1", len(intents))
	}
	save, ok := intents[0].(SaveHistory)
	if !ok {
		t.Fatalf("intent = %T, want SaveHistory", intents[0])
	}
	if save.Exercise != "Bench Press" || save.Weight != 80 || save.Reps != 8 {
		t.Errorf("SaveHistory = %+v", save)
	}

	mustApply(t, e, CompleteSet{Set: StrengthSet(0, 80, 8)})
	for _, in := range mustApply(t, e, CompleteSet{Set: DurationSet(0, 60)}) {
		if _, ok := in.(SaveHistory); ok {
			t.Error("duration set emitted SaveHistory")
		}
	}
}

// TestPRCelebrationDeduplication verifies at most one celebration per
// (exercise, weight, reps) tuple per session, even when the heuristic keeps
// flagging identical sets as PRs.
func TestPRCelebrationDeduplication(t *testing.T) {
	tmpl := &plan.Template{Blocks: []plan.Block{singleBlock("Squat", 4, 0)}}
	e := NewEngine(tmpl, allowAllHeuristic{})

	countPRs := func(intents []Intent) int {
		n := 0
		for _, in := range intents {
			if _, ok := in.(CelebratePR); ok {
				n++
			}
		}
		return n
	}

	if n := countPRs(mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})); n != 1 {
		t.Errorf("first set celebrations = %d, want 1", n)
	}
	// Identical set: suppressed.
	if n := countPRs(mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})); n != 0 {
		t.Errorf("duplicate set celebrations = %d, want 0", n)
	}
	// Different tuple: celebrated again.
	if n := countPRs(mustApply(t, e, CompleteSet{Set: StrengthSet(0, 105, 5)})); n != 1 {
		t.Errorf("new tuple celebrations = %d, want 1", n)
	}
}

// TestEmptyTemplateNoOp verifies the defensive guard for a template with no
// blocks: completions change nothing and return no intents.
func TestEmptyTemplateNoOp(t *testing.T) {
	e := NewEngine(&plan.Template{}, nil)
	intents := mustApply(t, e, CompleteSet{Set: StrengthSet(0, 100, 5)})
	if len(intents) != 0 {
		t.Errorf("intents = %d, want 0", len(intents))
	}
	if e.Store().CompletedExerciseCount() != 0 {
		t.Error("store mutated on empty template")
	}
	if pos := e.Position(); pos != (Position{Round: 1}) {
		t.Errorf("position = %+v, want zero cursor", pos)
	}
}
