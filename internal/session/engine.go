package session

import (
	"fmt"

	"github.com/claude/repflow/internal/plan"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
	StatusCanceled   Status = "canceled"
)

// Position is the cursor into the template: current block, exercise within
// the block, and 1-based round number. Owned exclusively by the engine.
type Position struct {
	Block    int `json:"block"`
	Exercise int `json:"exercise"`
	Round    int `json:"round"`
}

// RestState is present only while a rest interval is active.
type RestState struct {
	TotalSeconds     int `json:"total_seconds"`
	RemainingSeconds int `json:"remaining_seconds"`
}

// Event is a discrete input to the engine. All session mutations flow
// through Apply, one event at a time.
type Event interface{ isEvent() }

// CompleteSet logs the given set for the current exercise and advances the
// position. The set's round number is stamped by the engine.
type CompleteSet struct{ Set LoggedSet }

// SkipExercise abandons the current block and advances to the next one,
// regardless of round or rest state.
type SkipExercise struct{}

// Navigate jumps directly to a block/exercise. Round resets to 1 and any
// active rest is cleared; previously reached rounds are not restored.
type Navigate struct {
	Block    int
	Exercise int
}

// RestTick counts one second off an active rest interval.
type RestTick struct{}

// SkipRest clears an active rest interval early.
type SkipRest struct{}

// Cancel aborts the session. Nothing is summarized or saved.
type Cancel struct{}

func (CompleteSet) isEvent()  {}
func (SkipExercise) isEvent() {}
func (Navigate) isEvent()     {}
func (RestTick) isEvent()     {}
func (SkipRest) isEvent()     {}
func (Cancel) isEvent()       {}

// Intent is a side effect requested by a transition. The engine's
// correctness never depends on whether an intent is executed; a dispatcher
// runs them asynchronously.
type Intent interface{ isIntent() }

// SaveHistory asks the dispatcher to persist a completed strength set.
type SaveHistory struct {
	Exercise string
	Weight   float64
	Reps     int
}

// CelebratePR signals that the set just logged is a new personal record.
// Emitted at most once per (exercise, weight, reps) tuple per session.
type CelebratePR struct {
	Exercise string
	Weight   float64
	Reps     int
}

// SessionFinished signals the transition to the finished state. Emitted
// exactly once; the finish sink builds and persists the summary.
type SessionFinished struct{}

func (SaveHistory) isIntent()     {}
func (CelebratePR) isIntent()     {}
func (SessionFinished) isIntent() {}

// Heuristic decides whether an exercise participates in PR tracking and
// whether a candidate set beats the best prior performance. The comparison
// rule (estimated 1RM, history source) belongs to the implementation.
type Heuristic interface {
	ShouldTrack(exercise string) bool
	Detect(exercise string, weight float64, reps int, sessionLogs []LoggedSet) bool
}

type prKey struct {
	exercise string
	weight   float64
	reps     int
}

// Engine is the session progression state machine. It owns the position,
// the rest state, the record store, and the celebrated-PR set; callers
// mutate it only through Apply. Not safe for concurrent use — the caller
// serializes events.
type Engine struct {
	tmpl       *plan.Template
	pos        Position
	status     Status
	rest       *RestState
	store      *RecordStore
	heuristic  Heuristic
	celebrated map[prKey]struct{}
}

// NewEngine starts a session over the given template. The template is never
// mutated. heuristic may be nil to disable PR detection.
func NewEngine(tmpl *plan.Template, heuristic Heuristic) *Engine {
	return &Engine{
		tmpl:       tmpl,
		pos:        Position{Round: 1},
		status:     StatusInProgress,
		store:      NewRecordStore(),
		heuristic:  heuristic,
		celebrated: make(map[prKey]struct{}),
	}
}

// Status returns the lifecycle state.
func (e *Engine) Status() Status { return e.status }

// Position returns the current cursor.
func (e *Engine) Position() Position { return e.pos }

// Rest returns a copy of the active rest interval, or nil.
func (e *Engine) Rest() *RestState {
	if e.rest == nil {
		return nil
	}
	r := *e.rest
	return &r
}

// Store returns the session's record store.
func (e *Engine) Store() *RecordStore { return e.store }

// Template returns the immutable template the session runs over.
func (e *Engine) Template() *plan.Template { return e.tmpl }

// CurrentExercise resolves the exercise under the cursor. ok is false when
// the template is empty or the session has moved past the last block.
func (e *Engine) CurrentExercise() (plan.Exercise, bool) {
	if e.status != StatusInProgress {
		return plan.Exercise{}, false
	}
	if e.pos.Block >= len(e.tmpl.Blocks) {
		return plan.Exercise{}, false
	}
	b := e.tmpl.Blocks[e.pos.Block]
	if e.pos.Exercise >= len(b.Exercises) {
		return plan.Exercise{}, false
	}
	return b.Exercises[e.pos.Exercise], true
}

// Apply processes one event and returns the side-effect intents it
// produced. Events arriving after the session finished (or on an empty
// template) are no-ops, not errors.
func (e *Engine) Apply(ev Event) ([]Intent, error) {
	switch ev := ev.(type) {
	case CompleteSet:
		return e.completeSet(ev.Set), nil
	case SkipExercise:
		return e.skipExercise(), nil
	case Navigate:
		return nil, e.navigate(ev)
	case RestTick:
		e.restTick()
		return nil, nil
	case SkipRest:
		e.rest = nil
		return nil, nil
	case Cancel:
		e.cancel()
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown event %T", ev)
	}
}

func (e *Engine) completeSet(set LoggedSet) []Intent {
	ex, ok := e.CurrentExercise()
	if !ok {
		return nil
	}

	set.Round = e.pos.Round
	e.store.Append(ex.Name, set)

	var intents []Intent
	if !set.Duration {
		intents = append(intents, SaveHistory{Exercise: ex.Name, Weight: set.Weight, Reps: set.Reps})
		if pr := e.evaluatePR(ex.Name, set.Weight, set.Reps); pr != nil {
			intents = append(intents, *pr)
		}
	}

	block := e.tmpl.Blocks[e.pos.Block]
	totalRounds := block.TotalRounds()

	if block.Kind == plan.BlockSuperset {
		if e.pos.Exercise == len(block.Exercises)-1 {
			// Round complete for every exercise in the block.
			if e.pos.Round >= totalRounds {
				intents = append(intents, e.advanceBlock()...)
			} else {
				if ex.RestSeconds > 0 {
					e.rest = &RestState{TotalSeconds: ex.RestSeconds, RemainingSeconds: ex.RestSeconds}
				}
				e.pos.Exercise = 0
				e.pos.Round++
			}
		} else {
			// Next exercise within the same round: no rest, no round change.
			e.pos.Exercise++
		}
		return intents
	}

	if e.pos.Round >= totalRounds {
		intents = append(intents, e.advanceBlock()...)
	} else {
		if ex.RestSeconds > 0 {
			e.rest = &RestState{TotalSeconds: ex.RestSeconds, RemainingSeconds: ex.RestSeconds}
		}
		e.pos.Round++
	}
	return intents
}

// evaluatePR runs the heuristic and suppresses repeat celebrations for the
// same (exercise, weight, reps) tuple within the session.
func (e *Engine) evaluatePR(exercise string, weight float64, reps int) *CelebratePR {
	if e.heuristic == nil || !e.heuristic.ShouldTrack(exercise) {
		return nil
	}
	if !e.heuristic.Detect(exercise, weight, reps, e.store.Sets(exercise)) {
		return nil
	}
	key := prKey{exercise: exercise, weight: weight, reps: reps}
	if _, seen := e.celebrated[key]; seen {
		return nil
	}
	e.celebrated[key] = struct{}{}
	return &CelebratePR{Exercise: exercise, Weight: weight, Reps: reps}
}

func (e *Engine) skipExercise() []Intent {
	if e.status != StatusInProgress {
		return nil
	}
	e.rest = nil
	return e.advanceBlock()
}

// advanceBlock moves to the next block, resetting the cursor. Past the last
// block the session transitions to finished.
func (e *Engine) advanceBlock() []Intent {
	e.pos.Block++
	if e.pos.Block < len(e.tmpl.Blocks) {
		e.pos.Exercise = 0
		e.pos.Round = 1
		return nil
	}
	e.status = StatusFinished
	e.rest = nil
	return []Intent{SessionFinished{}}
}

func (e *Engine) navigate(ev Navigate) error {
	if e.status != StatusInProgress {
		return nil
	}
	if ev.Block < 0 || ev.Block >= len(e.tmpl.Blocks) {
		return fmt.Errorf("navigate: block %d out of range", ev.Block)
	}
	if ev.Exercise < 0 || ev.Exercise >= len(e.tmpl.Blocks[ev.Block].Exercises) {
		return fmt.Errorf("navigate: exercise %d out of range in block %d", ev.Exercise, ev.Block)
	}
	e.pos = Position{Block: ev.Block, Exercise: ev.Exercise, Round: 1}
	e.rest = nil
	return nil
}

func (e *Engine) restTick() {
	if e.rest == nil {
		return
	}
	e.rest.RemainingSeconds--
	if e.rest.RemainingSeconds <= 0 {
		e.rest = nil
	}
}

func (e *Engine) cancel() {
	if e.status != StatusInProgress {
		return
	}
	e.status = StatusCanceled
	e.rest = nil
}
