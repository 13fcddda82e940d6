package service

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/pr"
	"github.com/claude/repflow/internal/session"
)

// ErrCannotProceed is returned when a completion arrives with no current
// exercise: empty template or a session already past its last block.
var ErrCannotProceed = fmt.Errorf("cannot proceed: no current exercise")

// SetInput carries the user's numbers for one completed unit. For
// time-based exercises DurationSec of zero means the exercise's target
// duration is logged.
type SetInput struct {
	Weight      float64 `json:"weight"`
	Reps        int     `json:"reps"`
	DurationSec int     `json:"duration_sec"`
}

// ExerciseView describes the exercise under the cursor for clients.
type ExerciseView struct {
	Name              string `json:"name"`
	TimeBased         bool   `json:"time_based"`
	TargetSets        int    `json:"target_sets,omitempty"`
	TargetReps        int    `json:"target_reps,omitempty"`
	TargetDurationSec int    `json:"target_duration_sec,omitempty"`
	RestSeconds       int    `json:"rest_seconds,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// Celebration is a PR the last event triggered.
type Celebration struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
}

// State is a snapshot of a live session after an event.
type State struct {
	ID                 string               `json:"id"`
	Status             session.Status       `json:"status"`
	Position           session.Position     `json:"position"`
	Rest               *session.RestState   `json:"rest,omitempty"`
	Exercise           *ExerciseView        `json:"exercise,omitempty"`
	CompletedExercises int                  `json:"completed_exercises"`
	ElapsedSeconds     int                  `json:"elapsed_seconds"`
	Celebrations       []Celebration        `json:"celebrations,omitempty"`
	Summary            *session.Summary     `json:"summary,omitempty"`
}

// CompleteSet validates and logs one unit of work, advancing the session.
func (m *Manager) CompleteSet(s *Session, in SetInput) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, ok := s.engine.CurrentExercise()
	if !ok {
		return nil, ErrCannotProceed
	}

	var set session.LoggedSet
	if ex.IsTimeBased() {
		seconds := in.DurationSec
		if seconds == 0 {
			seconds = ex.TargetDurationSeconds()
		}
		if err := ValidateDuration(seconds); err != nil {
			return nil, err
		}
		set = session.DurationSet(0, seconds)
	} else {
		if err := ValidateWeight(in.Weight); err != nil {
			return nil, err
		}
		if err := ValidateReps(in.Reps); err != nil {
			return nil, err
		}
		set = session.StrengthSet(0, in.Weight, in.Reps)
	}

	intents, err := s.engine.Apply(session.CompleteSet{Set: set})
	if err != nil {
		return nil, err
	}
	celebrations := m.dispatch(s, intents)

	state := m.stateLocked(s)
	state.Celebrations = celebrations
	return state, nil
}

// SkipExercise abandons the current block.
func (m *Manager) SkipExercise(s *Session) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intents, err := s.engine.Apply(session.SkipExercise{})
	if err != nil {
		return nil, err
	}
	m.dispatch(s, intents)
	return m.stateLocked(s), nil
}

// Navigate jumps to a block/exercise, resetting the round to 1.
func (m *Manager) Navigate(s *Session, block, exercise int) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.engine.Apply(session.Navigate{Block: block, Exercise: exercise}); err != nil {
		return nil, err
	}
	return m.stateLocked(s), nil
}

// SkipRest clears an active rest interval.
func (m *Manager) SkipRest(s *Session) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.engine.Apply(session.SkipRest{}); err != nil {
		return nil, err
	}
	return m.stateLocked(s), nil
}

// State returns a snapshot without mutating anything.
func (m *Manager) State(s *Session) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.stateLocked(s)
}

// Finish finalizes the session now, whether or not the template was fully
// worked through. The summary is persisted exactly once.
func (m *Manager) Finish(s *Session) (*session.Summary, error) {
	s.mu.Lock()
	m.finalizeLocked(s)
	sum := s.summary
	s.mu.Unlock()

	m.teardown(s)
	return sum, nil
}

// Cancel aborts the session. No summary, no history.
func (m *Manager) Cancel(s *Session) {
	s.mu.Lock()
	s.engine.Apply(session.Cancel{})
	s.mu.Unlock()

	m.teardown(s)
	m.log.Info("session canceled", "session", s.ID, "user", s.UserID)
}

// LastPerformance pre-fills inputs from history. Read-only; a nil row
// means no history.
func (m *Manager) LastPerformance(ctx context.Context, userID int, exercise string) (*models.ExerciseHistoryRow, error) {
	return m.store.GetLastPerformance(ctx, userID, exercise)
}

// dispatch executes a transition's side-effect intents. Persistence runs
// in the background; failures are logged and never reach the caller.
// Called with s.mu held.
func (m *Manager) dispatch(s *Session, intents []session.Intent) []Celebration {
	var celebrations []Celebration
	for _, in := range intents {
		switch in := in.(type) {
		case session.SaveHistory:
			m.saveHistory(s, in)
		case session.CelebratePR:
			celebrations = append(celebrations, Celebration{Exercise: in.Exercise, Weight: in.Weight, Reps: in.Reps})
			m.saveRecord(s, in)
		case session.SessionFinished:
			m.finalizeLocked(s)
			// Completing the last block ends the session the same way an
			// explicit Finish does: deregister it and stop its runner.
			// teardown never takes s.mu, so it is safe to call here.
			m.teardown(s)
		}
	}
	return celebrations
}

func (m *Manager) saveHistory(s *Session, in session.SaveHistory) {
	row := models.ExerciseHistoryRow{
		UserID:       s.UserID,
		ExerciseName: in.Exercise,
		WeightKg:     in.Weight,
		Reps:         in.Reps,
		PerformedAt:  time.Now(),
		Source:       "session",
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := m.store.InsertExerciseHistory(ctx, row); err != nil {
			m.log.Warn("history save failed", "session", s.ID, "exercise", in.Exercise, "error", err)
		}
	}()
}

func (m *Manager) saveRecord(s *Session, in session.CelebratePR) {
	row := models.PersonalRecordRow{
		UserID:       s.UserID,
		ExerciseName: in.Exercise,
		WeightKg:     in.Weight,
		Reps:         in.Reps,
		Estimated1RM: pr.Epley1RM(in.Weight, in.Reps),
		AchievedAt:   time.Now(),
		SessionID:    s.ID,
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if _, err := m.store.UpsertPersonalRecord(ctx, row); err != nil {
			m.log.Warn("personal record save failed", "session", s.ID, "exercise", in.Exercise, "error", err)
		}
	}()
}

// finalizeLocked builds and persists the summary exactly once. Called with
// s.mu held.
func (m *Manager) finalizeLocked(s *Session) {
	if s.finalized {
		return
	}
	s.finalized = true

	now := time.Now()
	sum := session.Finalize(s.engine.Store(), s.StartedAt, now, s.Plan.Focus)
	s.summary = &sum

	log := models.SessionLogRow{
		ID:             s.ID,
		UserID:         s.UserID,
		Focus:          sum.Focus,
		PlanName:       s.Plan.Name,
		ElapsedMinutes: sum.ElapsedMinutes,
		StartedAt:      s.StartedAt,
		FinishedAt:     now,
	}

	var sets []models.SessionSetRow
	setNum := 0
	for _, ex := range sum.Exercises {
		for _, set := range ex.Sets {
			setNum++
			sets = append(sets, models.SessionSetRow{
				SessionID:    s.ID,
				UserID:       s.UserID,
				ExerciseName: ex.Name,
				SetNumber:    setNum,
				Round:        set.Round,
				WeightKg:     set.Weight,
				Reps:         set.Reps,
				DurationSec:  set.Seconds,
			})
		}
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := m.store.InsertSessionLog(ctx, log, sets); err != nil {
			m.log.Error("session log save failed", "session", s.ID, "error", err)
		}
	}()

	m.log.Info("session finished", "session", s.ID, "user", s.UserID,
		"exercises", len(sum.Exercises), "minutes", sum.ElapsedMinutes)
}

// stateLocked builds a snapshot. Called with s.mu held.
func (m *Manager) stateLocked(s *Session) *State {
	st := &State{
		ID:                 s.ID.String(),
		Status:             s.engine.Status(),
		Position:           s.engine.Position(),
		Rest:               s.engine.Rest(),
		CompletedExercises: s.engine.Store().CompletedExerciseCount(),
		ElapsedSeconds:     s.timer.ElapsedSeconds(),
		Summary:            s.summary,
	}
	if s.finalized {
		st.Status = session.StatusFinished
	}
	if ex, ok := s.engine.CurrentExercise(); ok {
		view := &ExerciseView{
			Name:        ex.Name,
			TimeBased:   ex.IsTimeBased(),
			RestSeconds: ex.RestSeconds,
			Notes:       ex.Notes,
		}
		if view.TimeBased {
			view.TargetDurationSec = ex.TargetDurationSeconds()
		} else {
			view.TargetSets = ex.SetsTarget()
			view.TargetReps = ex.TargetReps
		}
		st.Exercise = view
	}
	return st
}
