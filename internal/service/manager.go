// Package service runs active workout sessions: it owns the in-memory
// session registry, serializes events into each session's progression
// engine, and dispatches side-effect intents (history saves, PR upserts)
// without letting their outcome touch the state machine.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/plan"
	"github.com/claude/repflow/internal/pr"
	"github.com/claude/repflow/internal/session"
	"github.com/google/uuid"
)

// Store is the persistence surface the session service depends on.
// *storage.DB satisfies it; tests use an in-memory fake.
type Store interface {
	InsertExerciseHistory(ctx context.Context, row models.ExerciseHistoryRow) error
	GetLastPerformance(ctx context.Context, userID int, exercise string) (*models.ExerciseHistoryRow, error)
	GetBestPerformance(ctx context.Context, userID int, exercise string) (*models.ExerciseHistoryRow, error)
	InsertSessionLog(ctx context.Context, log models.SessionLogRow, sets []models.SessionSetRow) error
	UpsertPersonalRecord(ctx context.Context, row models.PersonalRecordRow) (bool, error)
	ExerciseTracking(ctx context.Context, exercise string) (enabled, known bool, err error)
}

// ErrSessionNotFound is returned for unknown or already-ended session IDs.
var ErrSessionNotFound = fmt.Errorf("session not found")

// sideEffectTimeout bounds fire-and-forget persistence calls so a slow
// database cannot pile up goroutines.
const sideEffectTimeout = 10 * time.Second

// Manager owns all in-progress sessions for the process.
type Manager struct {
	store Store
	log   *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	// wg tracks fire-and-forget side effects for clean shutdown.
	wg sync.WaitGroup
}

// NewManager creates an empty session registry.
func NewManager(store Store, log *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		log:      log,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Session is one live workout run. All engine mutations are serialized
// under mu; the runner goroutine feeds rest ticks through the same path.
type Session struct {
	ID        uuid.UUID
	UserID    int
	Plan      *plan.Template
	StartedAt time.Time

	mu     sync.Mutex
	engine *session.Engine
	timer  *session.Timer
	done   chan struct{}
	stop   sync.Once

	finalized bool
	summary   *session.Summary
}

// Start opens a new session over the template and begins its runner.
func (m *Manager) Start(ctx context.Context, userID int, tmpl *plan.Template) (*Session, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	heuristic := &trackingHeuristic{
		base:  pr.New(m.bestLookup(userID)),
		store: m.store,
		log:   m.log,
	}
	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Plan:      tmpl,
		StartedAt: time.Now(),
		engine:    session.NewEngine(tmpl, heuristic),
		timer:     session.NewTimer(),
		done:      make(chan struct{}),
	}
	s.timer.Start()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	go m.runSession(s)

	m.log.Info("session started", "session", s.ID, "user", userID, "plan", tmpl.Name, "blocks", len(tmpl.Blocks))
	return s, nil
}

// bestLookup builds the PR heuristic's history source. Lookup failures are
// logged and reported as "no history" — PR detection degrades, the session
// continues.
func (m *Manager) bestLookup(userID int) pr.LookupFunc {
	return func(exercise string) (pr.Best, bool) {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		row, err := m.store.GetBestPerformance(ctx, userID, exercise)
		if err != nil {
			m.log.Warn("best performance lookup failed", "exercise", exercise, "error", err)
			return pr.Best{}, false
		}
		if row == nil {
			return pr.Best{}, false
		}
		return pr.Best{Weight: row.WeightKg, Reps: row.Reps}, true
	}
}

// runSession is the per-session runner: one tick per second drives any
// active rest countdown. It exits when the session ends, releasing the
// periodic schedule.
func (m *Manager) runSession(s *Session) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.engine.Rest() != nil {
				s.engine.Apply(session.RestTick{})
			}
			s.mu.Unlock()
		}
	}
}

// Get returns a live session by ID.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// teardown stops the runner and timer and removes the session from the
// registry. Safe to call more than once.
func (m *Manager) teardown(s *Session) {
	s.stop.Do(func() { close(s.done) })
	s.timer.Stop()
	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()
}

// Shutdown cancels every live session's runner and waits for in-flight
// side effects.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	for _, s := range live {
		m.teardown(s)
	}
	m.wg.Wait()
}
