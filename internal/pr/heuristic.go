// Package pr implements the personal-record heuristic: which exercises are
// worth tracking, and whether a candidate set beats the best recorded
// performance. Comparison uses the Epley estimated one-rep-max with a
// weight-then-reps tie-break.
package pr

import (
	"strings"

	"github.com/claude/repflow/internal/session"
)

// Best is the strongest recorded performance for an exercise.
type Best struct {
	Weight float64
	Reps   int
}

// LookupFunc resolves the best historical performance for an exercise.
// ok is false when there is no recorded history.
type LookupFunc func(exercise string) (Best, bool)

// Heuristic implements session.Heuristic against a history lookup.
type Heuristic struct {
	lookup LookupFunc
}

var _ session.Heuristic = (*Heuristic)(nil)

// New creates a heuristic. lookup may be nil, in which case every tracked
// exercise's first set is a PR.
func New(lookup LookupFunc) *Heuristic {
	return &Heuristic{lookup: lookup}
}

// denylist excludes name classes that have no meaningful weight/rep PR:
// warmups, mobility work, and time-based cardio.
var denylist = []string{
	"warm", "warmup", "warm-up", "stretch", "mobility", "foam roll",
	"cardio", "run", "jog", "bike", "row", "swim", "walk", "plank", "hold",
}

// ShouldTrack reports whether the exercise participates in PR detection.
func (h *Heuristic) ShouldTrack(exercise string) bool {
	name := strings.ToLower(strings.TrimSpace(exercise))
	if name == "" {
		return false
	}
	for _, deny := range denylist {
		if strings.Contains(name, deny) {
			return false
		}
	}
	return true
}

// Epley1RM estimates the one-rep max for a weight/rep pair.
func Epley1RM(weight float64, reps int) float64 {
	if reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// beats reports whether candidate (w1, r1) outranks (w2, r2): higher
// estimated 1RM wins; on a tie, more weight, then more reps.
func beats(w1 float64, r1 int, w2 float64, r2 int) bool {
	e1, e2 := Epley1RM(w1, r1), Epley1RM(w2, r2)
	if e1 != e2 {
		return e1 > e2
	}
	if w1 != w2 {
		return w1 > w2
	}
	return r1 > r2
}

// Detect reports whether the candidate set beats both the historical best
// and every prior strength set logged this session. Zero-weight or
// zero-rep candidates are never PRs.
func (h *Heuristic) Detect(exercise string, weight float64, reps int, sessionLogs []session.LoggedSet) bool {
	if weight <= 0 || reps <= 0 {
		return false
	}

	if h.lookup != nil {
		if best, ok := h.lookup(exercise); ok && !beats(weight, reps, best.Weight, best.Reps) {
			return false
		}
	}

	// sessionLogs includes the candidate itself (it is appended before
	// evaluation); an identical earlier set must not block detection here —
	// duplicate celebrations are suppressed by the session's celebrated set.
	for _, s := range sessionLogs {
		if s.Duration {
			continue
		}
		if s.Weight == weight && s.Reps == reps {
			continue
		}
		if !beats(weight, reps, s.Weight, s.Reps) {
			return false
		}
	}
	return true
}
