package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/repflow/internal/plan"
	"github.com/claude/repflow/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// startSessionRequest names a stored plan or carries one inline.
type startSessionRequest struct {
	PlanName string         `json:"plan_name,omitempty"`
	Plan     *plan.Template `json:"plan,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	tmpl := req.Plan
	if tmpl == nil {
		if req.PlanName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plan or plan_name required"})
			return
		}
		stored, err := s.plans.Get(req.PlanName)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if stored == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown plan: " + req.PlanName})
			return
		}
		tmpl = stored
	}

	sess, err := s.sessions.Start(r.Context(), defaultUserID, tmpl)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, s.sessions.State(sess))
}

// mustSession resolves the {id} URL parameter to a live session, writing
// the error response itself when it cannot.
func (s *Server) mustSession(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.mustSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sessions.State(sess))
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.mustSession(w, r)
	if !ok {
		return
	}

	var in service.SetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	state, err := s.sessions.CompleteSet(sess, in)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrCannotProceed) {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSkipExercise(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.mustSession(w, r)
	if !ok {
		return
	}
	state, err := s.sessions.SkipExercise(sess)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type navigateRequest struct {
	Block    int `json:"block"`
	Exercise int `json:"exercise"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.mustSession(w, r)
	if !ok {
		return
	}

	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	state, err := s.sessions.Navigate(sess, req.Block, req.Exercise)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSkipRest(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.mustSession(w, r)
	if !ok {
		return
	}
	state, err := s.sessions.SkipRest(sess)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.mustSession(w, r)
	if !ok {
		return
	}
	summary, err := s.sessions.Finish(sess)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.mustSession(w, r)
	if !ok {
		return
	}
	s.sessions.Cancel(sess)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	templates, err := s.plans.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tmpl, err := s.plans.Get(name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if tmpl == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}
