package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/repflow/internal/ingest/trainlog"
	"github.com/claude/repflow/internal/plan"
	"github.com/claude/repflow/internal/service"
	"github.com/claude/repflow/internal/storage"
	"github.com/go-chi/chi/v5"
)

// defaultUserID is the seeded local user. Multi-user auth is handled by
// the network layer (tsnet), not by accounts.
const defaultUserID = 1

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	sessions *service.Manager
	importer *trainlog.Provider
	plans    *plan.Library
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, sessions *service.Manager, importer *trainlog.Provider, plans *plan.Library, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		sessions: sessions,
		importer: importer,
		plans:    plans,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Bulk import (API key required)
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleImport)
		r.Get("/logs", s.handleImportLogs)
	})

	// Live session lifecycle
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionState)
			r.Post("/sets", s.handleCompleteSet)
			r.Post("/skip", s.handleSkipExercise)
			r.Post("/navigate", s.handleNavigate)
			r.Post("/rest/skip", s.handleSkipRest)
			r.Post("/finish", s.handleFinishSession)
			r.Delete("/", s.handleCancelSession)
		})
	})

	// Plans
	s.router.Get("/api/v1/plans", s.handleListPlans)
	s.router.Get("/api/v1/plans/{name}", s.handleGetPlan)

	// Offline session sync (API key required)
	s.router.With(APIKeyAuth(s.apiKey)).Post("/api/v1/logs", s.handleUploadSessionLog)

	// History and records
	s.router.Get("/api/v1/history", s.handleQueryHistory)
	s.router.Get("/api/v1/history/last", s.handleLastPerformance)
	s.router.Get("/api/v1/records", s.handlePersonalRecords)
	s.router.Get("/api/v1/logs", s.handleSessionLogs)
	s.router.Get("/api/v1/logs/{id}", s.handleGetSessionLog)
	s.router.Get("/api/v1/volume", s.handleTrainingVolume)

	// PR tracking overrides
	s.router.Get("/api/v1/tracked-exercises", s.handleTrackedExercises)
	s.router.Put("/api/v1/tracked-exercises", s.handleSetTracking)
}
