package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-resume-insight/internal/events"
	"go-resume-insight/internal/jobs"
	"go-resume-insight/internal/models"
	"go-resume-insight/internal/scrape"
)

// ResumeStore is the slice of the database layer the API touches.
type ResumeStore interface {
	SaveResume(ctx context.Context, resume *models.Resume) error
	GetResume(ctx context.Context, id uuid.UUID) (*models.Resume, error)
	Ping(ctx context.Context) error
}

// Enqueuer hands work to the background worker.
type Enqueuer interface {
	EnqueueAnalyze(ctx context.Context, p jobs.AnalyzePayload) error
	EnqueueExtract(ctx context.Context, p jobs.ExtractPayload) error
	EnqueueUpload(ctx context.Context, p jobs.UploadPayload) error
}

type Server struct {
	store     ResumeStore
	queue     Enqueuer
	reader    *events.Reader
	registry  *scrape.Registry
	uploadDir string
	logger    *zap.Logger
	router    *chi.Mux

	// extractText is swapped in tests to avoid crafting real PDF bytes.
	extractText func(data []byte) (string, error)
}

func New(store ResumeStore, queue Enqueuer, reader *events.Reader, registry *scrape.Registry, uploadDir string, log *zap.Logger) *Server {
	s := &Server{
		store:     store,
		queue:     queue,
		reader:    reader,
		registry:  registry,
		uploadDir: uploadDir,
		logger:    log,

		extractText: pdfText,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/resumes/upload", s.handleUpload)
	r.Post("/resumes/{resumeID}/analyze", s.handleAnalyze)
	r.Get("/analysis/{jobID}", s.handleStream)
	r.Get("/health", s.handleHealth)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
