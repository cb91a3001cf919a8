package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-resume-insight/internal/database"
	"go-resume-insight/internal/jobs"
	"go-resume-insight/internal/scrape"
)

type analyzeRequest struct {
	JobURL string `json:"job_url"`
}

// handleAnalyze validates the request, mints a job id, and queues the
// scrape-then-analyze pipeline. Progress is streamed from /analysis/{jobID}.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	resumeID, err := uuid.Parse(chi.URLParam(r, "resumeID"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid resume id")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.JobURL) == "" {
		s.writeError(w, http.StatusBadRequest, "job_url is required")
		return
	}

	// Resolving here lets the client hear about an unsupported job board
	// synchronously instead of through the event stream.
	if _, err := s.registry.Resolve(req.JobURL); err != nil {
		switch {
		case errors.Is(err, scrape.ErrInvalidURL):
			s.writeError(w, http.StatusUnprocessableEntity, "job_url is not a valid URL")
		case errors.Is(err, scrape.ErrNoScraper):
			s.writeError(w, http.StatusUnprocessableEntity, "no scraper supports this job board")
		default:
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}

	resume, err := s.store.GetResume(r.Context(), resumeID)
	if err != nil {
		if errors.Is(err, database.ErrResumeNotFound) {
			s.writeError(w, http.StatusNotFound, "resume not found")
			return
		}
		s.logger.Error("loading resume", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "loading the resume failed")
		return
	}
	if strings.TrimSpace(resume.RawText) == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "resume has no extracted text")
		return
	}

	jobID := uuid.NewString()
	if err := s.queue.EnqueueAnalyze(r.Context(), jobs.AnalyzePayload{
		RequestID:  jobID,
		ResumeText: resume.RawText,
		JobURL:     req.JobURL,
	}); err != nil {
		s.logger.Error("enqueueing analysis", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "queueing the analysis failed")
		return
	}

	s.logger.Info("analysis queued",
		zap.String("job_id", jobID),
		zap.String("resume_id", resumeID.String()),
		zap.String("job_url", req.JobURL),
	)
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "queued",
		"job_id": jobID,
	})
}
