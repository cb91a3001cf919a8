package server

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"go-resume-insight/internal/jobs"
	"go-resume-insight/internal/models"
	"go-resume-insight/internal/textproc"
)

const maxUploadBytes = 2 << 20

// handleUpload accepts a PDF resume, extracts and cleans its text, and
// stores the row. Structured extraction and the object storage upload
// run in the background so the response stays fast.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		s.writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the 2MB limit")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		s.writeError(w, http.StatusUnsupportedMediaType, "only PDF resumes are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}

	text, err := s.extractText(data)
	if err != nil {
		s.logger.Warn("pdf text extraction failed",
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		s.writeError(w, http.StatusUnprocessableEntity, "could not extract text from the PDF")
		return
	}

	clean, err := textproc.Clean(text)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "the PDF contains no readable text")
		return
	}

	resumeID := uuid.New()
	localPath, err := s.saveLocalCopy(resumeID, data)
	if err != nil {
		s.logger.Error("saving resume file", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "storing the resume failed")
		return
	}

	resume := &models.Resume{
		ID:        resumeID,
		Filename:  header.Filename,
		RawText:   clean,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveResume(r.Context(), resume); err != nil {
		s.logger.Error("saving resume row", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "storing the resume failed")
		return
	}

	requestID := middleware.GetReqID(r.Context())
	if err := s.queue.EnqueueExtract(r.Context(), jobs.ExtractPayload{
		RequestID: requestID,
		ResumeID:  resumeID,
	}); err != nil {
		s.logger.Error("enqueueing extraction", zap.Error(err))
	}
	if err := s.queue.EnqueueUpload(r.Context(), jobs.UploadPayload{
		RequestID: requestID,
		ResumeID:  resumeID,
		FilePath:  localPath,
	}); err != nil {
		s.logger.Error("enqueueing upload", zap.Error(err))
	}

	s.logger.Info("resume accepted",
		zap.String("resume_id", resumeID.String()),
		zap.String("filename", header.Filename),
	)
	s.writeJSON(w, http.StatusCreated, map[string]string{
		"resume_id": resumeID.String(),
		"message":   "resume uploaded, extraction queued",
	})
}

func (s *Server) saveLocalCopy(resumeID uuid.UUID, data []byte) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.uploadDir, resumeID.String()+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", err
	}
	return sb.String(), nil
}
