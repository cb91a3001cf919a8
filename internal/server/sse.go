package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go-resume-insight/internal/events"
)

// handleStream replays a job's event log over SSE and follows it live
// until the terminal event arrives or the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// An immediate comment forces proxies to commit the response headers.
	io.WriteString(w, ":\n\n")
	io.WriteString(w, sseFrame(events.TypeStatus, []byte(`{"status":"listening"}`)))
	flusher.Flush()

	err := s.reader.Tail(r.Context(), jobID, func(e events.Entry) error {
		if _, err := io.WriteString(w, sseFrame(e.Type, e.Payload)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("event stream ended abnormally",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
	}
}

func sseFrame(typ events.Type, data []byte) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", typ, data)
}
