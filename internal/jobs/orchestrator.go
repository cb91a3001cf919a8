package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"go-resume-insight/internal/events"
	"go-resume-insight/internal/llm"
	"go-resume-insight/internal/logger"
	"go-resume-insight/internal/models"
	"go-resume-insight/internal/retry"
	"go-resume-insight/internal/scrape"
)

// llmBackoff governs retries of the model call. Only rate limits and
// server errors are worth waiting out, and only while nothing has been
// streamed to the client yet.
var llmBackoff = retry.Policy{
	MaxAttempts:  5,
	InitialDelay: 4 * time.Second,
	MaxDelay:     60 * time.Second,
	Multiplier:   2,
}

// ResumeStore is the slice of the database layer the worker touches.
type ResumeStore interface {
	GetResume(ctx context.Context, id uuid.UUID) (*models.Resume, error)
	UpdateParsedData(ctx context.Context, id uuid.UUID, parsed []byte) error
	UpdateS3URL(ctx context.Context, id uuid.UUID, s3URL string) error
}

// Uploader pushes a local file to object storage and returns its
// public URL.
type Uploader interface {
	UploadFile(ctx context.Context, path, key string) (string, error)
}

// Orchestrator owns the background task handlers. Handlers never
// return an error to asynq: every job is a single delivery and failures
// surface through the event stream or the log instead of a redelivery.
type Orchestrator struct {
	pool      scrape.PageProvider
	registry  *scrape.Registry
	llm       llm.Client
	publisher *events.Publisher
	store     ResumeStore
	uploader  Uploader
	logger    *zap.Logger
}

func NewOrchestrator(
	pool scrape.PageProvider,
	registry *scrape.Registry,
	client llm.Client,
	publisher *events.Publisher,
	store ResumeStore,
	uploader Uploader,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		pool:      pool,
		registry:  registry,
		llm:       client,
		publisher: publisher,
		store:     store,
		uploader:  uploader,
		logger:    log,
	}
}

// HandleAnalyze runs the full scrape-then-analyze pipeline for one
// request, publishing progress to the request's event stream. The
// terminal event is always published before returning, so an attached
// reader never hangs on an aborted job.
func (o *Orchestrator) HandleAnalyze(ctx context.Context, t *asynq.Task) error {
	var p AnalyzePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		o.logger.Error("malformed analyze payload", zap.Error(err))
		return nil
	}
	log := logger.WithRequestID(o.logger, p.RequestID)

	if err := o.analyze(ctx, log, p); err != nil {
		log.Error("analysis failed",
			zap.String("job_url", p.JobURL),
			zap.Error(err),
		)
		if pubErr := o.publisher.Error(ctx, p.RequestID, err.Error()); pubErr != nil {
			log.Error("publishing failure event", zap.Error(pubErr))
		}
	}
	return nil
}

func (o *Orchestrator) analyze(ctx context.Context, log *zap.Logger, p AnalyzePayload) error {
	if strings.TrimSpace(p.ResumeText) == "" {
		return errors.New("resume text is empty")
	}

	scraper, err := o.registry.Resolve(p.JobURL)
	if err != nil {
		return err
	}

	log.Info("scraping job posting",
		zap.String("job_url", p.JobURL),
		zap.String("scraper", scraper.Name()),
	)
	if err := o.publisher.Status(ctx, p.RequestID, "scraping", "Accessing job posting..."); err != nil {
		return err
	}

	jobData, err := scrape.Fetch(ctx, o.pool, p.JobURL, scraper, log)
	if err != nil {
		return fmt.Errorf("scrape job posting: %w", err)
	}

	log.Info("analyzing resume against posting",
		zap.String("title", jobData.Title),
		zap.String("company", jobData.Company),
	)
	if err := o.publisher.Status(ctx, p.RequestID, "analyzing", "Matching resume against the posting..."); err != nil {
		return err
	}

	if err := o.streamAnalysis(ctx, log, p, jobData); err != nil {
		return fmt.Errorf("generate analysis: %w", err)
	}

	return o.publisher.Done(ctx, p.RequestID)
}

// streamAnalysis streams model output into delta events. A failed call
// is retried only while no delta has reached the stream; once partial
// output is out, retrying would duplicate text the client already saw.
func (o *Orchestrator) streamAnalysis(ctx context.Context, log *zap.Logger, p AnalyzePayload, jobData *scrape.JobData) error {
	jobJSON, err := json.Marshal(jobData)
	if err != nil {
		return fmt.Errorf("marshal job data: %w", err)
	}
	prompt := llm.AnalyzeResumePrompt(p.ResumeText, string(jobJSON))

	var delivered bool
	policy := llmBackoff
	policy.Retryable = func(err error) bool {
		return !delivered && llm.IsRetryable(err)
	}
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn("retrying model call",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	_, err = retry.Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.llm.GenerateStream(ctx, prompt, func(chunk string) error {
			delivered = true
			return o.publisher.Delta(ctx, p.RequestID, chunk)
		})
	})
	return err
}

// HandleExtract parses a stored resume into structured JSON and writes
// it back to the resume row.
func (o *Orchestrator) HandleExtract(ctx context.Context, t *asynq.Task) error {
	var p ExtractPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		o.logger.Error("malformed extract payload", zap.Error(err))
		return nil
	}
	log := logger.WithRequestID(o.logger, p.RequestID)

	if o.store == nil {
		log.Warn("database not configured, skipping extraction")
		return nil
	}

	if err := o.extract(ctx, log, p); err != nil {
		log.Error("resume extraction failed",
			zap.String("resume_id", p.ResumeID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (o *Orchestrator) extract(ctx context.Context, log *zap.Logger, p ExtractPayload) error {
	resume, err := o.store.GetResume(ctx, p.ResumeID)
	if err != nil {
		return err
	}

	log.Info("extracting structured data",
		zap.String("resume_id", p.ResumeID.String()),
		zap.String("filename", resume.Filename),
	)

	raw, err := o.llm.Generate(ctx, llm.ExtractResumePrompt(resume.RawText))
	if err != nil {
		return fmt.Errorf("generate extraction: %w", err)
	}

	clean := llm.CleanJSON(raw)
	if !json.Valid([]byte(clean)) {
		return fmt.Errorf("model returned invalid JSON: %.80s", clean)
	}

	if err := o.store.UpdateParsedData(ctx, p.ResumeID, []byte(clean)); err != nil {
		return fmt.Errorf("save parsed data: %w", err)
	}

	log.Info("stored parsed resume data", zap.String("resume_id", p.ResumeID.String()))
	return nil
}

// HandleUpload moves the original resume file to object storage and
// deletes the local copy once the URL is recorded.
func (o *Orchestrator) HandleUpload(ctx context.Context, t *asynq.Task) error {
	var p UploadPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		o.logger.Error("malformed upload payload", zap.Error(err))
		return nil
	}
	log := logger.WithRequestID(o.logger, p.RequestID)

	if o.uploader == nil || o.store == nil {
		log.Warn("object storage or database not configured, keeping local file",
			zap.String("file_path", p.FilePath),
		)
		return nil
	}

	if err := o.upload(ctx, log, p); err != nil {
		log.Error("resume upload failed",
			zap.String("resume_id", p.ResumeID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (o *Orchestrator) upload(ctx context.Context, log *zap.Logger, p UploadPayload) error {
	key := fmt.Sprintf("resumes/%s/%s", p.ResumeID, filepath.Base(p.FilePath))

	url, err := o.uploader.UploadFile(ctx, p.FilePath, key)
	if err != nil {
		return fmt.Errorf("upload to object storage: %w", err)
	}

	if err := o.store.UpdateS3URL(ctx, p.ResumeID, url); err != nil {
		return fmt.Errorf("record object URL: %w", err)
	}

	if err := os.Remove(p.FilePath); err != nil {
		log.Warn("removing local resume file", zap.Error(err))
	}

	log.Info("uploaded resume to object storage",
		zap.String("resume_id", p.ResumeID.String()),
		zap.String("url", url),
	)
	return nil
}
