package jobs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names double as queue routing keys.
const (
	TypeAnalyzeResume = "analysis:run"
	TypeExtractResume = "resume:extract"
	TypeUploadResume  = "resume:upload"
)

// AnalyzePayload carries everything the worker needs to match a resume
// against a live job posting. RequestID is the stream key the client
// subscribes to for progress events.
type AnalyzePayload struct {
	RequestID  string `json:"request_id"`
	ResumeText string `json:"resume_text"`
	JobURL     string `json:"job_url"`
}

// ExtractPayload asks the worker to parse a stored resume into
// structured JSON.
type ExtractPayload struct {
	RequestID string    `json:"request_id"`
	ResumeID  uuid.UUID `json:"resume_id"`
}

// UploadPayload asks the worker to push the original resume file to
// object storage and clean up the local copy.
type UploadPayload struct {
	RequestID string    `json:"request_id"`
	ResumeID  uuid.UUID `json:"resume_id"`
	FilePath  string    `json:"file_path"`
}

func NewAnalyzeTask(p AnalyzePayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAnalyzeResume, data), nil
}

func NewExtractTask(p ExtractPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExtractResume, data), nil
}

func NewUploadTask(p UploadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeUploadResume, data), nil
}

// Queue enqueues background tasks for the worker process. Retries are
// handled inside the handlers, so every task is enqueued with
// MaxRetry(0).
type Queue struct {
	client *asynq.Client
}

func NewQueue(redisAddr string) *Queue {
	return &Queue{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (q *Queue) EnqueueAnalyze(ctx context.Context, p AnalyzePayload) error {
	task, err := NewAnalyzeTask(p)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task, asynq.MaxRetry(0))
	return err
}

func (q *Queue) EnqueueExtract(ctx context.Context, p ExtractPayload) error {
	task, err := NewExtractTask(p)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task, asynq.MaxRetry(0))
	return err
}

func (q *Queue) EnqueueUpload(ctx context.Context, p UploadPayload) error {
	task, err := NewUploadTask(p)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task, asynq.MaxRetry(0))
	return err
}

func (q *Queue) Close() error {
	return q.client.Close()
}
