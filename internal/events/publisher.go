package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Publisher appends typed progress events to a job's log. Publishing is a
// pure side effect; delivery to a reader is never acknowledged.
type Publisher struct {
	log    Log
	logger *zap.Logger
}

func NewPublisher(log Log, logger *zap.Logger) *Publisher {
	return &Publisher{log: log, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, jobID string, typ Type, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", typ, err)
	}

	id, err := p.log.Append(ctx, StreamKey(jobID), typ, data)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", typ, err)
	}

	p.logger.Debug("published event",
		zap.String("job_id", jobID),
		zap.String("entry_id", id),
		zap.String("type", string(typ)),
	)
	return nil
}

func (p *Publisher) Status(ctx context.Context, jobID, status, message string) error {
	return p.Publish(ctx, jobID, TypeStatus, StatusPayload{Status: status, Message: message})
}

func (p *Publisher) Delta(ctx context.Context, jobID, text string) error {
	return p.Publish(ctx, jobID, TypeDelta, DeltaPayload{Text: text})
}

func (p *Publisher) Done(ctx context.Context, jobID string) error {
	return p.Publish(ctx, jobID, TypeDone, StatusPayload{Status: "complete"})
}

// Error publishes the terminal failure event so an attached reader can
// distinguish an aborted job from one that is still working.
func (p *Publisher) Error(ctx context.Context, jobID, message string) error {
	return p.Publish(ctx, jobID, TypeError, StatusPayload{Status: "failed", Message: message})
}
