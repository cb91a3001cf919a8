package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// pollBlock bounds each blocking read; empty polls loop forever so a
	// stream connection survives silent periods.
	pollBlock = 5 * time.Second
	pollCount = 10
)

// Reader tails one job's event log from the beginning and hands every
// entry to the caller in log order. It is built for a single live consumer
// per job.
type Reader struct {
	log    Log
	logger *zap.Logger
}

func NewReader(log Log, logger *zap.Logger) *Reader {
	return &Reader{log: log, logger: logger}
}

// Tail replays the job's log from its origin, then follows new entries as
// they are appended, invoking fn for each. It returns nil once a terminal
// entry has been delivered; entries appended after it are never seen by
// this reader. A reader attaching after the terminal entry replays the
// whole history and then stops the same way.
func (r *Reader) Tail(ctx context.Context, jobID string, fn func(Entry) error) error {
	key := StreamKey(jobID)
	lastID := "0"

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := r.log.Read(ctx, key, lastID, pollBlock, pollCount)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			lastID = entry.ID

			switch entry.Type {
			case TypeStatus, TypeDelta, TypeDone, TypeError:
			default:
				// A misbehaving producer; deliver anyway but leave a trace.
				r.logger.Warn("unknown event type in stream",
					zap.String("job_id", jobID),
					zap.String("entry_id", entry.ID),
					zap.String("type", string(entry.Type)),
				)
			}

			if err := fn(entry); err != nil {
				return err
			}
			if entry.Type.Terminal() {
				return nil
			}
		}
	}
}
