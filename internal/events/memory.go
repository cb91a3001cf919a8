package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryLog is an in-process Log for single-node deployments and tests.
// It mimics the Redis stream id scheme ("<seq>-0") so cursors are
// interchangeable between the two implementations.
type MemoryLog struct {
	mu      sync.Mutex
	streams map[string][]Entry
	seq     map[string]int64
	changed chan struct{}
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		streams: make(map[string][]Entry),
		seq:     make(map[string]int64),
		changed: make(chan struct{}),
	}
}

func (l *MemoryLog) Append(_ context.Context, key string, typ Type, payload json.RawMessage) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq[key]++
	entry := Entry{
		ID:      strconv.FormatInt(l.seq[key], 10) + "-0",
		Type:    typ,
		Payload: append(json.RawMessage(nil), payload...),
	}
	l.streams[key] = append(l.streams[key], entry)

	// Wake every blocked reader.
	close(l.changed)
	l.changed = make(chan struct{})

	return entry.ID, nil
}

func (l *MemoryLog) Read(ctx context.Context, key, fromID string, block time.Duration, count int64) ([]Entry, error) {
	deadline := time.Now().Add(block)

	for {
		l.mu.Lock()
		entries := entriesAfter(l.streams[key], fromID, count)
		changed := l.changed
		l.mu.Unlock()

		if len(entries) > 0 {
			return entries, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-changed:
			timer.Stop()
		case <-timer.C:
			return nil, nil
		}
	}
}

func entriesAfter(entries []Entry, fromID string, count int64) []Entry {
	from := parseSeq(fromID)

	var out []Entry
	for _, e := range entries {
		if parseSeq(e.ID) <= from {
			continue
		}
		out = append(out, e)
		if count > 0 && int64(len(out)) >= count {
			break
		}
	}
	return out
}

func parseSeq(id string) int64 {
	seq, _, _ := strings.Cut(id, "-")
	n, err := strconv.ParseInt(seq, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
