package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Log is an append-only, per-key ordered sequence of entries supporting
// cursor-based tailing. Read blocks up to the given duration and returns an
// empty batch on timeout, never an error.
type Log interface {
	Append(ctx context.Context, key string, typ Type, payload json.RawMessage) (string, error)
	Read(ctx context.Context, key, fromID string, block time.Duration, count int64) ([]Entry, error)
}

// RedisLog stores each job's events in a Redis stream. Retention is
// whatever the Redis deployment is configured with; there is no durability
// guarantee beyond it.
type RedisLog struct {
	rdb *redis.Client
}

func NewRedisLog(rdb *redis.Client) *RedisLog {
	return &RedisLog{rdb: rdb}
}

func (l *RedisLog) Append(ctx context.Context, key string, typ Type, payload json.RawMessage) (string, error) {
	id, err := l.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: key,
		Values: map[string]any{
			"type":    string(typ),
			"payload": string(payload),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", key, err)
	}
	return id, nil
}

func (l *RedisLog) Read(ctx context.Context, key, fromID string, block time.Duration, count int64) ([]Entry, error) {
	streams, err := l.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{key, fromID},
		Block:   block,
		Count:   count,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xread %s: %w", key, err)
	}

	var entries []Entry
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			entries = append(entries, entryFromValues(msg.ID, msg.Values))
		}
	}
	return entries, nil
}

func entryFromValues(id string, values map[string]any) Entry {
	entry := Entry{ID: id}
	if typ, ok := values["type"].(string); ok {
		entry.Type = Type(typ)
	}
	if payload, ok := values["payload"].(string); ok {
		entry.Payload = json.RawMessage(payload)
	}
	return entry
}
