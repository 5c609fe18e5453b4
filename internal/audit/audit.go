// Package audit records who changed which appointment. Sinks are best effort:
// callers log a failed Record and carry on.
package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Action string

const (
	ActionCreate     Action = "appointment.create"
	ActionReschedule Action = "appointment.reschedule"
	ActionCancel     Action = "appointment.cancel"
	ActionStatus     Action = "appointment.status"
	ActionNotes      Action = "appointment.notes"
)

type Event struct {
	ActorID       string
	ActorRole     string
	Action        Action
	AppointmentID uuid.UUID
	ProviderID    string
	Detail        string
	At            time.Time
}

type Sink interface {
	Record(ctx context.Context, e Event) error
}

type discard struct{}

func (discard) Record(context.Context, Event) error { return nil }

// Discard drops every event.
var Discard Sink = discard{}

type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, e Event) error {
	s.logger.InfoContext(ctx, "audit",
		"action", string(e.Action),
		"actor_id", e.ActorID,
		"actor_role", e.ActorRole,
		"appointment_id", e.AppointmentID.String(),
		"provider_id", e.ProviderID,
		"detail", e.Detail,
		"at", e.At.UTC().Format(time.RFC3339Nano),
	)
	return nil
}

// StreamAdder is the subset of a redis client the stream sink needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamSink appends events to a capped Redis stream.
type RedisStreamSink struct {
	adder  StreamAdder
	stream string
	maxLen int64
}

func NewRedisStreamSink(client StreamAdder, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{adder: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamSink) Record(ctx context.Context, e Event) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"action":         string(e.Action),
			"actor_id":       e.ActorID,
			"actor_role":     e.ActorRole,
			"appointment_id": e.AppointmentID.String(),
			"provider_id":    e.ProviderID,
			"detail":         e.Detail,
			"at":             strconv.FormatInt(e.At.UTC().UnixMilli(), 10),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.adder.XAdd(ctx, args).Err()
}
