package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fakeAdder struct {
	got *redis.XAddArgs
	err error
}

func (f *fakeAdder) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.got = a
	return redis.NewStringResult("1-0", f.err)
}

func testEvent() Event {
	return Event{
		ActorID:       "prov-1",
		ActorRole:     "provider",
		Action:        ActionCreate,
		AppointmentID: uuid.MustParse("00000000-0000-0000-0000-000000000501"),
		ProviderID:    "prov-1",
		At:            time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
	}
}

func TestRedisStreamSinkRecord(t *testing.T) {
	adder := &fakeAdder{}
	sink := NewRedisStreamSink(adder, "clinicsched:audit", 1000)

	if err := sink.Record(context.Background(), testEvent()); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if adder.got == nil {
		t.Fatalf("XAdd not called")
	}
	if adder.got.Stream != "clinicsched:audit" {
		t.Fatalf("stream = %q", adder.got.Stream)
	}
	if adder.got.MaxLen != 1000 || !adder.got.Approx {
		t.Fatalf("MaxLen = %d approx=%v, want 1000 approx", adder.got.MaxLen, adder.got.Approx)
	}
	values, ok := adder.got.Values.(map[string]any)
	if !ok {
		t.Fatalf("values type = %T", adder.got.Values)
	}
	if values["action"] != string(ActionCreate) || values["appointment_id"] != "00000000-0000-0000-0000-000000000501" {
		t.Fatalf("values = %v", values)
	}
}

func TestRedisStreamSinkUncapped(t *testing.T) {
	adder := &fakeAdder{}
	sink := NewRedisStreamSink(adder, "s", 0)
	if err := sink.Record(context.Background(), testEvent()); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if adder.got.MaxLen != 0 || adder.got.Approx {
		t.Fatalf("MaxLen = %d approx=%v, want uncapped", adder.got.MaxLen, adder.got.Approx)
	}
}

func TestRedisStreamSinkPropagatesError(t *testing.T) {
	want := errors.New("redis down")
	sink := NewRedisStreamSink(&fakeAdder{err: want}, "s", 10)
	if err := sink.Record(context.Background(), testEvent()); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestLogSinkWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := sink.Record(context.Background(), testEvent()); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["msg"] != "audit" || rec["action"] != string(ActionCreate) || rec["actor_id"] != "prov-1" {
		t.Fatalf("record = %v", rec)
	}
}
