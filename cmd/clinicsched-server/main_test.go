package main

import (
	"context"
	"log/slog"
	"testing"

	"clinicsched/internal/audit"
	"clinicsched/internal/config"
	"clinicsched/internal/store/memstore"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestOpenRepository_Memory(t *testing.T) {
	repo, closeRepo, err := openRepository(context.Background(), config.Config{StorageDriver: config.StorageMemory}, slog.Default(), false)
	if err != nil {
		t.Fatalf("openRepository: %v", err)
	}
	defer closeRepo()
	if _, ok := repo.(*memstore.Store); !ok {
		t.Fatalf("repo = %T, want *memstore.Store", repo)
	}
}

func TestOpenAuditSink(t *testing.T) {
	sink, closeSink, err := openAuditSink(context.Background(), config.Config{AuditSink: config.AuditNone}, slog.Default())
	if err != nil || sink != audit.Discard {
		t.Fatalf("none sink = %v, %v", sink, err)
	}
	closeSink()

	sink, closeSink, err = openAuditSink(context.Background(), config.Config{AuditSink: config.AuditLog}, slog.Default())
	if err != nil {
		t.Fatalf("log sink: %v", err)
	}
	defer closeSink()
	if _, ok := sink.(*audit.LogSink); !ok {
		t.Fatalf("sink = %T, want *audit.LogSink", sink)
	}
}
