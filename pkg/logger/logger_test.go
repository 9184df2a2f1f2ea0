// pkg/logger/logger_test.go

package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{raw: zap.New(core)}, logs
}

func TestNew_InvalidLevelRejected(t *testing.T) {
	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Fatal("New accepted level=verbose")
	}
}

func TestWith_FieldsStickToEveryEntry(t *testing.T) {
	l, logs := observed()

	rl := l.With(zap.String("request_id", "req-1"))
	rl.Info("first")
	rl.Warn("second")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		got := e.ContextMap()["request_id"]
		if got != "req-1" {
			t.Fatalf("%s: request_id = %v", e.Message, got)
		}
	}

	// Исходный логгер поле не наследует.
	l.Info("bare")
	bare := logs.All()[2]
	if _, ok := bare.ContextMap()["request_id"]; ok {
		t.Fatal("bare logger inherited request_id")
	}
}

func TestWithContext_PicksUpIDs(t *testing.T) {
	l, logs := observed()

	ctx := ContextWithTraceID(context.Background(), "trace-7")
	ctx = ContextWithRequestID(ctx, "req-7")
	l.WithContext(ctx).Info("handled")

	m := logs.All()[0].ContextMap()
	if m["trace_id"] != "trace-7" || m["request_id"] != "req-7" {
		t.Fatalf("context fields = %v", m)
	}
}

func TestWithContext_EmptyContextReturnsSameLogger(t *testing.T) {
	l, _ := observed()
	if l.WithContext(context.Background()) != l {
		t.Fatal("WithContext allocated a new logger for an empty context")
	}
}
