package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"slasher/internal/core"
)

func TestNewWritesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentWorker, Output: &buf})
	logger.Info("hello", FieldCount, 3)

	out := buf.String()
	if !strings.Contains(out, "component=worker") || !strings.Contains(out, "count=3") {
		t.Fatalf("unexpected output: %q", out)
	}
	if logger.Component() != ComponentWorker {
		t.Fatalf("component = %q", logger.Component())
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level: %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn must pass: %q", buf.String())
	}
}

func TestWithKeepsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentWorker, Output: &buf, JSON: true}).With(FieldID, 4)
	logger.Info("x")
	if !strings.Contains(buf.String(), `"component":"worker"`) || !strings.Contains(buf.String(), `"id":4`) {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	if logger.Component() != ComponentWorker {
		t.Fatalf("component = %q", logger.Component())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := New(Config{Component: ComponentCLI, Output: &bytes.Buffer{}})
	ctx := WithContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("expected the stored logger back")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}

func TestLogFields(t *testing.T) {
	tx := core.Transaction{ID: 9, Date: core.NewDate(2024, 1, 3), Tags: "category:food", Amount: core.Money{Cents: -5000}}
	f := NewFields().WithTransaction(tx).WithOperation(OpCreate).WithError(errors.New("boom"))
	if f[FieldID] != int64(9) || f[FieldKind] != "expense" || f[FieldCategory] != "food" || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatal("ToSlice must return key/value pairs")
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Fatal("nil error must not add a field")
	}
}
