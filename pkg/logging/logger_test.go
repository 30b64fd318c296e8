package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"Warn", WarnLevel},
		{"warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"invalid", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestJSONLogger_DomainFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	runID := uuid.New()
	logger.Info("edge restored",
		RunID(runID),
		Activity("Approve"),
		NodeIndex(3),
		Edge(1, 3),
		Step("restore"),
	)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].Fields
	if fields["run_id"] != runID.String() {
		t.Errorf("run_id = %v, want %s", fields["run_id"], runID)
	}
	if fields["activity"] != "Approve" || fields["edge"] != "1->3" || fields["step"] != "restore" {
		t.Errorf("Unexpected fields %v", fields)
	}
	// JSON numbers decode as float64
	if fields["node"] != float64(3) {
		t.Errorf("node = %v, want 3", fields["node"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept", Error(errors.New("boom")))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("Unexpected levels %s, %s", entries[0].Level, entries[1].Level)
	}
	if entries[1].Fields["error"] != "boom" {
		t.Errorf("error field = %v, want boom", entries[1].Fields["error"])
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("filter"))
	child.Info("pruned", Count(4))
	logger.Info("parent")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["component"] != "filter" || entries[0].Fields["count"] != float64(4) {
		t.Errorf("Child fields missing: %v", entries[0].Fields)
	}
	if entries[1].Fields != nil {
		t.Errorf("Parent must not inherit child fields, got %v", entries[1].Fields)
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Debug("hidden")
	logger.SetLevel(DebugLevel)
	logger.Debug("visible")

	if logger.GetLevel() != DebugLevel {
		t.Errorf("GetLevel() = %v, want DEBUG", logger.GetLevel())
	}
	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0].Message != "visible" {
		t.Errorf("Unexpected entries %v", entries)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	if got := NewFromEnv(InfoLevel).GetLevel(); got != ErrorLevel {
		t.Errorf("level = %v, want ERROR", got)
	}

	t.Setenv(EnvLevel, "")
	if got := NewFromEnv(WarnLevel).GetLevel(); got != WarnLevel {
		t.Errorf("level = %v, want fallback WARN", got)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	timer := StartTimer(logger, "build", Component("dfg"))
	timer.End(Count(2))
	StartTimer(logger, "filter").EndError(errors.New("disconnected"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "DEBUG" || entries[0].Fields["latency"] == nil || entries[0].Fields["count"] != float64(2) {
		t.Errorf("Unexpected timer entry %+v", entries[0])
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "disconnected" {
		t.Errorf("Unexpected error entry %+v", entries[1])
	}
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NewNopLogger()
	logger.Info("ignored", String("k", "v"))
	if logger.With(Count(1)) == nil {
		t.Error("With must return a logger")
	}
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) must return a usable logger")
	}
}
