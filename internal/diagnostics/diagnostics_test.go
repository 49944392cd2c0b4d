package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestLoggerReporterWritesWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	r := NewLoggerReporter(logger)

	err := r.Report(context.Background(), Rejection{
		Stage:  StageApply,
		Line:   12,
		Kind:   "withdrawal",
		Client: 3,
		Tx:     44,
		Reason: "insufficient_funds",
		Err:    errors.New("insufficient funds"),
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "WARN" || entry["msg"] != "record skipped" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
	if entry["reason"] != "insufficient_funds" || entry["kind"] != "withdrawal" {
		t.Fatalf("missing attributes: %v", entry)
	}
	if entry["client"] != float64(3) || entry["tx"] != float64(44) || entry["line"] != float64(12) {
		t.Fatalf("unexpected ids: %v", entry)
	}
	if entry["error"] != "insufficient funds" {
		t.Fatalf("unexpected error attribute: %v", entry["error"])
	}
}

func TestLoggerReporterDecodeStageOmitsRecordFields(t *testing.T) {
	var buf bytes.Buffer
	r := NewLoggerReporter(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := r.Report(context.Background(), Rejection{Stage: StageDecode, Line: 2, Reason: "malformed_row"}); err != nil {
		t.Fatalf("report: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, ok := entry["kind"]; ok {
		t.Fatalf("decode rejection should not carry kind: %v", entry)
	}
	if entry["stage"] != StageDecode {
		t.Fatalf("unexpected stage: %v", entry["stage"])
	}
}

func TestNilLoggerReporterIsSafe(t *testing.T) {
	var r *LoggerReporter
	if err := r.Report(context.Background(), Rejection{}); err != nil {
		t.Fatalf("nil reporter: %v", err)
	}
}
