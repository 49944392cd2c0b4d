package diagnostics

import (
	"context"
	"log/slog"
)

const (
	// StageDecode marks a row that could not be decoded into a record.
	StageDecode = "decode"
	// StageApply marks a decoded record the ledger refused to apply.
	StageApply = "apply"
)

// Rejection describes a skipped input row.
type Rejection struct {
	Stage  string
	Line   int
	Kind   string
	Client uint32
	Tx     uint32
	Reason string
	Err    error
}

// Reporter receives rejections as they happen. Implementations must not assume the
// run stops after a rejection.
type Reporter interface {
	Report(ctx context.Context, rejection Rejection) error
}

// LoggerReporter writes rejections to a structured logger as warnings.
type LoggerReporter struct {
	logger *slog.Logger
}

// NewLoggerReporter constructs a logging reporter.
func NewLoggerReporter(logger *slog.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// Report writes the rejection to the structured logger.
func (r *LoggerReporter) Report(ctx context.Context, rejection Rejection) error {
	if r == nil || r.logger == nil {
		return nil
	}
	attrs := []any{
		slog.String("stage", rejection.Stage),
		slog.String("reason", rejection.Reason),
	}
	if rejection.Line > 0 {
		attrs = append(attrs, slog.Int("line", rejection.Line))
	}
	if rejection.Stage == StageApply {
		attrs = append(attrs,
			slog.String("kind", rejection.Kind),
			slog.Any("client", rejection.Client),
			slog.Any("tx", rejection.Tx),
		)
	}
	if rejection.Err != nil {
		attrs = append(attrs, slog.Any("error", rejection.Err))
	}
	r.logger.WarnContext(ctx, "record skipped", attrs...)
	return nil
}

// Discard drops every rejection.
type Discard struct{}

// Report implements Reporter.
func (Discard) Report(context.Context, Rejection) error { return nil }
