package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/ledger/internal/account"
	"github.com/congo-pay/ledger/internal/diagnostics"
	"github.com/congo-pay/ledger/internal/ledger"
	"github.com/congo-pay/ledger/internal/logging"
	"github.com/congo-pay/ledger/internal/records"
)

// RecordSource yields decoded records one at a time and io.EOF when exhausted.
// A *records.RowError marks a row that should be skipped.
type RecordSource interface {
	Next() (ledger.Record, error)
}

// SummaryWriter receives the final account summaries.
type SummaryWriter interface {
	Write(summaries []account.Summary) error
	Flush() error
}

type lineReporter interface {
	Line() int
}

// Report summarises a completed run.
type Report struct {
	RunID     string
	Records   int
	Applied   int
	Malformed int
	Rejected  map[string]int
	Accounts  int
	Duration  time.Duration
}

// Skipped counts every input row that had no effect on the ledger.
func (r Report) Skipped() int {
	n := r.Malformed
	for _, c := range r.Rejected {
		n += c
	}
	return n
}

// Runner feeds a record stream through a ledger engine and drains the resulting accounts.
type Runner struct {
	engine   *ledger.Engine
	reporter diagnostics.Reporter
	logger   *slog.Logger
}

// NewRunner constructs a runner. A nil reporter discards rejections and a nil
// logger discards log output.
func NewRunner(engine *ledger.Engine, reporter diagnostics.Reporter, logger *slog.Logger) *Runner {
	if reporter == nil {
		reporter = diagnostics.Discard{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{engine: engine, reporter: reporter, logger: logger}
}

// Run applies every record from src in arrival order, then writes one summary per
// client to dst ordered by client id. Malformed rows and rejected records are reported
// and skipped; only source, writer and context errors end the run early.
func (r *Runner) Run(ctx context.Context, src RecordSource, dst SummaryWriter) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString(), Rejected: make(map[string]int)}
	logger := r.logger.With(slog.String("run_id", report.RunID))

	logger.Info("run started")

	for {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run interrupted: %w", err)
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var rowErr *records.RowError
			if !errors.As(err, &rowErr) {
				return report, fmt.Errorf("read records: %w", err)
			}
			report.Malformed++
			r.reject(ctx, logger, diagnostics.Rejection{
				Stage:  diagnostics.StageDecode,
				Line:   rowErr.Line,
				Reason: "malformed_row",
				Err:    rowErr.Err,
			})
			continue
		}

		report.Records++
		if err := r.engine.Apply(rec); err != nil {
			reason := ledger.ReasonCode(err)
			report.Rejected[reason]++
			rejection := diagnostics.Rejection{
				Stage:  diagnostics.StageApply,
				Kind:   string(rec.Kind),
				Client: uint32(rec.Client),
				Tx:     uint32(rec.Tx),
				Reason: reason,
				Err:    errors.Unwrap(err),
			}
			if lr, ok := src.(lineReporter); ok {
				rejection.Line = lr.Line()
			}
			r.reject(ctx, logger, rejection)
			continue
		}
		report.Applied++
	}

	summaries := r.engine.Accounts()
	if err := dst.Write(summaries); err != nil {
		return report, fmt.Errorf("write summaries: %w", err)
	}
	if err := dst.Flush(); err != nil {
		return report, fmt.Errorf("flush summaries: %w", err)
	}
	report.Accounts = len(summaries)
	report.Duration = time.Since(start)

	logger.Info("run completed",
		slog.Int("records", report.Records),
		slog.Int("applied", report.Applied),
		slog.Int("malformed", report.Malformed),
		slog.Int("skipped", report.Skipped()),
		slog.Int("accounts", report.Accounts),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

func (r *Runner) reject(ctx context.Context, logger *slog.Logger, rejection diagnostics.Rejection) {
	if err := r.reporter.Report(ctx, rejection); err != nil {
		logger.Debug("diagnostic report failed", slog.Any("error", err))
	}
}
