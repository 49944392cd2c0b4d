package records

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/congo-pay/ledger/internal/account"
)

// DefaultPrecision is the number of fractional digits rendered for balances.
const DefaultPrecision int32 = 4

var outputHeader = []string{"client", "available", "held", "total", "locked"}

// Writer renders account summaries as CSV rows.
type Writer struct {
	w         *csv.Writer
	precision int32
	wroteHead bool
}

// NewWriter builds a summary writer. A negative precision selects DefaultPrecision.
func NewWriter(w io.Writer, precision int32) *Writer {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Writer{w: csv.NewWriter(w), precision: precision}
}

// Write emits the header on first use followed by one row per summary, in the order given.
func (w *Writer) Write(summaries []account.Summary) error {
	if !w.wroteHead {
		if err := w.w.Write(outputHeader); err != nil {
			return err
		}
		w.wroteHead = true
	}
	row := make([]string, len(outputHeader))
	for _, s := range summaries {
		row[0] = strconv.FormatUint(uint64(s.Client), 10)
		row[1] = s.Available.StringFixed(w.precision)
		row[2] = s.Held.StringFixed(w.precision)
		row[3] = s.Total.StringFixed(w.precision)
		row[4] = strconv.FormatBool(s.Locked)
		if err := w.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
