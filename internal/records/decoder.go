// Package records converts between delimited text and ledger types: it decodes
// transaction rows into ledger.Record values and writes account summaries back out.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/ledger/internal/account"
	"github.com/congo-pay/ledger/internal/ledger"
)

// ErrMalformedRow is wrapped by every RowError.
var ErrMalformedRow = errors.New("malformed row")

var inputHeader = []string{"type", "client", "tx", "amount"}

const byteOrderMark = "\ufeff"

// RowError reports a row that could not be decoded. The decoder stays usable after
// returning one, so callers may skip the row and keep reading.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRow, e.Err}
}

// Decoder lazily reads transaction records from CSV input with the header
// "type,client,tx,amount". Fields are trimmed and the amount column may be
// omitted on dispute, resolve and chargeback rows.
type Decoder struct {
	r          *csv.Reader
	headerRead bool
	line       int
}

// NewDecoder builds a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Decoder{r: cr}
}

// Next returns the next record. It returns io.EOF once the input is exhausted and a
// *RowError for rows that are malformed. Any other error is fatal to the stream.
func (d *Decoder) Next() (ledger.Record, error) {
	if !d.headerRead {
		if err := d.readHeader(); err != nil {
			return ledger.Record{}, err
		}
	}

	for {
		fields, err := d.r.Read()
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				d.line = parseErr.Line
				return ledger.Record{}, &RowError{Line: parseErr.Line, Err: parseErr.Err}
			}
			return ledger.Record{}, err
		}
		if blank(fields) {
			continue
		}
		d.line, _ = d.r.FieldPos(0)

		rec, err := parseRecord(fields)
		if err != nil {
			return ledger.Record{}, &RowError{Line: d.line, Err: err}
		}
		return rec, nil
	}
}

// Line returns the input line of the row most recently returned by Next.
func (d *Decoder) Line() int {
	return d.line
}

func (d *Decoder) readHeader() error {
	fields, err := d.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("read header: %w", err)
	}
	d.headerRead = true

	if len(fields) < 3 || len(fields) > len(inputHeader) {
		return fmt.Errorf("unexpected header %q", fields)
	}
	for i, f := range fields {
		if i == 0 {
			f = strings.TrimPrefix(f, byteOrderMark)
		}
		if !strings.EqualFold(strings.TrimSpace(f), inputHeader[i]) {
			return fmt.Errorf("unexpected header %q", fields)
		}
	}
	return nil
}

func parseRecord(fields []string) (ledger.Record, error) {
	if len(fields) < 3 || len(fields) > 4 {
		return ledger.Record{}, fmt.Errorf("expected 3 or 4 fields, got %d", len(fields))
	}

	kind, err := ledger.ParseKind(fields[0])
	if err != nil {
		return ledger.Record{}, err
	}
	client, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 32)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("invalid client %q: %w", fields[1], err)
	}
	tx, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return ledger.Record{}, fmt.Errorf("invalid tx %q: %w", fields[2], err)
	}

	rec := ledger.Record{
		Kind:   kind,
		Client: account.ClientID(client),
		Tx:     ledger.TxID(tx),
	}

	if len(fields) == 4 {
		if raw := strings.TrimSpace(fields[3]); raw != "" {
			amount, err := parseAmount(raw)
			if err != nil {
				return ledger.Record{}, fmt.Errorf("invalid amount %q: %w", fields[3], err)
			}
			rec.Amount = &amount
		}
	}
	return rec, nil
}

// parseAmount accepts plain decimal notation only. Exponents are refused so a short
// field cannot expand into an arbitrarily large coefficient.
func parseAmount(raw string) (decimal.Decimal, error) {
	if strings.ContainsAny(raw, "eE") {
		return decimal.Decimal{}, errors.New("exponent notation not allowed")
	}
	return decimal.NewFromString(raw)
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
