package records

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/congo-pay/ledger/internal/ledger"
)

func decodeAll(t *testing.T, input string) ([]ledger.Record, []*RowError) {
	t.Helper()
	dec := NewDecoder(strings.NewReader(input))
	var recs []ledger.Record
	var rowErrs []*RowError
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return recs, rowErrs
		}
		if err != nil {
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		recs = append(recs, rec)
	}
}

func TestDecoderReadsPaddedRows(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"withdrawal,2,5,3.2500\n" +
		"dispute, 1, 1\n" +
		"resolve, 1, 1,\n"

	recs, rowErrs := decodeAll(t, input)
	if len(rowErrs) != 0 {
		t.Fatalf("expected no row errors, got %v", rowErrs)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}

	if recs[0].Kind != ledger.KindDeposit || recs[0].Client != 1 || recs[0].Tx != 1 {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[0].Amount == nil || recs[0].Amount.String() != "1" {
		t.Fatalf("expected amount 1, got %v", recs[0].Amount)
	}
	if recs[1].Kind != ledger.KindWithdrawal || recs[1].Client != 2 || recs[1].Tx != 5 {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
	if recs[1].Amount == nil || recs[1].Amount.String() != "3.25" {
		t.Fatalf("expected amount 3.25, got %v", recs[1].Amount)
	}
	if recs[2].Kind != ledger.KindDispute || recs[2].Amount != nil {
		t.Fatalf("expected dispute without amount, got %+v", recs[2])
	}
	if recs[3].Kind != ledger.KindResolve || recs[3].Amount != nil {
		t.Fatalf("expected resolve with empty amount treated as absent, got %+v", recs[3])
	}
}

func TestDecoderSkipsMalformedRows(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"refund,1,1,1\n" +
		"deposit,x,2,1\n" +
		"deposit,1,3,abc\n" +
		"deposit,1,99999999999,1\n" +
		"deposit,1,4,2\n" +
		"deposit,1,5,2,extra\n" +
		"deposit,1,6\"x,2\n" +
		"deposit,3,7,0.5\n"

	recs, rowErrs := decodeAll(t, input)
	if len(recs) != 2 {
		t.Fatalf("expected 2 good records, got %d: %+v", len(recs), recs)
	}
	if recs[0].Tx != 4 || recs[1].Tx != 7 {
		t.Fatalf("unexpected records: %+v", recs)
	}

	wantLines := []int{2, 3, 4, 5, 7, 8}
	if len(rowErrs) != len(wantLines) {
		t.Fatalf("expected %d row errors, got %d: %v", len(wantLines), len(rowErrs), rowErrs)
	}
	for i, line := range wantLines {
		if rowErrs[i].Line != line {
			t.Fatalf("row error %d: expected line %d, got %d (%v)", i, line, rowErrs[i].Line, rowErrs[i])
		}
		if !errors.Is(rowErrs[i], ErrMalformedRow) {
			t.Fatalf("row error %d does not wrap ErrMalformedRow", i)
		}
	}
	if !errors.Is(rowErrs[0], ledger.ErrUnknownKind) {
		t.Fatalf("expected unknown kind, got %v", rowErrs[0])
	}
}

func TestDecoderEmptyInput(t *testing.T) {
	dec := NewDecoder(strings.NewReader(""))
	if _, err := dec.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestDecoderHeaderOnly(t *testing.T) {
	recs, rowErrs := decodeAll(t, "type,client,tx,amount\n")
	if len(recs) != 0 || len(rowErrs) != 0 {
		t.Fatalf("expected nothing, got %v %v", recs, rowErrs)
	}
}

func TestDecoderRejectsUnexpectedHeader(t *testing.T) {
	dec := NewDecoder(strings.NewReader("kind,customer,id,value\ndeposit,1,1,1\n"))
	_, err := dec.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected header error, got %v", err)
	}
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		t.Fatalf("header error must be fatal, got row error %v", err)
	}
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	recs, rowErrs := decodeAll(t, "type,client,tx,amount\n\ndeposit,1,1,1\n , , \n")
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
}

func TestDecoderRejectsExponentAmounts(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,1e10000000\n" +
		"deposit,1,2,2E3\n" +
		"deposit,1,3,1.5\n"

	recs, rowErrs := decodeAll(t, input)
	if len(rowErrs) != 2 {
		t.Fatalf("expected 2 row errors, got %d: %v", len(rowErrs), rowErrs)
	}
	if rowErrs[0].Line != 2 || rowErrs[1].Line != 3 {
		t.Fatalf("unexpected lines: %d, %d", rowErrs[0].Line, rowErrs[1].Line)
	}
	if len(recs) != 1 || recs[0].Tx != 3 || recs[0].Amount.String() != "1.5" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestDecoderAcceptsByteOrderMark(t *testing.T) {
	recs, rowErrs := decodeAll(t, "\ufefftype,client,tx,amount\ndeposit,1,1,1\n")
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(recs) != 1 || recs[0].Kind != ledger.KindDeposit {
		t.Fatalf("unexpected records: %+v", recs)
	}
}
