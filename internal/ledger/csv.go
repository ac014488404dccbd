package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/analytic/internal/model"
)

// Header is the CSV header for analytic-lines.csv.
const Header = "line_id,date,account_id,debit,credit,currency,move_line,description"

const (
	numFields  = 8
	dateFormat = "2006-01-02"
	colID      = 0
	colDate    = 1
	colAcctID  = 2
	colDebit   = 3
	colCredit  = 4
	colCurr    = 5
	colMove    = 6
	colDesc    = 7
)

// ReadLines reads all lines from an analytic-lines.csv reader.
func ReadLines(r io.Reader) ([]model.LedgerLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading lines CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var lines []model.LedgerLine
	for i, rec := range records[1:] {
		line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLines writes lines to an analytic-lines.csv writer (including header).
func WriteLines(w io.Writer, lines []model.LedgerLine) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, line := range lines {
		if err := cw.Write(MarshalLine(line)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendLines writes rows without a header, for appending to an existing file.
func AppendLines(w io.Writer, lines []model.LedgerLine) error {
	cw := csv.NewWriter(w)
	for i, line := range lines {
		if err := cw.Write(MarshalLine(line)); err != nil {
			return fmt.Errorf("writing line %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts a LedgerLine to a CSV row.
func MarshalLine(line model.LedgerLine) []string {
	row := make([]string, numFields)
	row[colID] = line.ID
	row[colDate] = line.Date.Format(dateFormat)
	row[colAcctID] = strconv.Itoa(line.AccountID)
	if !line.Debit.IsZero() {
		row[colDebit] = line.Debit.String()
	}
	if !line.Credit.IsZero() {
		row[colCredit] = line.Credit.String()
	}
	row[colCurr] = line.Currency
	row[colMove] = line.MoveLine
	row[colDesc] = line.Description
	return row
}

// UnmarshalLine converts a CSV row to a LedgerLine.
func UnmarshalLine(record []string) (model.LedgerLine, error) {
	if len(record) != numFields {
		return model.LedgerLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.LedgerLine{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	accountID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.LedgerLine{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	var debit, credit decimal.Decimal
	if record[colDebit] != "" {
		debit, err = decimal.NewFromString(record[colDebit])
		if err != nil {
			return model.LedgerLine{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}
	if record[colCredit] != "" {
		credit, err = decimal.NewFromString(record[colCredit])
		if err != nil {
			return model.LedgerLine{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}

	return model.LedgerLine{
		ID:          record[colID],
		Date:        date,
		AccountID:   accountID,
		Debit:       debit,
		Credit:      credit,
		Currency:    strings.ToUpper(record[colCurr]),
		MoveLine:    record[colMove],
		Description: record[colDesc],
	}, nil
}
