package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cleared-dev/analytic/internal/model"
)

// SelectionHeader is the CSV header for selections.csv.
const SelectionHeader = "selection_id,account_ids"

// ReadSelections reads selections.csv. Account ids are separated by semicolons.
func ReadSelections(r io.Reader) ([]model.Selection, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading selections CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var sels []model.Selection
	for i, rec := range records[1:] {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing selection_id %q: %w", i+2, rec[0], err)
		}
		sel := model.Selection{ID: id}
		for _, part := range strings.Split(rec[1], ";") {
			if part == "" {
				continue
			}
			acctID, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("row %d: parsing account id %q: %w", i+2, part, err)
			}
			sel.AccountIDs = append(sel.AccountIDs, acctID)
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

// WriteSelections writes selections.csv.
func WriteSelections(w io.Writer, sels []model.Selection) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(SelectionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, sel := range sels {
		ids := make([]string, len(sel.AccountIDs))
		for j, id := range sel.AccountIDs {
			ids[j] = strconv.Itoa(id)
		}
		if err := cw.Write([]string{strconv.Itoa(sel.ID), strings.Join(ids, ";")}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

func selectionsPath(repoRoot string) string {
	return filepath.Join(repoRoot, "accounts", "selections.csv")
}

// LoadSelections reads accounts/selections.csv, returning nil if it does not exist.
func LoadSelections(repoRoot string) ([]model.Selection, error) {
	f, err := os.Open(selectionsPath(repoRoot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening selections: %w", err)
	}
	defer f.Close()
	return ReadSelections(f)
}

// SaveSelections writes accounts/selections.csv.
func SaveSelections(repoRoot string, sels []model.Selection) error {
	dir := filepath.Join(repoRoot, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}
	f, err := os.Create(selectionsPath(repoRoot))
	if err != nil {
		return fmt.Errorf("creating selections file: %w", err)
	}
	defer f.Close()

	if err := WriteSelections(f, sels); err != nil {
		return fmt.Errorf("writing selections: %w", err)
	}
	return nil
}
