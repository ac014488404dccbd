package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/analytic/internal/model"
)

const (
	numFields      = 13
	colID          = 0
	colCode        = 1
	colName        = 2
	colType        = 3
	colRoot        = 4
	colParent      = 5
	colCurrency    = 6
	colDisplay     = 7
	colActive      = 8
	colMandatory   = 9
	colState       = 10
	colCompany     = 11
	colNote        = 12
	chartHeaderRow = "account_id,code,name,type,root_id,parent_id,currency,display_balance,active,mandatory,state,company,note"
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(chartHeaderRow, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(acct.ID)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	if acct.RootID != 0 {
		row[colRoot] = strconv.Itoa(acct.RootID)
	}
	if acct.ParentID != 0 {
		row[colParent] = strconv.Itoa(acct.ParentID)
	}
	row[colCurrency] = acct.Currency
	row[colDisplay] = string(acct.DisplayBalance)
	row[colActive] = strconv.FormatBool(acct.Active)
	row[colMandatory] = strconv.FormatBool(acct.Mandatory)
	row[colState] = string(acct.State)
	row[colCompany] = acct.Company
	row[colNote] = acct.Note
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	rootID, err := optionalID(record[colRoot])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing root_id %q: %w", record[colRoot], err)
	}
	parentID, err := optionalID(record[colParent])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing parent_id %q: %w", record[colParent], err)
	}

	active, err := optionalBool(record[colActive], true)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing active %q: %w", record[colActive], err)
	}
	mandatory, err := optionalBool(record[colMandatory], false)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing mandatory %q: %w", record[colMandatory], err)
	}

	return model.Account{
		ID:             id,
		Code:           record[colCode],
		Name:           record[colName],
		Type:           model.AccountType(record[colType]),
		RootID:         rootID,
		ParentID:       parentID,
		Currency:       strings.ToUpper(record[colCurrency]),
		DisplayBalance: model.DisplayBalance(record[colDisplay]),
		Active:         active,
		Mandatory:      mandatory,
		State:          model.AccountState(record[colState]),
		Company:        record[colCompany],
		Note:           record[colNote],
	}, nil
}

func optionalID(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func optionalBool(s string, def bool) (bool, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseBool(s)
}
