package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/analytic/internal/model"
)

func testDefaults() Defaults {
	return Defaults{Company: "Acme", Currency: "EUR"}
}

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: 1, Code: "PRJ", Name: "Projects", Type: model.AccountTypeRoot, Currency: "EUR", DisplayBalance: model.CreditMinusDebit, Active: true, Mandatory: true, State: model.StateOpened},
		{ID: 2, Code: "PRJ-01", Name: "Website, v2", Type: model.AccountTypeNormal, RootID: 1, ParentID: 1, Currency: "USD", DisplayBalance: model.DebitMinusCredit, Note: "multi\nline"},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts, got)
}

func TestParentAndRootIDs(t *testing.T) {
	accounts := []model.Account{
		{ID: 1, Name: "Root", Type: model.AccountTypeRoot, Currency: "EUR", DisplayBalance: model.DebitMinusCredit},
		{ID: 2, Name: "Child", Type: model.AccountTypeNormal, RootID: 1, ParentID: 1, Currency: "EUR", DisplayBalance: model.DebitMinusCredit},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))

	rows := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, rows, 3)
	assert.Equal(t, "1,,Root,root,,,EUR,debit-credit,false,false,,,", rows[1])

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, got[0].ParentID)
	assert.Equal(t, 0, got[0].RootID)
	assert.Equal(t, 1, got[1].ParentID)
	assert.Equal(t, 1, got[1].RootID)
}

func TestUnmarshalAccountDefaults(t *testing.T) {
	acct, err := UnmarshalAccount([]string{"7", "", "Misc", "normal", "1", "1", "usd", "credit-debit", "", "", "", "", ""})
	require.NoError(t, err)
	assert.True(t, acct.Active, "empty active column defaults to true")
	assert.False(t, acct.Mandatory)
	assert.Equal(t, "USD", acct.Currency)
}

func TestUnmarshalAccountErrors(t *testing.T) {
	base := func() []string {
		return []string{"7", "", "Misc", "normal", "1", "1", "USD", "credit-debit", "true", "false", "", "", ""}
	}
	tests := []struct {
		name string
		col  int
		val  string
	}{
		{"bad id", colID, "seven"},
		{"bad root", colRoot, "r"},
		{"bad parent", colParent, "p"},
		{"bad active", colActive, "maybe"},
		{"bad mandatory", colMandatory, "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base()
			rec[tt.col] = tt.val
			_, err := UnmarshalAccount(rec)
			assert.Error(t, err)
		})
	}

	_, err := UnmarshalAccount([]string{"1"})
	assert.Error(t, err)
}

func TestDefaultChartRoundTrip(t *testing.T) {
	// Write the default chart to CSV and read it back, verify nothing is lost.
	chart := DefaultChart(testDefaults())

	var buf bytes.Buffer
	err := WriteAccounts(&buf, chart)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
}

func TestSelectionsRoundTrip(t *testing.T) {
	sels := []model.Selection{
		{ID: 1, AccountIDs: []int{3, 11}},
		{ID: 2, AccountIDs: []int{5}},
		{ID: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSelections(&buf, sels))

	got, err := ReadSelections(&buf)
	require.NoError(t, err)
	assert.Equal(t, sels, got)
}

func TestReadSelectionsErrors(t *testing.T) {
	_, err := ReadSelections(strings.NewReader(SelectionHeader + "\nx,1\n"))
	assert.Error(t, err)

	_, err = ReadSelections(strings.NewReader(SelectionHeader + "\n1,1;y\n"))
	assert.Error(t, err)
}
