package model

// AccountType classifies nodes of an analytic chart.
type AccountType string

const (
	AccountTypeRoot   AccountType = "root"
	AccountTypeView   AccountType = "view"
	AccountTypeNormal AccountType = "normal"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeRoot, AccountTypeView, AccountTypeNormal:
		return true
	}
	return false
}

// DisplayBalance selects the sign used when reporting a balance.
type DisplayBalance string

const (
	DebitMinusCredit DisplayBalance = "debit-credit"
	CreditMinusDebit DisplayBalance = "credit-debit"
)

// Valid reports whether d is a known display policy.
func (d DisplayBalance) Valid() bool {
	return d == DebitMinusCredit || d == CreditMinusDebit
}

// AccountState is the lifecycle state of an analytic account.
type AccountState string

const (
	StateDraft  AccountState = "draft"
	StateOpened AccountState = "opened"
	StateClosed AccountState = "closed"
)

// Account represents a row in chart-of-accounts.csv.
type Account struct {
	ID             int            `validate:"gt=0"`
	Code           string         `validate:"omitempty,max=64"`
	Name           string         `validate:"required"`
	Active         bool
	Company        string
	Currency       string         `validate:"required,len=3,uppercase"`
	Type           AccountType    `validate:"required,oneof=root view normal"`
	RootID         int            // 0 for root accounts
	ParentID       int            // 0 for root accounts
	State          AccountState   `validate:"omitempty,oneof=draft opened closed"`
	DisplayBalance DisplayBalance `validate:"required,oneof=debit-credit credit-debit"`
	Mandatory      bool           // meaningful on root accounts only
	Note           string
}

// IsRoot reports whether the account is a top-level root.
func (a Account) IsRoot() bool {
	return a.Type == AccountTypeRoot
}

// Root returns the id of the root this account belongs to.
// A root account is its own root.
func (a Account) Root() int {
	if a.IsRoot() {
		return a.ID
	}
	return a.RootID
}

// RecName returns "code - name", or just the name when no code is set.
func (a Account) RecName() string {
	if a.Code != "" {
		return a.Code + " - " + a.Name
	}
	return a.Name
}
