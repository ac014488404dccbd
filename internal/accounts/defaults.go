package accounts

import "github.com/cleared-dev/analytic/internal/model"

// Defaults carries the company context new accounts are created under.
type Defaults struct {
	Company  string
	Currency string
}

// New returns an account with the default field values: active, normal,
// draft, displayed credit minus debit, in the company currency.
func (d Defaults) New(id int, name string) model.Account {
	return model.Account{
		ID:             id,
		Name:           name,
		Active:         true,
		Company:        d.Company,
		Currency:       d.Currency,
		Type:           model.AccountTypeNormal,
		State:          model.StateDraft,
		DisplayBalance: model.CreditMinusDebit,
	}
}

// DefaultChart returns a starter chart: a mandatory projects root and an
// optional departments root, both in the company currency.
func DefaultChart(d Defaults) []model.Account {
	root := func(id int, code, name string, mandatory bool) model.Account {
		a := d.New(id, name)
		a.Code = code
		a.Type = model.AccountTypeRoot
		a.State = model.StateOpened
		a.Mandatory = mandatory
		return a
	}
	child := func(id int, code, name string, typ model.AccountType, rootID, parentID int) model.Account {
		a := d.New(id, name)
		a.Code = code
		a.Type = typ
		a.RootID = rootID
		a.ParentID = parentID
		a.State = model.StateOpened
		return a
	}

	return []model.Account{
		root(1, "PRJ", "Projects", true),
		child(2, "PRJ-INT", "Internal Projects", model.AccountTypeView, 1, 1),
		child(3, "PRJ-INT-01", "Tooling", model.AccountTypeNormal, 1, 2),
		child(4, "PRJ-INT-02", "Training", model.AccountTypeNormal, 1, 2),
		child(5, "PRJ-CLI", "Client Projects", model.AccountTypeNormal, 1, 1),
		root(10, "DEP", "Departments", false),
		child(11, "DEP-ADM", "Administration", model.AccountTypeNormal, 10, 10),
		child(12, "DEP-SAL", "Sales", model.AccountTypeNormal, 10, 10),
		child(13, "DEP-RND", "Research", model.AccountTypeNormal, 10, 10),
	}
}
