// Package selection enforces the one-account-per-root rule on analytic
// account selections.
package selection

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/model"
)

// Actor identifies who is saving a selection.
type Actor struct {
	Name       string
	Privileged bool // system actors skip the mandatory-root rule
}

// ConflictError reports two selected accounts under the same root.
type ConflictError struct {
	RootID     int
	AccountIDs [2]int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("accounts %d and %d share root %d", e.AccountIDs[0], e.AccountIDs[1], e.RootID)
}

// Is matches errs.ErrSelectionConflict.
func (e *ConflictError) Is(target error) bool {
	return target == errs.ErrSelectionConflict
}

// MissingRootError reports a mandatory root with no selected account.
type MissingRootError struct {
	RootID int
	Name   string
}

func (e *MissingRootError) Error() string {
	return fmt.Sprintf("mandatory root %d (%s) has no selected account", e.RootID, e.Name)
}

// Is matches errs.ErrMissingMandatoryRoot.
func (e *MissingRootError) Is(target error) bool {
	return target == errs.ErrMissingMandatoryRoot
}

// Validate checks a selection against the root accounts of the chart.
// Rule 1: no two selected accounts may share a root.
// Rule 2: every mandatory root must be represented, unless actor is privileged.
func Validate(selected []model.Account, roots []model.Account, actor Actor) error {
	seen := make(map[int]int, len(selected))
	for _, a := range selected {
		root := a.Root()
		if other, dup := seen[root]; dup {
			return &ConflictError{RootID: root, AccountIDs: [2]int{other, a.ID}}
		}
		seen[root] = a.ID
	}

	if actor.Privileged {
		return nil
	}
	for _, r := range roots {
		if !r.IsRoot() || !r.Mandatory {
			continue
		}
		if _, ok := seen[r.ID]; !ok {
			return &MissingRootError{RootID: r.ID, Name: r.Name}
		}
	}
	return nil
}

// Valid is Validate reduced to pass/fail.
func Valid(selected []model.Account, roots []model.Account, actor Actor) bool {
	return Validate(selected, roots, actor) == nil
}

// IsRuleViolation reports whether err came from one of the selection rules.
func IsRuleViolation(err error) bool {
	return errors.Is(err, errs.ErrSelectionConflict) || errors.Is(err, errs.ErrMissingMandatoryRoot)
}
