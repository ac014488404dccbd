package accounts

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/model"
)

var validate = validator.New()

// ValidationError describes a single invalid account field.
type ValidationError struct {
	AccountID   int
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("account %d [%s]: %s", e.AccountID, e.Field, e.Description)
}

// Is matches errs.ErrConfiguration.
func (e ValidationError) Is(target error) bool {
	return target == errs.ErrConfiguration
}

// ValidateAccount checks field formats and the root/parent shape of one account.
// Cross-account references are checked when the tree is built.
func ValidateAccount(a model.Account) []ValidationError {
	var verrs []ValidationError

	if err := validate.Struct(a); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []ValidationError{{AccountID: a.ID, Field: "account", Description: err.Error()}}
		}
		for _, fe := range fieldErrs {
			verrs = append(verrs, ValidationError{
				AccountID:   a.ID,
				Field:       fe.Field(),
				Description: fmt.Sprintf("failed %q check (value %v)", fe.Tag(), fe.Value()),
			})
		}
	}

	if a.IsRoot() {
		if a.ParentID != 0 {
			verrs = append(verrs, ValidationError{AccountID: a.ID, Field: "ParentID", Description: "root account can not have a parent"})
		}
	} else {
		if a.RootID == 0 {
			verrs = append(verrs, ValidationError{AccountID: a.ID, Field: "RootID", Description: "required for non-root accounts"})
		}
		if a.ParentID == 0 {
			verrs = append(verrs, ValidationError{AccountID: a.ID, Field: "ParentID", Description: "required for non-root accounts"})
		}
		if a.Mandatory {
			verrs = append(verrs, ValidationError{AccountID: a.ID, Field: "Mandatory", Description: "only root accounts can be mandatory"})
		}
	}
	return verrs
}

// ValidateAccounts validates every account in order.
func ValidateAccounts(accounts []model.Account) []ValidationError {
	var verrs []ValidationError
	for _, a := range accounts {
		verrs = append(verrs, ValidateAccount(a)...)
	}
	return verrs
}
