package aggregate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/model"
)

// Kind selects which ledger column a credit/debit aggregation reads.
type Kind int

const (
	Credit Kind = iota + 1
	Debit
)

func (k Kind) String() string {
	switch k {
	case Credit:
		return "credit"
	case Debit:
		return "debit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is Credit or Debit.
func (k Kind) Valid() bool {
	return k == Credit || k == Debit
}

// ParseKind maps "credit" or "debit" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "credit":
		return Credit, nil
	case "debit":
		return Debit, nil
	}
	return 0, fmt.Errorf("aggregate kind %q: %w", s, errs.ErrInvalidArgument)
}

// Field reads one amount out of a grouped fact.
type Field func(model.Fact) decimal.Decimal

// Net reads debit minus credit.
func Net(f model.Fact) decimal.Decimal { return f.Net() }

func (k Kind) field() Field {
	if k == Credit {
		return func(f model.Fact) decimal.Decimal { return f.Credit }
	}
	return func(f model.Fact) decimal.Decimal { return f.Debit }
}
