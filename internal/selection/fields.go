package selection

import (
	"fmt"

	"github.com/cleared-dev/analytic/internal/model"
)

// Chart is the read-only account lookup a Checker needs.
type Chart interface {
	Get(id int) (model.Account, bool)
	Roots() []model.Account
	Descendants(ids []int) []int
}

// Field is one selection slot: at most one account chosen under Root.
type Field struct {
	Name     string // analytic_account_<root id>
	Root     model.Account
	Required bool
	Choices  []model.Account // normal accounts of the root
}

// Fields returns one slot per root of the chart, in root order.
func Fields(chart Chart) []Field {
	roots := chart.Roots()
	fields := make([]Field, 0, len(roots))
	for _, r := range roots {
		f := Field{
			Name:     fmt.Sprintf("analytic_account_%d", r.ID),
			Root:     r,
			Required: r.Mandatory,
		}
		for _, id := range chart.Descendants([]int{r.ID}) {
			a, _ := chart.Get(id)
			if a.Type == model.AccountTypeNormal && a.Root() == r.ID {
				f.Choices = append(f.Choices, a)
			}
		}
		fields = append(fields, f)
	}
	return fields
}

// Checker validates stored selections against a chart snapshot.
type Checker struct {
	chart Chart
}

// NewChecker creates a Checker over chart.
func NewChecker(chart Chart) *Checker {
	return &Checker{chart: chart}
}

// Check resolves the selection's account ids and runs Validate.
func (c *Checker) Check(sel model.Selection, actor Actor) error {
	selected := make([]model.Account, 0, len(sel.AccountIDs))
	for _, id := range sel.AccountIDs {
		a, ok := c.chart.Get(id)
		if !ok {
			return fmt.Errorf("selection %d: unknown account %d", sel.ID, id)
		}
		selected = append(selected, a)
	}
	if err := Validate(selected, c.chart.Roots(), actor); err != nil {
		return fmt.Errorf("selection %d: %w", sel.ID, err)
	}
	return nil
}

// CheckAll validates every selection and returns the failures keyed by selection id.
func (c *Checker) CheckAll(sels []model.Selection, actor Actor) map[int]error {
	failures := make(map[int]error)
	for _, sel := range sels {
		if err := c.Check(sel, actor); err != nil {
			failures[sel.ID] = err
		}
	}
	return failures
}
