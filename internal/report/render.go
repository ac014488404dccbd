package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// DigitsFunc returns the number of decimal places shown for a currency.
type DigitsFunc func(code string) (int32, error)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
)

// Render formats the chart as a table. Amounts are shown with the digits of
// the account currency; nested accounts are indented by depth.
func (c *OpenChart) Render(digits DigitsFunc) (string, error) {
	rows := make([][]string, 0, len(c.Rows))
	for _, r := range c.Rows {
		d, err := digits(r.Account.Currency)
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{
			strings.Repeat("  ", r.Depth) + r.Name(),
			string(r.Account.Type),
			r.Account.Currency,
			fixed(r.Debit, d),
			fixed(r.Credit, d),
			fixed(r.Balance, d),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ACCOUNT", "TYPE", "CUR", "DEBIT", "CREDIT", "BALANCE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 3:
				return amountStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString("Open chart " + c.Period.String() + "\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String(), nil
}

func fixed(d decimal.Decimal, digits int32) string {
	return d.StringFixed(digits)
}
