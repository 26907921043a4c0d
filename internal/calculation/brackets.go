// Package calculation implements the per-period statutory deduction
// formulas: CPP/CPP2 contributions, EI premiums, the annualized federal and
// provincial tax method, bonus tax, and the orchestrating payroll engine.
package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

// ResolveBracket selects the bracket whose threshold is the highest value at
// or below annualIncome: the bottom bracket for income below every threshold
// and the unbounded top bracket above them all. The table is validated
// non-empty and ascending at configuration load.
func ResolveBracket(annualIncome decimal.Decimal, table []domain.TaxBracket) domain.TaxBracket {
	selected := table[0]
	for _, b := range table[1:] {
		if b.Threshold.GreaterThan(annualIncome) {
			break
		}
		selected = b
	}
	return selected
}
