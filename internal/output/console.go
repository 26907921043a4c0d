// Package output renders calculation results for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

// FormatResult renders one calculation result as a console summary.
func FormatResult(r *domain.CalculationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Employee %s (%s), paid %s\n", r.EmployeeID, r.Jurisdiction, r.PayDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 52))
	line(&b, "Gross pay", r.GrossPay)
	line(&b, "CPP (base)", r.CPPBase)
	line(&b, "CPP (additional)", r.CPPAdditional)
	line(&b, "EI premium", r.EIEmployee)
	line(&b, "Federal tax", r.FederalTax)
	line(&b, "Provincial tax", r.ProvincialTax)
	line(&b, "Total deductions", r.TotalDeductions)
	line(&b, "Net pay", r.NetPay)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 52))
	line(&b, "Employer CPP", r.CPPEmployer)
	line(&b, "Employer EI", r.EIEmployer)
	line(&b, "Employer cost", r.EmployerCost)
	line(&b, "YTD gross", r.UpdatedYTD.Gross)
	line(&b, "YTD CPP", r.UpdatedYTD.CPPBase.Add(r.UpdatedYTD.CPPAdditional))
	line(&b, "YTD EI", r.UpdatedYTD.EI)

	return b.String()
}

// FormatBonusResult renders one bonus tax result.
func FormatBonusResult(r *domain.BonusResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonus tax (%s strategy)\n", r.Strategy)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 52))
	line(&b, "Federal tax", r.FederalTax)
	line(&b, "Provincial tax", r.ProvincialTax)
	line(&b, "Total tax", r.TotalTax)
	line(&b, "Net bonus", r.NetBonus)
	return b.String()
}

// FormatJSON renders any result as indented JSON.
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}

func line(b *strings.Builder, label string, amount decimal.Decimal) {
	fmt.Fprintf(b, "%-32s $%15s\n", label, amount.StringFixed(2))
}
