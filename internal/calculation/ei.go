package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

// EIInput is one period's insurable earnings with the YTD premium.
type EIInput struct {
	InsurableEarnings decimal.Decimal
	YTDPremium        decimal.Decimal
	Exempt            bool
}

// EIResult carries the period premiums and the capping intermediates.
type EIResult struct {
	Employee        decimal.Decimal
	Employer        decimal.Decimal
	UncappedPremium decimal.Decimal
	Room            decimal.Decimal
}

// EICalculator computes employee and employer EI premiums.
type EICalculator struct {
	Params domain.EIParams
}

// NewEICalculator creates an EI calculator.
func NewEICalculator(params domain.EIParams) *EICalculator {
	return &EICalculator{Params: params}
}

// Calculate computes the period premiums, capped at the remaining room under
// the annual employee maximum. The employer premium is always the employee
// premium times the employer multiplier.
func (c *EICalculator) Calculate(in EIInput) EIResult {
	if in.Exempt {
		return EIResult{}
	}
	res := EIResult{
		UncappedPremium: domain.RoundCents(domain.ClampZero(in.InsurableEarnings).Mul(c.Params.EmployeeRate)),
		Room:            domain.ClampZero(c.Params.MaxEmployeePremium.Sub(in.YTDPremium)),
	}
	res.Employee = decimal.Min(res.UncappedPremium, res.Room)
	res.Employer = domain.RoundCents(res.Employee.Mul(c.Params.EmployerMultiplier))
	return res
}
