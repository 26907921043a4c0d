package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

// TaxPeriodInput is one period's inputs to a federal or provincial tax
// calculation, after CPP and EI have been computed.
type TaxPeriodInput struct {
	GrossPerPeriod   decimal.Decimal
	RRSPContribution decimal.Decimal
	UnionDues        decimal.Decimal

	CPP       CPPResult
	EIPremium decimal.Decimal

	ClaimAmount  decimal.Decimal
	OtherCredits decimal.Decimal

	PensionableMonths int
}

// AnnualTaxInput is one fully annualized scenario. The period calculators
// build it from per-period values; the bonus calculator builds it directly
// from annual gross.
type AnnualTaxInput struct {
	AnnualTaxableIncome decimal.Decimal
	ClaimAmount         decimal.Decimal
	OtherCredits        decimal.Decimal
	// AnnualCPPCredit and AnnualEICredit are the annualized contributions
	// already capped at their statutory maxima.
	AnnualCPPCredit decimal.Decimal
	AnnualEICredit  decimal.Decimal
}

// TaxResult is one jurisdiction's tax for the period, with the audit record
// of every intermediate value.
type TaxResult struct {
	PeriodTax decimal.Decimal
	AnnualTax decimal.Decimal
	Audit     domain.TaxAudit
}

// annualTaxableIncome annualizes the period's taxable income: periods times
// (gross minus pre-tax deductions minus the deductible CPP enhancement
// portion, which already includes CPP2), floored at zero. The per-period net
// is rounded to cents before multiplying.
func annualTaxableIncome(in TaxPeriodInput, periods int) decimal.Decimal {
	net := in.GrossPerPeriod.
		Sub(in.RRSPContribution).
		Sub(in.UnionDues).
		Sub(in.CPP.EnhancementDeduction)
	net = domain.RoundCents(domain.ClampZero(net))
	return net.Mul(decimal.NewFromInt(int64(periods)))
}

// annualizeContributions projects this period's CPP and EI to annual amounts
// for the K2 credit, capping each at its (pro-rated) annual maximum. When the
// unclipped projection overshoots the cap the final period only contributes
// partial room, so the effective period count drops by one.
func annualizeContributions(cppPerPeriod, eiPerPeriod decimal.Decimal, periods int, months int, cpp domain.CPPParams, ei domain.EIParams) (cppCredit, eiCredit decimal.Decimal) {
	p := decimal.NewFromInt(int64(periods))
	pLess := decimal.NewFromInt(int64(periods - 1))

	maxCPP := cpp.ProratedMaxBase(months)
	cppPeriods := p
	if cppPerPeriod.Mul(p).GreaterThan(maxCPP) {
		cppPeriods = pLess
	}
	cppCredit = decimal.Min(cppPerPeriod.Mul(cppPeriods), maxCPP)

	eiPeriods := p
	if eiPerPeriod.Mul(p).GreaterThan(ei.MaxEmployeePremium) {
		eiPeriods = pLess
	}
	eiCredit = decimal.Min(eiPerPeriod.Mul(eiPeriods), ei.MaxEmployeePremium)
	return cppCredit, eiCredit
}

// k2Credit computes the CPP/EI credit at the jurisdiction's lowest rate. The
// CPP component is credited only at the pre-enhancement rate.
func k2Credit(lowestRate decimal.Decimal, in AnnualTaxInput, cpp domain.CPPParams) decimal.Decimal {
	base := in.AnnualCPPCredit.Mul(cpp.CreditRatio()).Add(in.AnnualEICredit)
	return domain.RoundCents(lowestRate.Mul(base))
}

// k1Credit computes the personal credit at the lowest rate.
func k1Credit(lowestRate, claim decimal.Decimal) decimal.Decimal {
	return domain.RoundCents(lowestRate.Mul(claim))
}

// k4Credit computes the employment credit at the lowest rate, capped.
func k4Credit(lowestRate, annualIncome, cap decimal.Decimal) decimal.Decimal {
	if cap.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return domain.RoundCents(lowestRate.Mul(decimal.Min(annualIncome, cap)))
}

// periodTax applies the mandated rounding order: the adjusted annual tax is
// rounded to cents first, then divided by the pay-period count and rounded
// again. Reversing the order produces different cent-level results.
func periodTax(annualTax decimal.Decimal, periods int) (annual, period decimal.Decimal) {
	annual = domain.RoundCents(annualTax)
	period = domain.RoundCents(annual.Div(decimal.NewFromInt(int64(periods))))
	return annual, period
}
