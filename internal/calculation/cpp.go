package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

// CPPInput is one period's pensionable earnings with the YTD state needed
// for annual-maximum capping.
type CPPInput struct {
	PensionableEarnings    decimal.Decimal
	YTDPensionableEarnings decimal.Decimal
	YTDBase                decimal.Decimal
	YTDAdditional          decimal.Decimal
	Exempt                 bool
	CPP2Exempt             bool
	// PensionableMonths prorates the annual base maximum (1-12; 0 or 12
	// means a full year).
	PensionableMonths int
}

// CPPResult carries the period contributions together with the intermediate
// values the audit trail records.
type CPPResult struct {
	Base       decimal.Decimal
	Additional decimal.Decimal
	Total      decimal.Decimal
	Employer   decimal.Decimal
	// EnhancementDeduction is the tax-deductible portion: the first
	// additional contribution share of base CPP plus all of CPP2.
	EnhancementDeduction decimal.Decimal

	ProratedMaxBase   decimal.Decimal
	BaseRoom          decimal.Decimal
	AdditionalRoom    decimal.Decimal
	UncappedBase      decimal.Decimal
	UncappedAdditional decimal.Decimal
}

// CPPCalculator computes base CPP and CPP2 for one pay frequency.
type CPPCalculator struct {
	Params  domain.CPPParams
	Periods int
}

// NewCPPCalculator creates a CPP calculator for a pay frequency.
func NewCPPCalculator(params domain.CPPParams, periods int) *CPPCalculator {
	return &CPPCalculator{Params: params, Periods: periods}
}

// Calculate computes the period's contributions. Earnings at or below the
// per-period exemption and YTD amounts at the (pro-rated) maximum produce
// zero; a period with partial room contributes exactly the remaining room.
func (c *CPPCalculator) Calculate(in CPPInput) CPPResult {
	if in.Exempt {
		return CPPResult{}
	}

	res := CPPResult{
		ProratedMaxBase: c.Params.ProratedMaxBase(in.PensionableMonths),
	}

	periodExemption := c.Params.BasicExemption.Div(decimal.NewFromInt(int64(c.Periods)))
	contributory := domain.ClampZero(in.PensionableEarnings.Sub(periodExemption))
	res.UncappedBase = domain.RoundCents(contributory.Mul(c.Params.BaseRate))
	res.BaseRoom = domain.ClampZero(res.ProratedMaxBase.Sub(in.YTDBase))
	res.Base = decimal.Min(res.UncappedBase, res.BaseRoom)

	if !in.CPP2Exempt {
		// CPP2 applies to the slice of this period's earnings that falls in
		// the YMPE-YAMPE band, located by YTD pensionable earnings.
		bandLow := decimal.Max(in.YTDPensionableEarnings, c.Params.YMPE)
		bandHigh := decimal.Min(in.YTDPensionableEarnings.Add(in.PensionableEarnings), c.Params.YAMPE)
		band := domain.ClampZero(bandHigh.Sub(bandLow))
		res.UncappedAdditional = domain.RoundCents(band.Mul(c.Params.AdditionalRate))
		res.AdditionalRoom = domain.ClampZero(c.Params.MaxAdditionalContribution.Sub(in.YTDAdditional))
		res.Additional = decimal.Min(res.UncappedAdditional, res.AdditionalRoom)
	}

	res.Total = res.Base.Add(res.Additional)
	// The employer matches the employee total; there is no independent
	// employer formula.
	res.Employer = res.Total
	res.EnhancementDeduction = domain.RoundCents(res.Base.Mul(c.Params.EnhancementRatio())).Add(res.Additional)
	return res
}
