package calculation

import (
	"github.com/maplepay/payroll/internal/domain"
)

// FederalTaxCalculator computes federal tax for one pay frequency and one
// federal edition using the annualized (Option 1) method.
type FederalTaxCalculator struct {
	Config  *domain.JurisdictionConfig
	CPP     domain.CPPParams
	EI      domain.EIParams
	Periods int
}

// NewFederalTaxCalculator creates a federal calculator bound to an edition
// and pay frequency.
func NewFederalTaxCalculator(cfg *domain.JurisdictionConfig, cpp domain.CPPParams, ei domain.EIParams, periods int) *FederalTaxCalculator {
	return &FederalTaxCalculator{Config: cfg, CPP: cpp, EI: ei, Periods: periods}
}

// Calculate computes the period's federal tax from per-period values.
func (f *FederalTaxCalculator) Calculate(in TaxPeriodInput) TaxResult {
	a := annualTaxableIncome(in, f.Periods)
	cppCredit, eiCredit := annualizeContributions(in.CPP.Base, in.EIPremium, f.Periods, in.PensionableMonths, f.CPP, f.EI)
	return f.AnnualTax(AnnualTaxInput{
		AnnualTaxableIncome: a,
		ClaimAmount:         in.ClaimAmount,
		OtherCredits:        in.OtherCredits,
		AnnualCPPCredit:     cppCredit,
		AnnualEICredit:      eiCredit,
	})
}

// AnnualTax computes federal tax for a fully annualized scenario and divides
// it back to the period.
func (f *FederalTaxCalculator) AnnualTax(in AnnualTaxInput) TaxResult {
	a := domain.ClampZero(in.AnnualTaxableIncome)
	bracket := ResolveBracket(a, f.Config.Brackets)
	lowest := f.Config.LowestRate()

	k1 := k1Credit(lowest, in.ClaimAmount)
	k2 := k2Credit(lowest, in, f.CPP)
	k3 := in.OtherCredits
	k4 := k4Credit(lowest, a, f.Config.EmploymentCreditCap)

	basic := bracket.Rate.Mul(a).
		Sub(bracket.Constant).
		Sub(k1).
		Sub(k2).
		Sub(k3).
		Sub(k4)
	basic = domain.RoundCents(domain.ClampZero(basic))

	annual, period := periodTax(basic, f.Periods)
	return TaxResult{
		PeriodTax: period,
		AnnualTax: annual,
		Audit: domain.TaxAudit{
			AnnualTaxableIncome: a,
			BracketRate:         bracket.Rate,
			BracketConstant:     bracket.Constant,
			ClaimAmount:         in.ClaimAmount,
			K1:                  k1,
			K2:                  k2,
			K3:                  k3,
			K4:                  k4,
			BasicTax:            basic,
			AnnualTax:           annual,
			PeriodTax:           period,
		},
	}
}
