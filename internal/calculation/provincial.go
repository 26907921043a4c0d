package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

// ProvincialTaxCalculator computes provincial/territorial tax for one pay
// frequency and one jurisdiction edition. It shares the annualized method
// with the federal calculator and adds the jurisdiction-specific credits and
// post-adjustments.
type ProvincialTaxCalculator struct {
	Config  *domain.JurisdictionConfig
	CPP     domain.CPPParams
	EI      domain.EIParams
	Periods int

	adjusters []Adjuster
}

// NewProvincialTaxCalculator creates a provincial calculator bound to an
// edition and pay frequency. The adjuster chain is built once from the
// edition's feature data.
func NewProvincialTaxCalculator(cfg *domain.JurisdictionConfig, cpp domain.CPPParams, ei domain.EIParams, periods int) *ProvincialTaxCalculator {
	return &ProvincialTaxCalculator{
		Config:    cfg,
		CPP:       cpp,
		EI:        ei,
		Periods:   periods,
		adjusters: AdjustersFor(cfg.Features),
	}
}

// Calculate computes the period's provincial tax from per-period values.
func (p *ProvincialTaxCalculator) Calculate(in TaxPeriodInput) TaxResult {
	a := annualTaxableIncome(in, p.Periods)
	cppCredit, eiCredit := annualizeContributions(in.CPP.Base, in.EIPremium, p.Periods, in.PensionableMonths, p.CPP, p.EI)
	return p.AnnualTax(AnnualTaxInput{
		AnnualTaxableIncome: a,
		ClaimAmount:         in.ClaimAmount,
		OtherCredits:        in.OtherCredits,
		AnnualCPPCredit:     cppCredit,
		AnnualEICredit:      eiCredit,
	})
}

// AnnualTax computes provincial tax for a fully annualized scenario and
// divides it back to the period.
func (p *ProvincialTaxCalculator) AnnualTax(in AnnualTaxInput) TaxResult {
	a := domain.ClampZero(in.AnnualTaxableIncome)
	bracket := ResolveBracket(a, p.Config.Brackets)
	lowest := p.Config.LowestRate()

	// Income-tested jurisdictions derive the BPA from annual taxable income
	// instead of the flat claim amount.
	claim := in.ClaimAmount
	if p.Config.Features.DynamicBPA != nil {
		claim = p.Config.Features.DynamicBPA.Amount(a)
	}

	k1 := k1Credit(lowest, claim)
	k2 := k2Credit(lowest, in, p.CPP)
	k3 := in.OtherCredits
	k4 := k4Credit(lowest, a, p.Config.Features.EmploymentCreditCap)

	// Supplemental credit when the combined personal and contribution
	// credits exceed the configured threshold. Editions make the
	// threshold/factor date-sensitive within a tax year.
	k5 := decimal.Zero
	if sc := p.Config.Features.SupplementalCredit; sc != nil {
		k5 = domain.RoundCents(sc.Factor.Mul(domain.ClampZero(k1.Add(k2).Sub(sc.Threshold))))
	}

	basic := bracket.Rate.Mul(a).
		Sub(bracket.Constant).
		Sub(k1).
		Sub(k2).
		Sub(k3).
		Sub(k4).
		Sub(k5)
	basic = domain.RoundCents(domain.ClampZero(basic))

	audit := domain.TaxAudit{
		AnnualTaxableIncome: a,
		BracketRate:         bracket.Rate,
		BracketConstant:     bracket.Constant,
		ClaimAmount:         claim,
		K1:                  k1,
		K2:                  k2,
		K3:                  k3,
		K4:                  k4,
		K5:                  k5,
		BasicTax:            basic,
	}

	adjusted := basic
	for _, adj := range p.adjusters {
		next := adj.Apply(adjusted, a)
		delta := next.Sub(adjusted)
		switch adj.Name() {
		case "surtax":
			audit.Surtax = delta
		case "tax_reduction":
			audit.TaxReduction = delta.Neg()
		case "health_premium":
			audit.HealthPremium = delta
		}
		adjusted = next
	}
	adjusted = domain.ClampZero(adjusted)

	annual, period := periodTax(adjusted, p.Periods)
	audit.AnnualTax = annual
	audit.PeriodTax = period
	return TaxResult{PeriodTax: period, AnnualTax: annual, Audit: audit}
}
