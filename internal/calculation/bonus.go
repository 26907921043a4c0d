package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

// BonusCalculator computes lump-sum bonus tax by the marginal (bonus)
// method: the difference between annual tax with and without the bonus,
// computed independently for the federal and provincial jurisdictions and
// clamped at zero.
type BonusCalculator struct {
	Federal    *FederalTaxCalculator
	Provincial *ProvincialTaxCalculator
	CPP        domain.CPPParams
	EI         domain.EIParams
	Periods    int
}

// NewBonusCalculator creates a bonus calculator over configured federal and
// provincial calculators for the same edition and pay frequency.
func NewBonusCalculator(fed *FederalTaxCalculator, prov *ProvincialTaxCalculator, cpp domain.CPPParams, ei domain.EIParams, periods int) *BonusCalculator {
	return &BonusCalculator{Federal: fed, Provincial: prov, CPP: cpp, EI: ei, Periods: periods}
}

// Calculate computes the bonus tax using the strategy the caller selected.
// The strategy is never inferred from which optional fields happen to be
// populated; a precise request missing any of its required per-period fields
// is an error.
func (b *BonusCalculator) Calculate(in domain.BonusInput) (*domain.BonusResult, error) {
	if in.BonusAmount.LessThanOrEqual(decimal.Zero) {
		return &domain.BonusResult{Strategy: in.Strategy}, nil
	}

	var with, without scenario
	switch in.Strategy {
	case domain.BonusStrategyPrecise:
		var err error
		with, without, err = b.preciseScenarios(in)
		if err != nil {
			return nil, err
		}
	case domain.BonusStrategyFallback:
		without = b.scenarioFromAnnualGross(in.AnnualizedGross)
		with = b.scenarioFromAnnualGross(in.AnnualizedGross.Add(in.BonusAmount))
	default:
		return nil, fmt.Errorf("bonus strategy must be %q or %q, got %q",
			domain.BonusStrategyPrecise, domain.BonusStrategyFallback, in.Strategy)
	}

	fedWith := b.Federal.AnnualTax(with.annualInput(in.FederalClaimAmount))
	fedWithout := b.Federal.AnnualTax(without.annualInput(in.FederalClaimAmount))
	provWith := b.Provincial.AnnualTax(with.annualInput(in.ProvincialClaimAmount))
	provWithout := b.Provincial.AnnualTax(without.annualInput(in.ProvincialClaimAmount))

	fedTax := domain.ClampZero(fedWith.AnnualTax.Sub(fedWithout.AnnualTax))
	provTax := domain.ClampZero(provWith.AnnualTax.Sub(provWithout.AnnualTax))
	total := fedTax.Add(provTax)

	return &domain.BonusResult{
		FederalTax:            fedTax,
		ProvincialTax:         provTax,
		TotalTax:              total,
		NetBonus:              in.BonusAmount.Sub(total),
		Strategy:              in.Strategy,
		AnnualTaxWithBonus:    fedWith.AnnualTax.Add(provWith.AnnualTax),
		AnnualTaxWithoutBonus: fedWithout.AnnualTax.Add(provWithout.AnnualTax),
	}, nil
}

// scenario is one annualized income picture with its capped contribution
// credits.
type scenario struct {
	annualIncome decimal.Decimal
	cppCredit    decimal.Decimal
	eiCredit     decimal.Decimal
}

func (s scenario) annualInput(claim decimal.Decimal) AnnualTaxInput {
	return AnnualTaxInput{
		AnnualTaxableIncome: s.annualIncome,
		ClaimAmount:         claim,
		AnnualCPPCredit:     s.cppCredit,
		AnnualEICredit:      s.eiCredit,
	}
}

// scenarioFromAnnualGross derives CPP, CPP2, EI and the enhancement
// deduction for an annual gross using the statutory annual formulas, for the
// fallback strategy.
func (b *BonusCalculator) scenarioFromAnnualGross(gross decimal.Decimal) scenario {
	gross = domain.ClampZero(gross)

	baseCPP := domain.RoundCents(domain.ClampZero(gross.Sub(b.CPP.BasicExemption)).Mul(b.CPP.BaseRate))
	baseCPP = decimal.Min(baseCPP, b.CPP.MaxBaseContribution)

	band := domain.ClampZero(decimal.Min(gross, b.CPP.YAMPE).Sub(b.CPP.YMPE))
	cpp2 := domain.RoundCents(band.Mul(b.CPP.AdditionalRate))
	cpp2 = decimal.Min(cpp2, b.CPP.MaxAdditionalContribution)

	ei := domain.RoundCents(decimal.Min(gross, b.EI.MaxInsurableEarnings).Mul(b.EI.EmployeeRate))
	ei = decimal.Min(ei, b.EI.MaxEmployeePremium)

	enhancement := domain.RoundCents(baseCPP.Mul(b.CPP.EnhancementRatio())).Add(cpp2)

	return scenario{
		annualIncome: domain.ClampZero(gross.Sub(enhancement)),
		cppCredit:    baseCPP,
		eiCredit:     ei,
	}
}

// preciseScenarios builds the with/without pictures from separately tracked
// regular and bonus-attributable per-period amounts.
func (b *BonusCalculator) preciseScenarios(in domain.BonusInput) (with, without scenario, err error) {
	required := map[string]*decimal.Decimal{
		"regular_gross_per_period":      in.RegularGrossPerPeriod,
		"total_cpp_per_period":          in.TotalCPPPerPeriod,
		"regular_cpp_per_period":        in.RegularCPPPerPeriod,
		"total_ei_per_period":           in.TotalEIPerPeriod,
		"regular_ei_per_period":         in.RegularEIPerPeriod,
		"total_deductions_per_period":   in.TotalDeductionsPerPeriod,
		"regular_deductions_per_period": in.RegularDeductionsPerPeriod,
	}
	for name, field := range required {
		if field == nil {
			return scenario{}, scenario{}, fmt.Errorf("precise bonus strategy requires %s", name)
		}
	}

	periods := decimal.NewFromInt(int64(b.Periods))

	regEnhancement := domain.RoundCents(in.RegularCPPPerPeriod.Mul(b.CPP.EnhancementRatio()))
	regNet := domain.RoundCents(domain.ClampZero(
		in.RegularGrossPerPeriod.Sub(*in.RegularDeductionsPerPeriod).Sub(regEnhancement)))
	withoutIncome := regNet.Mul(periods)

	bonusCPP := domain.ClampZero(in.TotalCPPPerPeriod.Sub(*in.RegularCPPPerPeriod))
	bonusEI := domain.ClampZero(in.TotalEIPerPeriod.Sub(*in.RegularEIPerPeriod))
	bonusDeductions := domain.ClampZero(in.TotalDeductionsPerPeriod.Sub(*in.RegularDeductionsPerPeriod))
	bonusEnhancement := domain.RoundCents(bonusCPP.Mul(b.CPP.EnhancementRatio()))

	withIncome := domain.ClampZero(withoutIncome.
		Add(in.BonusAmount).
		Sub(bonusDeductions).
		Sub(bonusEnhancement))

	regCPPCredit, regEICredit := annualizeContributions(
		*in.RegularCPPPerPeriod, *in.RegularEIPerPeriod, b.Periods, 12, b.CPP, b.EI)

	withCPPCredit := decimal.Min(regCPPCredit.Add(bonusCPP), b.CPP.MaxBaseContribution)
	withEICredit := decimal.Min(regEICredit.Add(bonusEI), b.EI.MaxEmployeePremium)

	without = scenario{annualIncome: withoutIncome, cppCredit: regCPPCredit, eiCredit: regEICredit}
	with = scenario{annualIncome: withIncome, cppCredit: withCPPCredit, eiCredit: withEICredit}
	return with, without, nil
}
