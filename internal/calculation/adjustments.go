package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll/internal/domain"
)

// Adjuster is one jurisdiction-specific post-adjustment applied to the basic
// provincial tax before final rounding. Adding a jurisdiction means adding
// configuration, not editing a shared calculator.
type Adjuster interface {
	Name() string
	// Apply returns the adjusted annual tax given the tax so far and the
	// annual taxable income.
	Apply(tax, annualIncome decimal.Decimal) decimal.Decimal
}

// AdjustersFor builds the province's adjuster chain in application order:
// surtax on basic tax, then the low-income tax reduction, then the health
// premium.
func AdjustersFor(features domain.ProvinceFeatures) []Adjuster {
	var chain []Adjuster
	if len(features.Surtax) > 0 {
		chain = append(chain, surtaxAdjuster{tiers: features.Surtax})
	}
	if features.TaxReduction != nil {
		chain = append(chain, taxReductionAdjuster{cfg: *features.TaxReduction})
	}
	if len(features.HealthPremium) > 0 {
		chain = append(chain, healthPremiumAdjuster{steps: features.HealthPremium})
	}
	return chain
}

// surtaxAdjuster adds each tier's rate applied to the tax in excess of the
// tier threshold. Every tier references the pre-surtax amount, so a two-tier
// surtax is 20%*max(0,T-t1) + 36%*max(0,T-t2) and a single tier is a flat
// percentage above one threshold.
type surtaxAdjuster struct {
	tiers []domain.SurtaxTier
}

func (a surtaxAdjuster) Name() string { return "surtax" }

func (a surtaxAdjuster) Apply(tax, _ decimal.Decimal) decimal.Decimal {
	surtax := decimal.Zero
	for _, tier := range a.tiers {
		surtax = surtax.Add(tier.Rate.Mul(domain.ClampZero(tax.Sub(tier.Threshold))))
	}
	return tax.Add(domain.RoundCents(surtax))
}

// taxReductionAdjuster subtracts the full reduction below the low-income
// threshold, phased out linearly above it. The reduction never pushes the
// tax below zero.
type taxReductionAdjuster struct {
	cfg domain.TaxReductionConfig
}

func (a taxReductionAdjuster) Name() string { return "tax_reduction" }

func (a taxReductionAdjuster) Apply(tax, annualIncome decimal.Decimal) decimal.Decimal {
	phaseOut := a.cfg.PhaseOutRate.Mul(domain.ClampZero(annualIncome.Sub(a.cfg.Threshold)))
	reduction := domain.ClampZero(a.cfg.Amount.Sub(phaseOut))
	reduction = domain.RoundCents(decimal.Min(reduction, domain.ClampZero(tax)))
	return tax.Sub(reduction)
}

// healthPremiumAdjuster adds the stepped income-bracket premium: within a
// step the premium is base plus the step rate on income above the step
// floor, capped at the step maximum.
type healthPremiumAdjuster struct {
	steps []domain.HealthPremiumStep
}

func (a healthPremiumAdjuster) Name() string { return "health_premium" }

func (a healthPremiumAdjuster) Apply(tax, annualIncome decimal.Decimal) decimal.Decimal {
	return tax.Add(a.premium(annualIncome))
}

func (a healthPremiumAdjuster) premium(annualIncome decimal.Decimal) decimal.Decimal {
	step := a.steps[0]
	for _, s := range a.steps[1:] {
		if s.IncomeFloor.GreaterThan(annualIncome) {
			break
		}
		step = s
	}
	p := step.Base.Add(step.Rate.Mul(domain.ClampZero(annualIncome.Sub(step.IncomeFloor))))
	if step.Cap.GreaterThan(decimal.Zero) && p.GreaterThan(step.Cap) {
		p = step.Cap
	}
	return domain.RoundCents(p)
}
