package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TaxBracket is one row of a jurisdiction's bracket table in the CRA
// rate-minus-constant form: annual tax at income A within the bracket is
// Rate*A - Constant. Constants are pre-computed so the function is continuous
// at every threshold.
type TaxBracket struct {
	Threshold decimal.Decimal `yaml:"threshold" json:"threshold"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
	Constant  decimal.Decimal `yaml:"constant" json:"constant"`
}

// BuildBracketTable derives the cumulative constants for ascending
// (threshold, rate) pairs: K(i) = K(i-1) + (R(i)-R(i-1))*threshold(i).
// The first entry must have threshold zero.
func BuildBracketTable(thresholds []decimal.Decimal, rates []decimal.Decimal) ([]TaxBracket, error) {
	if len(thresholds) == 0 || len(thresholds) != len(rates) {
		return nil, fmt.Errorf("bracket table requires matching non-empty threshold and rate lists")
	}
	if !thresholds[0].IsZero() {
		return nil, fmt.Errorf("first bracket threshold must be zero, got %s", thresholds[0])
	}
	brackets := make([]TaxBracket, len(thresholds))
	constant := decimal.Zero
	for i := range thresholds {
		if i > 0 {
			if thresholds[i].LessThanOrEqual(thresholds[i-1]) {
				return nil, fmt.Errorf("bracket thresholds must be strictly ascending at index %d", i)
			}
			constant = constant.Add(rates[i].Sub(rates[i-1]).Mul(thresholds[i]))
		}
		brackets[i] = TaxBracket{
			Threshold: thresholds[i],
			Rate:      rates[i],
			Constant:  RoundCents(constant),
		}
	}
	return brackets, nil
}

// CPPParams holds the Canada Pension Plan parameters for one tax year.
type CPPParams struct {
	BasicExemption            decimal.Decimal `yaml:"basic_exemption" json:"basic_exemption"`
	YMPE                      decimal.Decimal `yaml:"ympe" json:"ympe"`
	YAMPE                     decimal.Decimal `yaml:"yampe" json:"yampe"`
	BaseRate                  decimal.Decimal `yaml:"base_rate" json:"base_rate"`
	AdditionalRate            decimal.Decimal `yaml:"additional_rate" json:"additional_rate"`
	MaxBaseContribution       decimal.Decimal `yaml:"max_base_contribution" json:"max_base_contribution"`
	MaxAdditionalContribution decimal.Decimal `yaml:"max_additional_contribution" json:"max_additional_contribution"`
	// EnhancementRate is the first-additional-contribution portion of the
	// base rate (1%); only base*(EnhancementRate/BaseRate) plus CPP2 is
	// deductible from taxable income.
	EnhancementRate decimal.Decimal `yaml:"enhancement_rate" json:"enhancement_rate"`
	// CreditRate is the pre-enhancement rate (4.95%); the K2 credit applies
	// only to base*(CreditRate/BaseRate).
	CreditRate decimal.Decimal `yaml:"credit_rate" json:"credit_rate"`
}

// EnhancementRatio returns EnhancementRate/BaseRate (0.01/0.0595).
func (p CPPParams) EnhancementRatio() decimal.Decimal {
	return p.EnhancementRate.Div(p.BaseRate)
}

// CreditRatio returns CreditRate/BaseRate (0.0495/0.0595).
func (p CPPParams) CreditRatio() decimal.Decimal {
	return p.CreditRate.Div(p.BaseRate)
}

// ProratedMaxBase scales the annual base maximum by pensionable months.
func (p CPPParams) ProratedMaxBase(months int) decimal.Decimal {
	if months >= 12 || months < 1 {
		return p.MaxBaseContribution
	}
	return RoundCents(p.MaxBaseContribution.Mul(decimal.NewFromInt(int64(months))).Div(decimal.NewFromInt(12)))
}

// EIParams holds the Employment Insurance parameters for one tax year.
type EIParams struct {
	EmployeeRate         decimal.Decimal `yaml:"employee_rate" json:"employee_rate"`
	MaxInsurableEarnings decimal.Decimal `yaml:"max_insurable_earnings" json:"max_insurable_earnings"`
	MaxEmployeePremium   decimal.Decimal `yaml:"max_employee_premium" json:"max_employee_premium"`
	EmployerMultiplier   decimal.Decimal `yaml:"employer_multiplier" json:"employer_multiplier"`
}

// SurtaxTier is one tier of a provincial surtax: Rate applied to the basic
// tax in excess of Threshold.
type SurtaxTier struct {
	Threshold decimal.Decimal `yaml:"threshold" json:"threshold"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
}

// HealthPremiumStep is one step of an income-bracket health premium. Within
// [IncomeFloor, next floor) the premium is Base + Rate*(income-IncomeFloor),
// capped at Cap.
type HealthPremiumStep struct {
	IncomeFloor decimal.Decimal `yaml:"income_floor" json:"income_floor"`
	Base        decimal.Decimal `yaml:"base" json:"base"`
	Rate        decimal.Decimal `yaml:"rate" json:"rate"`
	Cap         decimal.Decimal `yaml:"cap" json:"cap"`
}

// TaxReductionConfig is a low-income tax reduction: the full Amount below
// Threshold, phased out linearly at PhaseOutRate on income above it.
type TaxReductionConfig struct {
	Amount       decimal.Decimal `yaml:"amount" json:"amount"`
	Threshold    decimal.Decimal `yaml:"threshold" json:"threshold"`
	PhaseOutRate decimal.Decimal `yaml:"phase_out_rate" json:"phase_out_rate"`
}

// SupplementalCreditConfig is the K5P-style credit: when K1P+K2P exceeds
// Threshold, an extra (K1P+K2P-Threshold)*Factor is credited.
type SupplementalCreditConfig struct {
	Threshold decimal.Decimal `yaml:"threshold" json:"threshold"`
	Factor    decimal.Decimal `yaml:"factor" json:"factor"`
}

// DynamicBPAConfig is an income-tested basic personal amount: MaxAmount up to
// PhaseOutStart, declining linearly to MinAmount at PhaseOutEnd.
type DynamicBPAConfig struct {
	MaxAmount     decimal.Decimal `yaml:"max_amount" json:"max_amount"`
	MinAmount     decimal.Decimal `yaml:"min_amount" json:"min_amount"`
	PhaseOutStart decimal.Decimal `yaml:"phase_out_start" json:"phase_out_start"`
	PhaseOutEnd   decimal.Decimal `yaml:"phase_out_end" json:"phase_out_end"`
}

// Amount returns the BPA for an annual taxable income.
func (d DynamicBPAConfig) Amount(income decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(d.PhaseOutStart) {
		return d.MaxAmount
	}
	if income.GreaterThanOrEqual(d.PhaseOutEnd) {
		return d.MinAmount
	}
	span := d.PhaseOutEnd.Sub(d.PhaseOutStart)
	excess := income.Sub(d.PhaseOutStart)
	return RoundCents(d.MaxAmount.Sub(d.MaxAmount.Sub(d.MinAmount).Mul(excess).Div(span)))
}

// ProvinceFeatures carries the jurisdiction-specific adjustments a province
// applies on top of the shared annualized method. Nil/zero fields mean the
// feature does not apply.
type ProvinceFeatures struct {
	Surtax             []SurtaxTier              `yaml:"surtax" json:"surtax"`
	HealthPremium      []HealthPremiumStep       `yaml:"health_premium" json:"health_premium"`
	TaxReduction       *TaxReductionConfig       `yaml:"tax_reduction" json:"tax_reduction"`
	SupplementalCredit *SupplementalCreditConfig `yaml:"supplemental_credit" json:"supplemental_credit"`
	DynamicBPA         *DynamicBPAConfig         `yaml:"dynamic_bpa" json:"dynamic_bpa"`
	// EmploymentCreditCap enables a provincial K4P mirroring the federal
	// employment credit; zero means the province has none.
	EmploymentCreditCap decimal.Decimal `yaml:"employment_credit_cap" json:"employment_credit_cap"`
}

// JurisdictionConfig is one edition of a jurisdiction's tax rules. A
// jurisdiction that changes figures mid-year publishes several editions in
// the same tax year, selected by pay date.
type JurisdictionConfig struct {
	Code          string          `yaml:"code" json:"code"`
	Name          string          `yaml:"name" json:"name"`
	TaxYear       int             `yaml:"tax_year" json:"tax_year"`
	EffectiveFrom time.Time       `yaml:"effective_from" json:"effective_from"`
	Brackets      []TaxBracket    `yaml:"brackets" json:"brackets"`
	BPA           decimal.Decimal `yaml:"bpa" json:"bpa"`
	// EmploymentCreditCap is the federal Canada employment amount cap; for
	// provinces it lives in Features.
	EmploymentCreditCap decimal.Decimal  `yaml:"employment_credit_cap" json:"employment_credit_cap"`
	Features            ProvinceFeatures `yaml:"features" json:"features"`
}

// LowestRate returns the bottom-bracket rate used for every credit component.
func (jc *JurisdictionConfig) LowestRate() decimal.Decimal {
	return jc.Brackets[0].Rate
}

// TaxYearConfig is the full statutory parameter set for one tax year.
type TaxYearConfig struct {
	Year      int                             `yaml:"year" json:"year"`
	CPP       CPPParams                       `yaml:"cpp" json:"cpp"`
	EI        EIParams                        `yaml:"ei" json:"ei"`
	Federal   []*JurisdictionConfig           `yaml:"federal" json:"federal"`
	Provinces map[string][]*JurisdictionConfig `yaml:"provinces" json:"provinces"`
}

// selectEdition returns the latest edition effective on or before payDate,
// falling back to the earliest edition for dates before all of them.
func selectEdition(editions []*JurisdictionConfig, payDate time.Time) *JurisdictionConfig {
	if len(editions) == 0 {
		return nil
	}
	sorted := make([]*JurisdictionConfig, len(editions))
	copy(sorted, editions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	selected := sorted[0]
	for _, ed := range sorted[1:] {
		if !ed.EffectiveFrom.After(payDate) {
			selected = ed
		}
	}
	return selected
}

// FederalEdition selects the federal rules in force on payDate.
func (c *TaxYearConfig) FederalEdition(payDate time.Time) (*JurisdictionConfig, error) {
	ed := selectEdition(c.Federal, payDate)
	if ed == nil {
		return nil, fmt.Errorf("tax year %d has no federal configuration", c.Year)
	}
	return ed, nil
}

// ProvinceEdition selects a province's rules in force on payDate.
func (c *TaxYearConfig) ProvinceEdition(code string, payDate time.Time) (*JurisdictionConfig, error) {
	editions, ok := c.Provinces[code]
	if !ok {
		return nil, fmt.Errorf("unknown jurisdiction %q for tax year %d", code, c.Year)
	}
	ed := selectEdition(editions, payDate)
	if ed == nil {
		return nil, fmt.Errorf("jurisdiction %q has no editions for tax year %d", code, c.Year)
	}
	return ed, nil
}
