package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Jurisdiction codes recognized by the engine. Quebec administers its own
// plan and is not supported.
const (
	JurisdictionFederal = "federal"
)

// EarningsBreakdown splits a pay period's gross earnings into the categories
// reported on a paystub. Holiday pay and holiday premium pay are supplied by
// an upstream subsystem and treated as opaque gross amounts here.
type EarningsBreakdown struct {
	Regular           decimal.Decimal `yaml:"regular" json:"regular"`
	Overtime          decimal.Decimal `yaml:"overtime" json:"overtime"`
	HolidayPay        decimal.Decimal `yaml:"holiday_pay" json:"holiday_pay"`
	HolidayPremiumPay decimal.Decimal `yaml:"holiday_premium_pay" json:"holiday_premium_pay"`
	VacationPay       decimal.Decimal `yaml:"vacation_pay" json:"vacation_pay"`
	Other             decimal.Decimal `yaml:"other" json:"other"`
}

// Total returns the period gross across all earnings categories.
func (e EarningsBreakdown) Total() decimal.Decimal {
	return e.Regular.
		Add(e.Overtime).
		Add(e.HolidayPay).
		Add(e.HolidayPremiumPay).
		Add(e.VacationPay).
		Add(e.Other)
}

// YearToDate holds the accumulators the external data layer must supply,
// already summed across the employee's prior periods in the tax year.
type YearToDate struct {
	Gross               decimal.Decimal `yaml:"gross" json:"gross"`
	PensionableEarnings decimal.Decimal `yaml:"pensionable_earnings" json:"pensionable_earnings"`
	InsurableEarnings   decimal.Decimal `yaml:"insurable_earnings" json:"insurable_earnings"`
	CPPBase             decimal.Decimal `yaml:"cpp_base" json:"cpp_base"`
	CPPAdditional       decimal.Decimal `yaml:"cpp_additional" json:"cpp_additional"`
	EI                  decimal.Decimal `yaml:"ei" json:"ei"`
}

// CalculationInput is one employee-period calculation request.
type CalculationInput struct {
	EmployeeID   string    `yaml:"employee_id" json:"employee_id"`
	Jurisdiction string    `yaml:"jurisdiction" json:"jurisdiction"`
	PayPeriods   int       `yaml:"pay_periods" json:"pay_periods"`
	PayDate      time.Time `yaml:"pay_date" json:"pay_date"`

	Earnings EarningsBreakdown `yaml:"earnings" json:"earnings"`

	// Pre-tax deductions reducing annual taxable income.
	RRSPContribution decimal.Decimal `yaml:"rrsp_contribution" json:"rrsp_contribution"`
	UnionDues        decimal.Decimal `yaml:"union_dues" json:"union_dues"`

	// TD1 claim amounts. The YTD variants carry the declarations in force
	// across the year; the bonus calculator annualizes against them when
	// supplied, falling back to the period claims.
	FederalClaimAmount       decimal.Decimal `yaml:"federal_claim_amount" json:"federal_claim_amount"`
	ProvincialClaimAmount    decimal.Decimal `yaml:"provincial_claim_amount" json:"provincial_claim_amount"`
	FederalClaimAmountYTD    decimal.Decimal `yaml:"federal_claim_amount_ytd" json:"federal_claim_amount_ytd"`
	ProvincialClaimAmountYTD decimal.Decimal `yaml:"provincial_claim_amount_ytd" json:"provincial_claim_amount_ytd"`

	// Annualized K3-style credits (medical, charitable and similar amounts
	// authorized for source withholding).
	OtherFederalCredits    decimal.Decimal `yaml:"other_federal_credits" json:"other_federal_credits"`
	OtherProvincialCredits decimal.Decimal `yaml:"other_provincial_credits" json:"other_provincial_credits"`

	YTD YearToDate `yaml:"ytd" json:"ytd"`

	CPPExempt  bool `yaml:"cpp_exempt" json:"cpp_exempt"`
	CPP2Exempt bool `yaml:"cpp2_exempt" json:"cpp2_exempt"`
	EIExempt   bool `yaml:"ei_exempt" json:"ei_exempt"`

	// PensionableMonths prorates the annual CPP maximum for partial-year
	// employment (1-12). Zero means a full year.
	PensionableMonths int `yaml:"pensionable_months" json:"pensionable_months"`
}

// BonusClaimAmounts returns the TD1 claim amounts the bonus calculator
// annualizes against: the YTD variants when supplied, otherwise the period
// claims.
func (in CalculationInput) BonusClaimAmounts() (federal, provincial decimal.Decimal) {
	federal = in.FederalClaimAmountYTD
	if federal.IsZero() {
		federal = in.FederalClaimAmount
	}
	provincial = in.ProvincialClaimAmountYTD
	if provincial.IsZero() {
		provincial = in.ProvincialClaimAmount
	}
	return federal, provincial
}

// EffectivePensionableMonths normalizes PensionableMonths to 1-12.
func (in CalculationInput) EffectivePensionableMonths() int {
	if in.PensionableMonths < 1 || in.PensionableMonths > 12 {
		return 12
	}
	return in.PensionableMonths
}

// CalculationResult is the fully-populated outcome of one employee-period
// calculation. All monetary fields are rounded to cents.
type CalculationResult struct {
	EmployeeID   string    `json:"employee_id"`
	Jurisdiction string    `json:"jurisdiction"`
	PayDate      time.Time `json:"pay_date"`

	GrossPay decimal.Decimal `json:"gross_pay"`

	CPPBase       decimal.Decimal `json:"cpp_base"`
	CPPAdditional decimal.Decimal `json:"cpp_additional"`
	CPPTotal      decimal.Decimal `json:"cpp_total"`
	CPPEmployer   decimal.Decimal `json:"cpp_employer"`

	EIEmployee decimal.Decimal `json:"ei_employee"`
	EIEmployer decimal.Decimal `json:"ei_employer"`

	FederalTax    decimal.Decimal `json:"federal_tax"`
	ProvincialTax decimal.Decimal `json:"provincial_tax"`

	TotalDeductions decimal.Decimal `json:"total_deductions"`
	EmployerCost    decimal.Decimal `json:"employer_cost"`
	NetPay          decimal.Decimal `json:"net_pay"`

	UpdatedYTD YearToDate `json:"updated_ytd"`

	Audit *AuditTrail `json:"audit,omitempty"`
}

// BonusStrategy selects how bonus tax is computed. The choice is made by the
// caller at the boundary, never inferred from which optional fields happen to
// be populated.
type BonusStrategy string

const (
	// BonusStrategyPrecise differences basic taxes built from separately
	// tracked regular and bonus-attributable per-period CPP/EI/deductions.
	// All seven per-period fields are required.
	BonusStrategyPrecise BonusStrategy = "precise"
	// BonusStrategyFallback derives CPP/CPP2/EI for the with- and
	// without-bonus scenarios from their annual gross using the statutory
	// formulas, then differences full annual taxes.
	BonusStrategyFallback BonusStrategy = "fallback"
)

// BonusInput is a lump-sum bonus tax request.
type BonusInput struct {
	Jurisdiction string          `yaml:"jurisdiction" json:"jurisdiction"`
	PayPeriods   int             `yaml:"pay_periods" json:"pay_periods"`
	PayDate      time.Time       `yaml:"pay_date" json:"pay_date"`
	Strategy     BonusStrategy   `yaml:"strategy" json:"strategy"`
	BonusAmount  decimal.Decimal `yaml:"bonus_amount" json:"bonus_amount"`

	FederalClaimAmount    decimal.Decimal `yaml:"federal_claim_amount" json:"federal_claim_amount"`
	ProvincialClaimAmount decimal.Decimal `yaml:"provincial_claim_amount" json:"provincial_claim_amount"`

	// Baseline annualized gross excluding the bonus. Used by the fallback
	// strategy.
	AnnualizedGross decimal.Decimal `yaml:"annualized_gross" json:"annualized_gross"`

	// Per-period fields required by the precise strategy. Total values
	// include the bonus-attributable share; regular values exclude it.
	RegularGrossPerPeriod      *decimal.Decimal `yaml:"regular_gross_per_period" json:"regular_gross_per_period"`
	TotalCPPPerPeriod          *decimal.Decimal `yaml:"total_cpp_per_period" json:"total_cpp_per_period"`
	RegularCPPPerPeriod        *decimal.Decimal `yaml:"regular_cpp_per_period" json:"regular_cpp_per_period"`
	TotalEIPerPeriod           *decimal.Decimal `yaml:"total_ei_per_period" json:"total_ei_per_period"`
	RegularEIPerPeriod         *decimal.Decimal `yaml:"regular_ei_per_period" json:"regular_ei_per_period"`
	TotalDeductionsPerPeriod   *decimal.Decimal `yaml:"total_deductions_per_period" json:"total_deductions_per_period"`
	RegularDeductionsPerPeriod *decimal.Decimal `yaml:"regular_deductions_per_period" json:"regular_deductions_per_period"`
}

// BonusResult is the marginal tax attributable to a lump-sum bonus.
type BonusResult struct {
	FederalTax    decimal.Decimal `json:"federal_tax"`
	ProvincialTax decimal.Decimal `json:"provincial_tax"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	NetBonus      decimal.Decimal `json:"net_bonus"`

	Strategy BonusStrategy `json:"strategy"`

	AnnualTaxWithBonus    decimal.Decimal `json:"annual_tax_with_bonus"`
	AnnualTaxWithoutBonus decimal.Decimal `json:"annual_tax_without_bonus"`
}
