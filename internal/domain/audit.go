package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContributionAudit records the intermediate values of a CPP or EI
// calculation for dispute resolution.
type ContributionAudit struct {
	PensionableEarnings decimal.Decimal `json:"pensionable_earnings,omitempty"`
	InsurableEarnings   decimal.Decimal `json:"insurable_earnings,omitempty"`
	ProratedMax         decimal.Decimal `json:"prorated_max,omitempty"`
	RemainingRoom       decimal.Decimal `json:"remaining_room"`
	UncappedAmount      decimal.Decimal `json:"uncapped_amount"`
	Exempt              bool            `json:"exempt"`
}

// TaxAudit records every intermediate value of one jurisdiction's annualized
// tax calculation.
type TaxAudit struct {
	AnnualTaxableIncome decimal.Decimal `json:"annual_taxable_income"`
	BracketRate         decimal.Decimal `json:"bracket_rate"`
	BracketConstant     decimal.Decimal `json:"bracket_constant"`
	ClaimAmount         decimal.Decimal `json:"claim_amount"`
	K1                  decimal.Decimal `json:"k1"`
	K2                  decimal.Decimal `json:"k2"`
	K3                  decimal.Decimal `json:"k3"`
	K4                  decimal.Decimal `json:"k4"`
	K5                  decimal.Decimal `json:"k5,omitempty"`
	BasicTax            decimal.Decimal `json:"basic_tax"`
	Surtax              decimal.Decimal `json:"surtax,omitempty"`
	HealthPremium       decimal.Decimal `json:"health_premium,omitempty"`
	TaxReduction        decimal.Decimal `json:"tax_reduction,omitempty"`
	AnnualTax           decimal.Decimal `json:"annual_tax"`
	PeriodTax           decimal.Decimal `json:"period_tax"`
}

// AuditTrail is the structured record of one engine calculation.
type AuditTrail struct {
	CalculationID uuid.UUID `json:"calculation_id"`
	CalculatedAt  time.Time `json:"calculated_at"`
	EmployeeID    string    `json:"employee_id"`
	Jurisdiction  string    `json:"jurisdiction"`
	TaxYear       int       `json:"tax_year"`
	EditionDate   time.Time `json:"edition_date"`
	PayPeriods    int       `json:"pay_periods"`

	CPP        ContributionAudit `json:"cpp"`
	CPP2       ContributionAudit `json:"cpp2"`
	EI         ContributionAudit `json:"ei"`
	Federal    TaxAudit          `json:"federal"`
	Provincial TaxAudit          `json:"provincial"`
}
