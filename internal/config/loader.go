package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/maplepay/payroll/internal/domain"
)

// LoadTaxYearFile loads a tax-year parameter file. Bracket tables may supply
// only thresholds and rates; missing cumulative constants are derived so the
// tax function stays continuous at every threshold.
func LoadTaxYearFile(filename string) (*domain.TaxYearConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax year file %s: %w", filename, err)
	}

	var cfg domain.TaxYearConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tax year file %s: %w", filename, err)
	}

	for _, ed := range cfg.Federal {
		if err := normalizeBrackets(ed); err != nil {
			return nil, fmt.Errorf("federal edition %s: %w", ed.EffectiveFrom.Format("2006-01-02"), err)
		}
	}
	for code, editions := range cfg.Provinces {
		for _, ed := range editions {
			if err := normalizeBrackets(ed); err != nil {
				return nil, fmt.Errorf("jurisdiction %s edition %s: %w", code, ed.EffectiveFrom.Format("2006-01-02"), err)
			}
		}
	}

	if err := ValidateTaxYear(&cfg); err != nil {
		return nil, fmt.Errorf("tax year file %s: %w", filename, err)
	}
	return &cfg, nil
}

// normalizeBrackets rebuilds the cumulative constants when the file omitted
// them (every non-bottom constant zero).
func normalizeBrackets(ed *domain.JurisdictionConfig) error {
	if len(ed.Brackets) == 0 {
		return fmt.Errorf("bracket table is empty")
	}
	needsDerivation := len(ed.Brackets) > 1
	for _, b := range ed.Brackets[1:] {
		if !b.Constant.IsZero() {
			needsDerivation = false
			break
		}
	}
	if !needsDerivation {
		return nil
	}
	thresholds := make([]decimal.Decimal, len(ed.Brackets))
	rates := make([]decimal.Decimal, len(ed.Brackets))
	for i, b := range ed.Brackets {
		thresholds[i] = b.Threshold
		rates[i] = b.Rate
	}
	rebuilt, err := domain.BuildBracketTable(thresholds, rates)
	if err != nil {
		return err
	}
	ed.Brackets = rebuilt
	return nil
}

// ValidateTaxYear checks the structural soundness of a tax-year parameter
// set. Violations indicate a deployment or data problem and are hard errors.
func ValidateTaxYear(c *domain.TaxYearConfig) error {
	if c.Year < 2000 || c.Year > 2100 {
		return fmt.Errorf("implausible tax year %d", c.Year)
	}
	if err := validateCPP(c.CPP); err != nil {
		return fmt.Errorf("cpp parameters: %w", err)
	}
	if err := validateEI(c.EI); err != nil {
		return fmt.Errorf("ei parameters: %w", err)
	}
	if len(c.Federal) == 0 {
		return fmt.Errorf("no federal editions")
	}
	for _, ed := range c.Federal {
		if err := validateJurisdiction(ed); err != nil {
			return fmt.Errorf("federal: %w", err)
		}
	}
	if len(c.Provinces) == 0 {
		return fmt.Errorf("no provincial jurisdictions")
	}
	for code, editions := range c.Provinces {
		if len(editions) == 0 {
			return fmt.Errorf("jurisdiction %s has no editions", code)
		}
		for _, ed := range editions {
			if ed.Code != code {
				return fmt.Errorf("jurisdiction %s edition declares code %q", code, ed.Code)
			}
			if err := validateJurisdiction(ed); err != nil {
				return fmt.Errorf("jurisdiction %s: %w", code, err)
			}
		}
	}
	return nil
}

func validateCPP(p domain.CPPParams) error {
	if p.BasicExemption.IsNegative() {
		return fmt.Errorf("basic exemption cannot be negative")
	}
	if p.YMPE.LessThanOrEqual(decimal.Zero) || p.YAMPE.LessThanOrEqual(p.YMPE) {
		return fmt.Errorf("YAMPE must exceed YMPE and both must be positive")
	}
	if !rateInRange(p.BaseRate) || !rateInRange(p.AdditionalRate) || !rateInRange(p.EnhancementRate) || !rateInRange(p.CreditRate) {
		return fmt.Errorf("contribution rates must be within (0, 1]")
	}
	if p.CreditRate.GreaterThanOrEqual(p.BaseRate) {
		return fmt.Errorf("credit rate must be below the base rate")
	}
	if p.MaxBaseContribution.LessThanOrEqual(decimal.Zero) || p.MaxAdditionalContribution.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("annual maximum contributions must be positive")
	}
	return nil
}

func validateEI(p domain.EIParams) error {
	if !rateInRange(p.EmployeeRate) {
		return fmt.Errorf("employee rate must be within (0, 1]")
	}
	if p.MaxInsurableEarnings.LessThanOrEqual(decimal.Zero) || p.MaxEmployeePremium.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("insurable earnings and premium maxima must be positive")
	}
	if p.EmployerMultiplier.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("employer multiplier must be positive")
	}
	return nil
}

func validateJurisdiction(ed *domain.JurisdictionConfig) error {
	if ed.Code == "" {
		return fmt.Errorf("jurisdiction code is required")
	}
	if len(ed.Brackets) == 0 {
		return fmt.Errorf("bracket table is empty")
	}
	if !ed.Brackets[0].Threshold.IsZero() {
		return fmt.Errorf("first bracket threshold must be zero")
	}
	prev := decimal.NewFromInt(-1)
	for i, b := range ed.Brackets {
		if b.Threshold.LessThanOrEqual(prev) {
			return fmt.Errorf("bracket thresholds must be strictly ascending at index %d", i)
		}
		if b.Rate.LessThanOrEqual(decimal.Zero) || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("bracket rate out of range at index %d", i)
		}
		prev = b.Threshold
	}
	if ed.BPA.IsNegative() {
		return fmt.Errorf("basic personal amount cannot be negative")
	}
	if f := ed.Features.DynamicBPA; f != nil {
		if f.PhaseOutEnd.LessThanOrEqual(f.PhaseOutStart) {
			return fmt.Errorf("dynamic BPA phase-out bounds are inverted")
		}
		if f.MinAmount.GreaterThan(f.MaxAmount) {
			return fmt.Errorf("dynamic BPA minimum exceeds maximum")
		}
	}
	if f := ed.Features.TaxReduction; f != nil {
		if f.Amount.IsNegative() || f.PhaseOutRate.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("tax reduction requires a non-negative amount and positive phase-out rate")
		}
	}
	for i, tier := range ed.Features.Surtax {
		if tier.Rate.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("surtax tier %d rate must be positive", i)
		}
	}
	return nil
}

func rateInRange(r decimal.Decimal) bool {
	return r.GreaterThan(decimal.Zero) && r.LessThanOrEqual(decimal.NewFromInt(1))
}
