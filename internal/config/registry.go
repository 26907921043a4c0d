// Package config loads and validates the statutory parameter sets the
// calculation engine runs against, and selects the edition in force for a
// given pay date.
package config

import (
	"fmt"
	"time"

	"github.com/maplepay/payroll/internal/domain"
	"github.com/maplepay/payroll/internal/taxdata"
)

// Registry holds the loaded tax-year configurations. It is immutable after
// construction; a new tax year or edition is taken on by building a new
// registry and swapping it wholesale.
type Registry struct {
	years map[int]*domain.TaxYearConfig
}

// NewRegistry builds a registry from validated tax-year configurations.
func NewRegistry(configs ...*domain.TaxYearConfig) (*Registry, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("registry requires at least one tax year configuration")
	}
	years := make(map[int]*domain.TaxYearConfig, len(configs))
	for _, c := range configs {
		if err := ValidateTaxYear(c); err != nil {
			return nil, fmt.Errorf("tax year %d: %w", c.Year, err)
		}
		if _, dup := years[c.Year]; dup {
			return nil, fmt.Errorf("duplicate configuration for tax year %d", c.Year)
		}
		years[c.Year] = c
	}
	return &Registry{years: years}, nil
}

// DefaultRegistry returns a registry over the embedded statutory data.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(taxdata.Year2025())
	if err != nil {
		// Embedded data failing validation is a programming error.
		panic("config: embedded tax data invalid: " + err.Error())
	}
	return r
}

// Year returns the configuration for a tax year.
func (r *Registry) Year(year int) (*domain.TaxYearConfig, error) {
	c, ok := r.years[year]
	if !ok {
		return nil, fmt.Errorf("no configuration loaded for tax year %d", year)
	}
	return c, nil
}

// Federal selects the federal edition in force on payDate.
func (r *Registry) Federal(payDate time.Time) (*domain.JurisdictionConfig, error) {
	year, err := r.Year(payDate.Year())
	if err != nil {
		return nil, err
	}
	return year.FederalEdition(payDate)
}

// Province selects a province's edition in force on payDate.
func (r *Registry) Province(code string, payDate time.Time) (*domain.JurisdictionConfig, error) {
	year, err := r.Year(payDate.Year())
	if err != nil {
		return nil, err
	}
	return year.ProvinceEdition(code, payDate)
}

// CPP returns the CPP parameters for the pay date's tax year.
func (r *Registry) CPP(payDate time.Time) (domain.CPPParams, error) {
	year, err := r.Year(payDate.Year())
	if err != nil {
		return domain.CPPParams{}, err
	}
	return year.CPP, nil
}

// EI returns the EI parameters for the pay date's tax year.
func (r *Registry) EI(payDate time.Time) (domain.EIParams, error) {
	year, err := r.Year(payDate.Year())
	if err != nil {
		return domain.EIParams{}, err
	}
	return year.EI, nil
}
