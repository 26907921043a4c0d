package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplepay/payroll/internal/config"
	"github.com/maplepay/payroll/internal/domain"
)

func newBonusForDate(t *testing.T, code string, payDate time.Time, periods int) *BonusCalculator {
	t.Helper()
	reg := config.DefaultRegistry()
	fed, err := reg.Federal(payDate)
	require.NoError(t, err)
	prov, err := reg.Province(code, payDate)
	require.NoError(t, err)
	cpp, err := reg.CPP(payDate)
	require.NoError(t, err)
	ei, err := reg.EI(payDate)
	require.NoError(t, err)
	return NewBonusCalculator(
		NewFederalTaxCalculator(fed, cpp, ei, periods),
		NewProvincialTaxCalculator(prov, cpp, ei, periods),
		cpp, ei, periods)
}

func fallbackBonusInput(bonus string) domain.BonusInput {
	return domain.BonusInput{
		Jurisdiction:          "ON",
		PayPeriods:            26,
		PayDate:               time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
		Strategy:              domain.BonusStrategyFallback,
		BonusAmount:           decimal.RequireFromString(bonus),
		FederalClaimAmount:    decimal.NewFromInt(16129),
		ProvincialClaimAmount: decimal.NewFromInt(12747),
		AnnualizedGross:       decimal.NewFromInt(60000),
	}
}

func TestBonusZeroAmount(t *testing.T) {
	calc := newBonusForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	res, err := calc.Calculate(fallbackBonusInput("0"))
	require.NoError(t, err)
	assert.True(t, res.TotalTax.IsZero())
	assert.True(t, res.NetBonus.IsZero())
	assert.Equal(t, domain.BonusStrategyFallback, res.Strategy)
}

func TestBonusUnknownStrategy(t *testing.T) {
	calc := newBonusForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	in := fallbackBonusInput("5000")
	in.Strategy = "guess"
	_, err := calc.Calculate(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bonus strategy")
}

func TestBonusPreciseMissingField(t *testing.T) {
	calc := newBonusForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	in := preciseBonusInput()
	in.TotalEIPerPeriod = nil
	_, err := calc.Calculate(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total_ei_per_period")
}

func TestBonusFallback(t *testing.T) {
	calc := newBonusForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	res, err := calc.Calculate(fallbackBonusInput("5000"))
	require.NoError(t, err)

	assert.True(t, res.TotalTax.Equal(res.FederalTax.Add(res.ProvincialTax)))
	assert.True(t, res.NetBonus.Equal(decimal.NewFromInt(5000).Sub(res.TotalTax)))
	assert.True(t, res.TotalTax.GreaterThan(decimal.Zero))
	assert.True(t, res.TotalTax.LessThan(decimal.NewFromInt(5000)))
	assert.True(t, res.AnnualTaxWithBonus.GreaterThan(res.AnnualTaxWithoutBonus))

	// A $5000 bonus on a $60000 base lands in the 20.5% federal and 9.15%
	// Ontario brackets, partly offset by the growing contribution credits.
	total, _ := res.TotalTax.Float64()
	assert.InDelta(t, 1404.90, total, 0.10)
}

func TestBonusMonotonicInAmount(t *testing.T) {
	calc := newBonusForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	prev := decimal.Zero
	for _, bonus := range []string{"1000", "2000", "5000", "10000", "25000"} {
		res, err := calc.Calculate(fallbackBonusInput(bonus))
		require.NoError(t, err)
		assert.True(t, res.TotalTax.GreaterThanOrEqual(prev),
			"bonus %s: tax %s fell below %s", bonus, res.TotalTax, prev)
		prev = res.TotalTax
	}
}

func preciseBonusInput() domain.BonusInput {
	dp := func(s string) *decimal.Decimal {
		v := decimal.RequireFromString(s)
		return &v
	}
	return domain.BonusInput{
		Jurisdiction:          "ON",
		PayPeriods:            26,
		PayDate:               time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
		Strategy:              domain.BonusStrategyPrecise,
		BonusAmount:           decimal.NewFromInt(5000),
		FederalClaimAmount:    decimal.NewFromInt(16129),
		ProvincialClaimAmount: decimal.NewFromInt(12747),

		RegularGrossPerPeriod:      dp("2307.69"),
		TotalCPPPerPeriod:          dp("426.80"),
		RegularCPPPerPeriod:        dp("129.30"),
		TotalEIPerPeriod:           dp("119.85"),
		RegularEIPerPeriod:         dp("37.85"),
		TotalDeductionsPerPeriod:   dp("0"),
		RegularDeductionsPerPeriod: dp("0"),
	}
}

func TestBonusPrecise(t *testing.T) {
	calc := newBonusForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	res, err := calc.Calculate(preciseBonusInput())
	require.NoError(t, err)

	assert.True(t, res.TotalTax.Equal(res.FederalTax.Add(res.ProvincialTax)))
	assert.True(t, res.NetBonus.Equal(decimal.NewFromInt(5000).Sub(res.TotalTax)))

	fed, _ := res.FederalTax.Float64()
	prov, _ := res.ProvincialTax.Float64()
	assert.InDelta(t, 968.62, fed, 0.05)
	assert.InDelta(t, 436.29, prov, 0.05)
}
