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

func newProvincialForDate(t *testing.T, code string, payDate time.Time, periods int) *ProvincialTaxCalculator {
	t.Helper()
	reg := config.DefaultRegistry()
	prov, err := reg.Province(code, payDate)
	require.NoError(t, err)
	cpp, err := reg.CPP(payDate)
	require.NoError(t, err)
	ei, err := reg.EI(payDate)
	require.NoError(t, err)
	return NewProvincialTaxCalculator(prov, cpp, ei, periods)
}

func TestOntarioTax(t *testing.T) {
	calc := newProvincialForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	in := biweeklyPeriodInput(t)
	in.ClaimAmount = decimal.NewFromInt(12747)
	res := calc.Calculate(in)

	assert.Equal(t, "59434.96", res.Audit.AnnualTaxableIncome.StringFixed(2))
	assert.Equal(t, "643.72", res.Audit.K1.StringFixed(2))
	assert.Equal(t, "190.94", res.Audit.K2.StringFixed(2))
	assert.Equal(t, "2435.31", res.Audit.BasicTax.StringFixed(2))
	// Basic tax is below the first surtax threshold; the health premium is at
	// the 48k-72k step cap.
	assert.Equal(t, "0.00", res.Audit.Surtax.StringFixed(2))
	assert.Equal(t, "600.00", res.Audit.HealthPremium.StringFixed(2))
	assert.Equal(t, "3035.31", res.AnnualTax.StringFixed(2))
	assert.Equal(t, "116.74", res.PeriodTax.StringFixed(2))
}

func TestOntarioSurtaxTiers(t *testing.T) {
	adj := surtaxAdjuster{tiers: []domain.SurtaxTier{
		{Threshold: decimal.NewFromInt(5710), Rate: decimal.NewFromFloat(0.20)},
		{Threshold: decimal.NewFromInt(7307), Rate: decimal.NewFromFloat(0.36)},
	}}

	tests := []struct {
		name     string
		tax      string
		expected string
	}{
		{"below both thresholds", "5000", "5000"},
		{"first tier only", "6000", "6058.00"},
		{"both tiers on the pre-surtax amount", "11801.87", "14638.40"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adj.Apply(decimal.RequireFromString(tt.tax), decimal.Zero)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, expected %s", got, tt.expected)
		})
	}
}

func TestFlatSurtax(t *testing.T) {
	adj := surtaxAdjuster{tiers: []domain.SurtaxTier{
		{Threshold: decimal.NewFromInt(12500), Rate: decimal.NewFromFloat(0.10)},
	}}

	got := adj.Apply(decimal.NewFromInt(10000), decimal.Zero)
	assert.True(t, got.Equal(decimal.NewFromInt(10000)))

	got = adj.Apply(decimal.NewFromInt(20000), decimal.Zero)
	assert.Equal(t, "20750.00", got.StringFixed(2))
}

func TestOntarioHealthPremiumSteps(t *testing.T) {
	calc := newProvincialForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)
	var adj healthPremiumAdjuster
	for _, a := range calc.adjusters {
		if hp, ok := a.(healthPremiumAdjuster); ok {
			adj = hp
		}
	}
	require.NotEmpty(t, adj.steps)

	tests := []struct {
		income   string
		expected string
	}{
		{"15000", "0.00"},
		{"20000", "0.00"},
		{"21000", "60.00"},
		{"36000", "300.00"},
		{"59434.96", "600.00"},
		{"150000", "750.00"},
		{"300000", "900.00"},
	}
	for _, tt := range tests {
		got := adj.premium(decimal.RequireFromString(tt.income))
		assert.Equal(t, tt.expected, got.StringFixed(2), "income %s", tt.income)
	}
}

func TestLowIncomeTaxReduction(t *testing.T) {
	adj := taxReductionAdjuster{cfg: domain.TaxReductionConfig{
		Amount:       decimal.NewFromInt(575),
		Threshold:    decimal.NewFromInt(24338),
		PhaseOutRate: decimal.NewFromFloat(0.0356),
	}}

	tests := []struct {
		name     string
		tax      string
		income   string
		expected string
	}{
		{"full reduction below the threshold", "1000", "20000", "425.00"},
		{"reduction never pushes tax below zero", "300", "20000", "0.00"},
		{"partial phase-out", "1000", "30000", "626.57"},
		{"fully phased out", "1000", "50000", "1000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adj.Apply(decimal.RequireFromString(tt.tax), decimal.RequireFromString(tt.income))
			assert.Equal(t, tt.expected, got.StringFixed(2))
		})
	}
}

func TestNovaScotiaSupplementalCreditByEdition(t *testing.T) {
	in := AnnualTaxInput{
		AnnualTaxableIncome: decimal.NewFromInt(40000),
		AnnualCPPCredit:     decimal.NewFromInt(3000),
		AnnualEICredit:      decimal.NewFromInt(900),
	}

	january := newProvincialForDate(t, "NS", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), 26)
	janRes := january.AnnualTax(in)
	assert.Equal(t, "0.00", janRes.Audit.K5.StringFixed(2))

	july := newProvincialForDate(t, "NS", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC), 26)
	julRes := july.AnnualTax(in)
	// Income-tested BPA at 40000 is 10844; K1+K2 = 953.19 + 298.49 exceeds
	// the 1200 threshold by 51.68, credited at 15%.
	assert.Equal(t, "10844.00", julRes.Audit.ClaimAmount.StringFixed(2))
	assert.Equal(t, "7.75", julRes.Audit.K5.StringFixed(2))
	assert.True(t, julRes.AnnualTax.LessThan(janRes.AnnualTax))
}

func TestDynamicBPAReplacesClaim(t *testing.T) {
	calc := newProvincialForDate(t, "MB", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	tests := []struct {
		income      string
		expectedBPA string
	}{
		{"100000", "15780.00"},
		{"300000", "7890.00"},
		{"450000", "0.00"},
	}
	for _, tt := range tests {
		res := calc.AnnualTax(AnnualTaxInput{
			AnnualTaxableIncome: decimal.RequireFromString(tt.income),
			// A flat claim is supplied but must be ignored.
			ClaimAmount: decimal.NewFromInt(99999),
		})
		assert.Equal(t, tt.expectedBPA, res.Audit.ClaimAmount.StringFixed(2), "income %s", tt.income)
	}
}

func TestYukonEmploymentCredit(t *testing.T) {
	calc := newProvincialForDate(t, "YT", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	res := calc.AnnualTax(AnnualTaxInput{
		AnnualTaxableIncome: decimal.NewFromFloat(59434.96),
	})
	// Yukon mirrors the federal employment credit at its own lowest rate:
	// 6.4% of 1471.
	assert.Equal(t, "94.14", res.Audit.K4.StringFixed(2))
	assert.Equal(t, "16129.00", res.Audit.ClaimAmount.StringFixed(2))

	on := newProvincialForDate(t, "ON", time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)
	onRes := on.AnnualTax(AnnualTaxInput{AnnualTaxableIncome: decimal.NewFromFloat(59434.96)})
	assert.True(t, onRes.Audit.K4.IsZero(), "Ontario has no employment credit")
}
