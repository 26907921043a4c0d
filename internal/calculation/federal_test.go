package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplepay/payroll/internal/config"
)

func newFederalForDate(t *testing.T, payDate time.Time, periods int) *FederalTaxCalculator {
	t.Helper()
	reg := config.DefaultRegistry()
	fed, err := reg.Federal(payDate)
	require.NoError(t, err)
	cpp, err := reg.CPP(payDate)
	require.NoError(t, err)
	ei, err := reg.EI(payDate)
	require.NoError(t, err)
	return NewFederalTaxCalculator(fed, cpp, ei, periods)
}

func biweeklyPeriodInput(t *testing.T) TaxPeriodInput {
	t.Helper()
	cpp := NewCPPCalculator(cpp2025Params(), 26).Calculate(CPPInput{
		PensionableEarnings: decimal.NewFromFloat(2307.69),
	})
	ei := NewEICalculator(ei2025Params()).Calculate(EIInput{
		InsurableEarnings: decimal.NewFromFloat(2307.69),
	})
	return TaxPeriodInput{
		GrossPerPeriod: decimal.NewFromFloat(2307.69),
		CPP:            cpp,
		EIPremium:      ei.Employee,
	}
}

func TestFederalTaxJulyEdition(t *testing.T) {
	calc := newFederalForDate(t, time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	in := biweeklyPeriodInput(t)
	in.ClaimAmount = decimal.NewFromInt(16129)
	res := calc.Calculate(in)

	// Annualized taxable income: 26 * (2307.69 - 21.73) = 59434.96, taxed in
	// the 20.5% bracket.
	assert.Equal(t, "59434.96", res.Audit.AnnualTaxableIncome.StringFixed(2))
	assert.Equal(t, "0.205", res.Audit.BracketRate.String())
	assert.Equal(t, "3729.38", res.Audit.BracketConstant.StringFixed(2))
	assert.Equal(t, "2258.06", res.Audit.K1.StringFixed(2))
	assert.Equal(t, "529.32", res.Audit.K2.StringFixed(2))
	assert.Equal(t, "205.94", res.Audit.K4.StringFixed(2))
	assert.Equal(t, "5461.47", res.AnnualTax.StringFixed(2))
	assert.Equal(t, "210.06", res.PeriodTax.StringFixed(2))
}

func TestFederalTaxJanuaryEdition(t *testing.T) {
	january := newFederalForDate(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), 26)
	july := newFederalForDate(t, time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	in := biweeklyPeriodInput(t)
	in.ClaimAmount = decimal.NewFromInt(16129)

	janRes := january.Calculate(in)
	julRes := july.Calculate(in)

	// January still carries the 15% bottom rate.
	assert.Equal(t, "5821.41", janRes.AnnualTax.StringFixed(2))
	assert.Equal(t, "223.90", janRes.PeriodTax.StringFixed(2))
	assert.True(t, julRes.PeriodTax.LessThanOrEqual(janRes.PeriodTax),
		"July edition must not tax more than January: %s vs %s", julRes.PeriodTax, janRes.PeriodTax)
}

func TestFederalTaxClaimCoversIncome(t *testing.T) {
	calc := newFederalForDate(t, time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC), 26)

	res := calc.AnnualTax(AnnualTaxInput{
		AnnualTaxableIncome: decimal.NewFromInt(12000),
		ClaimAmount:         decimal.NewFromInt(16129),
	})
	assert.True(t, res.AnnualTax.IsZero(), "expected zero tax, got %s", res.AnnualTax)
	assert.True(t, res.PeriodTax.IsZero())
}

func TestAnnualizeContributions(t *testing.T) {
	cpp := cpp2025Params()
	ei := ei2025Params()

	tests := []struct {
		name        string
		cppPeriod   string
		eiPeriod    string
		expectedCPP string
		expectedEI  string
	}{
		{
			name:      "well under both maxima",
			cppPeriod: "129.30", eiPeriod: "37.85",
			expectedCPP: "3361.80", expectedEI: "984.10",
		},
		{
			name: "projection overshoots so one period drops",
			// 160*26 = 4160 > 4034.10, so 25 periods: 4000.
			// 42*26 = 1092 > 1077.48, so 25 periods: 1050.
			cppPeriod: "160", eiPeriod: "42",
			expectedCPP: "4000", expectedEI: "1050",
		},
		{
			name:      "even the shortened projection hits the cap",
			cppPeriod: "200", eiPeriod: "55",
			expectedCPP: "4034.10", expectedEI: "1077.48",
		},
		{
			name:      "projection lands under the cap unshortened",
			cppPeriod: "155", eiPeriod: "41",
			expectedCPP: "4030", expectedEI: "1066",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cppCredit, eiCredit := annualizeContributions(
				decimal.RequireFromString(tt.cppPeriod),
				decimal.RequireFromString(tt.eiPeriod),
				26, 12, cpp, ei)
			assert.True(t, cppCredit.Equal(decimal.RequireFromString(tt.expectedCPP)),
				"cpp credit %s, expected %s", cppCredit, tt.expectedCPP)
			assert.True(t, eiCredit.Equal(decimal.RequireFromString(tt.expectedEI)),
				"ei credit %s, expected %s", eiCredit, tt.expectedEI)
		})
	}
}
