package output

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplepay/payroll/internal/domain"
)

func sampleResult() *domain.CalculationResult {
	return &domain.CalculationResult{
		EmployeeID:      "emp-001",
		Jurisdiction:    "ON",
		PayDate:         time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
		GrossPay:        decimal.NewFromFloat(2307.69),
		CPPBase:         decimal.NewFromFloat(129.30),
		EIEmployee:      decimal.NewFromFloat(37.85),
		FederalTax:      decimal.NewFromFloat(210.06),
		ProvincialTax:   decimal.NewFromFloat(116.74),
		TotalDeductions: decimal.NewFromFloat(493.95),
		NetPay:          decimal.NewFromFloat(1813.74),
	}
}

func TestFormatResult(t *testing.T) {
	text := FormatResult(sampleResult())

	assert.Contains(t, text, "Employee emp-001 (ON), paid 2025-07-18")
	assert.Contains(t, text, "Net pay")
	assert.Contains(t, text, "1813.74")
	// Amounts are aligned in a fixed-width column.
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "$") {
			assert.Equal(t, 33, strings.Index(line, "$"), "misaligned line: %q", line)
		}
	}
}

func TestFormatBonusResult(t *testing.T) {
	text := FormatBonusResult(&domain.BonusResult{
		TotalTax: decimal.NewFromFloat(1404.91),
		NetBonus: decimal.NewFromFloat(3595.09),
		Strategy: domain.BonusStrategyFallback,
	})
	assert.Contains(t, text, "fallback")
	assert.Contains(t, text, "3595.09")
}

func TestFormatJSON(t *testing.T) {
	text, err := FormatJSON(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, text, `"net_pay": "1813.74"`)
	assert.Contains(t, text, `"employee_id": "emp-001"`)
}
