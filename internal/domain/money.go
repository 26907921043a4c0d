package domain

import "github.com/shopspring/decimal"

// RoundCents rounds a monetary amount to two decimal places using round-half-up.
// decimal.Round rounds half away from zero, which is identical to half-up for
// the non-negative amounts produced by the deduction formulas.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampZero floors a value at zero. Statutory formulas never produce negative
// deductions; intermediate differences are clamped rather than propagated.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
