package installment

import (
	"github.com/shopspring/decimal"
)

// MonthlyPayment computes the constant per-month installment for one line:
// remaining balance times the tariff coefficient, spread evenly over the
// payments count and rounded to the nearest whole currency unit.
//
// Rounding is half away from zero (22.5 rounds to 23), applied exactly once
// here. The merger sums already-rounded amounts and never rounds again.
func MonthlyPayment(remaining decimal.Decimal, tariff *Tariff) decimal.Decimal {
	return remaining.
		Mul(tariff.Coefficient).
		Div(decimal.NewFromInt(int64(tariff.PaymentsCount))).
		Round(0)
}
