package shared

import "github.com/shopspring/decimal"

// CentTolerance is the comparison tolerance used when ledger balances
// are checked against registers that may originate from float sources.
// Ledger-internal sums stay exact decimals and never need it.
var CentTolerance = decimal.New(1, -2)

// EqualWithin reports whether a and b differ by less than tol.
func EqualWithin(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tol)
}

// Quantize rounds an amount to two decimal places, the resolution all
// posted amounts are stored at.
func Quantize(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
