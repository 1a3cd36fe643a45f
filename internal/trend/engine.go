// Package trend computes comparative figures across years: variance,
// CAGR, margins, and liquidity/leverage ratios. Every computation is
// guarded against degenerate input and returns zero instead of NaN or
// infinity.
package trend

import (
	"math"

	"github.com/shopspring/decimal"
)

// Variance returns current minus previous.
func Variance(current, previous decimal.Decimal) decimal.Decimal {
	return current.Sub(previous)
}

// PercentVariance returns the variance as a percentage of the previous
// value, zero when the base is zero.
func PercentVariance(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Round(2)
}

// CAGR returns the compound annual growth rate (end/start)^(1/years)−1
// as a percentage. Zero-year spans and non-positive bases return zero.
func CAGR(start, end decimal.Decimal, years int) decimal.Decimal {
	if years <= 0 || !start.IsPositive() || !end.IsPositive() {
		return decimal.Zero
	}
	ratio, _ := end.Div(start).Float64()
	rate := math.Pow(ratio, 1/float64(years)) - 1
	return decimal.NewFromFloat(rate * 100).Round(2)
}

// ProfitCAGR is CAGR with the starting base clamped to a minimum of 1,
// so a break-even or loss-making start year yields a finite growth
// figure instead of an undefined exponent.
func ProfitCAGR(start, end decimal.Decimal, years int) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if start.LessThan(one) {
		start = one
	}
	return CAGR(start, end, years)
}

// Margin returns net profit over revenue as a percentage, zero when
// revenue is zero.
func Margin(netProfit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return netProfit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
}

// CurrentRatio returns current assets over current liabilities, zero
// when liabilities are zero.
func CurrentRatio(currentAssets, currentLiabilities decimal.Decimal) decimal.Decimal {
	if currentLiabilities.IsZero() {
		return decimal.Zero
	}
	return currentAssets.Div(currentLiabilities).Round(2)
}

// DebtToEquity returns total liabilities over total equity, zero when
// equity is zero.
func DebtToEquity(totalLiabilities, totalEquity decimal.Decimal) decimal.Decimal {
	if totalEquity.IsZero() {
		return decimal.Zero
	}
	return totalLiabilities.Div(totalEquity).Round(2)
}

// Average returns the mean of the values, zero for an empty slice.
func Average(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total.Div(decimal.NewFromInt(int64(len(values)))).Round(2)
}
