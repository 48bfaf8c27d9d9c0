package utils

import "github.com/shopspring/decimal"

// MinInt64 returns the smaller of two integers.
func MinInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Round2 rounds a decimal to currency precision (2 places).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundPct rounds a ratio (0..1) to the nearest integer percent.
func RoundPct(part, whole int) int {
	if whole == 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(part) * 100).Div(decimal.NewFromInt(int64(whole)))
	return int(pct.Round(0).IntPart())
}
