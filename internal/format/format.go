// Package format renders money and percentages for reports.
package format

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Number renders amount with thousands separators and two decimals: 1,234.56.
// Digits come from the exact decimal, never a float.
func Number(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if rest, ok := strings.CutPrefix(fixed, "-"); ok {
		sign, fixed = "-", rest
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return sign + fixed
	}
	return sign + humanize.BigComma(n) + "." + frac
}

// Currency renders $1,234.56, or ($1,234.56) when negative is set or the
// amount itself is below zero.
func Currency(amount decimal.Decimal, negative bool) string {
	rounded := amount.Round(2)
	s := "$" + Number(rounded.Abs())
	if negative || rounded.IsNegative() {
		return "(" + s + ")"
	}
	return s
}

// Percent renders a percentage value with two decimals and no sign: 12.34.
func Percent(p decimal.Decimal) string {
	return p.StringFixed(2)
}
