// Package pricing is the single module that prices a cart: loyalty tier
// resolution, sequential discount stacking, community-reward effects, points
// redemption, and the checkout quote that composes them.
//
// Everything here is pure computation over inputs the caller already fetched.
// There is no I/O and no shared mutable state, so the package is safe to call
// concurrently for independent checkout attempts. Every caller that shows or
// charges a price (cart view, quote preview, order placement) must go through
// this package so the numbers cannot diverge.
package pricing

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// RoundMoney applies the one rounding rule used for every chargeable amount:
// round half away from zero to whole currency units. Display figures reuse
// the same rounded intermediates, so a shown savings line always matches the
// charged amount to the unit.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// percentOf returns RoundMoney(base * pct / 100).
func percentOf(base decimal.Decimal, pct int) decimal.Decimal {
	return RoundMoney(base.Mul(decimal.NewFromInt(int64(pct))).Div(oneHundred))
}

func validPercent(pct int) bool { return pct >= 0 && pct <= 100 }
