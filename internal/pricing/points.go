package pricing

import (
	"github.com/shopspring/decimal"
)

// RedeemPoints computes the points discount for a quote: 1 point = 1 currency
// unit, capped at the price left after rewards. Redemption is opt-in; when
// off the value is zero regardless of balance.
//
// This only computes the discount. Deducting the points from the account is
// owned by order placement, never by quote evaluation.
func RedeemPoints(available int64, priceAfterRewards decimal.Decimal, optIn bool) (decimal.Decimal, error) {
	if available < 0 {
		return decimal.Zero, &ValidationError{Field: "availablePoints", Reason: "must be non-negative"}
	}
	if !optIn {
		return decimal.Zero, nil
	}
	if priceAfterRewards.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "priceAfterRewards", Reason: "must be non-negative"}
	}
	value := decimal.NewFromInt(available)
	if value.GreaterThan(priceAfterRewards) {
		value = priceAfterRewards
	}
	return value, nil
}

// CheckRedeemRequest validates a caller-claimed redemption amount against the
// balance. Claims above the balance are clamped by RedeemPoints anyway; this
// surfaces them as a CapacityError so the attempt is logged, not normalized.
func CheckRedeemRequest(available, requested int64) error {
	if requested > available {
		return &CapacityError{What: "points redemption", Reason: "requested more points than available"}
	}
	return nil
}
