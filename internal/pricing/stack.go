package pricing

import (
	"github.com/shopspring/decimal"
)

// LineDiscount is the per-unit savings breakdown for one cart line.
type LineDiscount struct {
	FinalUnitPrice decimal.Decimal
	ProductSavings decimal.Decimal
	TierSavings    decimal.Decimal
}

// ApplyDiscounts stacks the product discount and the tier discount onto one
// unit price. The discounts are not summed: each applies to the base left by
// the previous one, and that order is part of the customer-facing contract.
//
//	productSavings = round(unitPrice * productPct / 100)
//	tierSavings    = round((unitPrice - productSavings) * tierPct / 100)
//
// Percentages outside [0,100] and negative prices are validation failures,
// not values to clamp silently.
func ApplyDiscounts(unitPrice decimal.Decimal, productPct, tierPct int) (LineDiscount, error) {
	if unitPrice.IsNegative() {
		return LineDiscount{}, &ValidationError{Field: "unitPrice", Reason: "must be non-negative"}
	}
	if !validPercent(productPct) {
		return LineDiscount{}, &ValidationError{Field: "productDiscountPercent", Reason: "must be within 0..100"}
	}
	if !validPercent(tierPct) {
		return LineDiscount{}, &ValidationError{Field: "tierDiscountPercent", Reason: "must be within 0..100"}
	}

	productSavings := percentOf(unitPrice, productPct)
	afterProduct := unitPrice.Sub(productSavings)
	tierSavings := percentOf(afterProduct, tierPct)
	final := afterProduct.Sub(tierSavings)

	return LineDiscount{
		FinalUnitPrice: final,
		ProductSavings: productSavings,
		TierSavings:    tierSavings,
	}, nil
}
