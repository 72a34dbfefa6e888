package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tajimart/internal/pricing"
)

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestApplyDiscounts_SequentialStacking(t *testing.T) {
	// price 1000, product 10%, tier 5% -> 100 / 900 / 45 / 855
	ld, err := pricing.ApplyDiscounts(d(1000), 10, 5)
	require.NoError(t, err)

	assert.True(t, ld.ProductSavings.Equal(d(100)), "productSavings = %s", ld.ProductSavings)
	assert.True(t, ld.TierSavings.Equal(d(45)), "tierSavings = %s", ld.TierSavings)
	assert.True(t, ld.FinalUnitPrice.Equal(d(855)), "finalUnitPrice = %s", ld.FinalUnitPrice)
}

func TestApplyDiscounts_NotSummed(t *testing.T) {
	// 10% then 10% on 1000 is 810, not 800.
	ld, err := pricing.ApplyDiscounts(d(1000), 10, 10)
	require.NoError(t, err)
	assert.True(t, ld.FinalUnitPrice.Equal(d(810)))
}

func TestApplyDiscounts_ZeroPercents(t *testing.T) {
	ld, err := pricing.ApplyDiscounts(d(1299), 0, 0)
	require.NoError(t, err)
	assert.True(t, ld.FinalUnitPrice.Equal(d(1299)))
	assert.True(t, ld.ProductSavings.IsZero())
	assert.True(t, ld.TierSavings.IsZero())
}

func TestApplyDiscounts_FullDiscount(t *testing.T) {
	ld, err := pricing.ApplyDiscounts(d(500), 100, 7)
	require.NoError(t, err)
	assert.True(t, ld.FinalUnitPrice.IsZero())
	assert.True(t, ld.ProductSavings.Equal(d(500)))
	assert.True(t, ld.TierSavings.IsZero())
}

func TestApplyDiscounts_RoundingHalfAwayFromZero(t *testing.T) {
	// 5% of 1010 after a 10% product cut: 909 * 5% = 45.45 -> 45
	ld, err := pricing.ApplyDiscounts(d(1010), 10, 5)
	require.NoError(t, err)
	assert.True(t, ld.ProductSavings.Equal(d(101)))
	assert.True(t, ld.TierSavings.Equal(d(45)))
	assert.True(t, ld.FinalUnitPrice.Equal(d(864)))

	// 2.5 rounds up, not down: 100 * 2.5%... via tier 5% of 50 = 2.5 -> 3
	ld, err = pricing.ApplyDiscounts(d(50), 0, 5)
	require.NoError(t, err)
	assert.True(t, ld.TierSavings.Equal(d(3)), "got %s", ld.TierSavings)
}

func TestApplyDiscounts_RejectsBadInputs(t *testing.T) {
	cases := []struct {
		name       string
		price      decimal.Decimal
		product    int
		tier       int
	}{
		{"negative price", d(-1), 10, 5},
		{"product over 100", d(100), 101, 5},
		{"product negative", d(100), -1, 5},
		{"tier over 100", d(100), 10, 150},
		{"tier negative", d(100), 10, -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pricing.ApplyDiscounts(tc.price, tc.product, tc.tier)
			var verr *pricing.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

// finalUnitPrice is non-increasing in either percentage and stays in [0, P].
func TestApplyDiscounts_Monotonic(t *testing.T) {
	price := d(997)
	for _, step := range []int{0, 1, 2, 5, 10, 25, 50, 75, 99, 100} {
		prev := price
		for _, tier := range []int{0, 2, 3, 5, 7, 50, 100} {
			ld, err := pricing.ApplyDiscounts(price, step, tier)
			require.NoError(t, err)
			assert.False(t, ld.FinalUnitPrice.IsNegative(), "d1=%d d2=%d", step, tier)
			assert.True(t, ld.FinalUnitPrice.LessThanOrEqual(price), "d1=%d d2=%d", step, tier)
			assert.True(t, ld.FinalUnitPrice.LessThanOrEqual(prev),
				"final price rose as tier discount grew: d1=%d d2=%d", step, tier)
			prev = ld.FinalUnitPrice
		}
	}

	// Fixed tier percent, growing product percent.
	prev := price
	for p := 0; p <= 100; p += 5 {
		ld, err := pricing.ApplyDiscounts(price, p, 5)
		require.NoError(t, err)
		assert.True(t, ld.FinalUnitPrice.LessThanOrEqual(prev), "d1=%d", p)
		prev = ld.FinalUnitPrice
	}
}
