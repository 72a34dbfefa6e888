package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"tajimart/internal/domain"
)

// QuoteInput carries everything a quote needs, fetched fresh by the caller.
// Account.Tier doubles as the previously recorded tier for the hysteresis
// rule. A fallback account (Verified=false) is allowed and yields no loyalty
// benefits.
type QuoteInput struct {
	Lines        []domain.CartLine
	Account      domain.LoyaltyAccount
	Config       domain.TierThresholdConfig
	Reward       *domain.CommunityReward
	RedeemPoints bool
	Now          time.Time
}

// LineQuote is one priced cart line inside a quote.
type LineQuote struct {
	ProductID      string          `json:"productId"`
	Title          string          `json:"title"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	ProductSavings decimal.Decimal `json:"productSavings"` // per unit
	TierSavings    decimal.Decimal `json:"tierSavings"`    // per unit
	FinalUnitPrice decimal.Decimal `json:"finalUnitPrice"`
	LineSubtotal   decimal.Decimal `json:"lineSubtotal"` // pre-discount
	LineTotal      decimal.Decimal `json:"lineTotal"`    // after line discounts
}

// CheckoutQuote is the fully computed, about-to-be-charged breakdown for one
// checkout attempt. It is ephemeral: recomputed on every evaluation, never
// persisted apart from the order it produces.
//
// Subtotal, ProductDiscountTotal and TierDiscountTotal are each summed from
// their own per-line formulas so the display figures do not depend on
// subtracting already-rounded aggregates.
type CheckoutQuote struct {
	Lines                []LineQuote       `json:"lines"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	ProductDiscountTotal decimal.Decimal   `json:"productDiscountTotal"`
	TierDiscountTotal    decimal.Decimal   `json:"tierDiscountTotal"`
	SubtotalAfterLines   decimal.Decimal   `json:"subtotalAfterLines"`
	Tier                 domain.Tier       `json:"tier"`
	TierStatus           domain.TierStatus `json:"tierStatus"`
	TierPercent          int               `json:"tierPercent"`
	RewardKind           EffectKind        `json:"rewardKind"`
	RewardPercent        int               `json:"rewardPercent"`
	RewardDiscount       decimal.Decimal   `json:"rewardDiscount"`
	FreeShipping         bool              `json:"freeShipping"`
	AfterReward          decimal.Decimal   `json:"afterReward"`
	PointsRedeemed       decimal.Decimal   `json:"pointsRedeemed"`
	FinalTotal           decimal.Decimal   `json:"finalTotal"`
	LoyaltyVerified      bool              `json:"loyaltyVerified"`
}

// BuildQuote runs the fixed pricing pipeline over a cart:
//
//  1. resolve the loyalty tier,
//  2. stack product + tier discounts per line and sum,
//  3. apply the selected reward's percent discount to that sum,
//  4. redeem points against the result,
//  5. final total = max(0, step3 - step4).
//
// Reordering the steps changes the customer-facing total and is not
// permitted. The pipeline never partially applies: any invalid input fails
// the whole quote. The function is deterministic: identical inputs produce
// identical quotes.
func BuildQuote(in QuoteInput) (CheckoutQuote, error) {
	if err := in.Config.Validate(); err != nil {
		return CheckoutQuote{}, &ValidationError{Field: "thresholds", Reason: err.Error()}
	}
	if len(in.Lines) == 0 {
		return CheckoutQuote{}, &ValidationError{Field: "lines", Reason: "cart is empty"}
	}

	res, err := effectiveTier(in.Account, in.Config)
	if err != nil {
		return CheckoutQuote{}, err
	}
	tierPct := res.Tier.DiscountPercent()
	if !in.Account.Verified {
		// Unverified fallback data never earns a discount.
		tierPct = 0
	}

	q := CheckoutQuote{
		Lines:           make([]LineQuote, 0, len(in.Lines)),
		Tier:            res.Tier,
		TierStatus:      res.Status,
		TierPercent:     tierPct,
		RewardKind:      EffectNone,
		LoyaltyVerified: in.Account.Verified,
	}

	for _, line := range in.Lines {
		if line.ProductID == "" || line.Title == "" {
			return CheckoutQuote{}, &ValidationError{Field: "line", Reason: "incomplete product snapshot"}
		}
		if line.Quantity < 1 {
			return CheckoutQuote{}, &ValidationError{Field: "line.quantity", Reason: "must be positive"}
		}
		if !line.PriceAtAdd.IsPositive() {
			return CheckoutQuote{}, &ValidationError{Field: "line.price", Reason: "must be positive"}
		}
		ld, err := ApplyDiscounts(line.PriceAtAdd, line.DiscountPercent, tierPct)
		if err != nil {
			return CheckoutQuote{}, err
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		lq := LineQuote{
			ProductID:      line.ProductID,
			Title:          line.Title,
			Quantity:       line.Quantity,
			UnitPrice:      line.PriceAtAdd,
			ProductSavings: ld.ProductSavings,
			TierSavings:    ld.TierSavings,
			FinalUnitPrice: ld.FinalUnitPrice,
			LineSubtotal:   line.PriceAtAdd.Mul(qty),
			LineTotal:      ld.FinalUnitPrice.Mul(qty),
		}
		q.Lines = append(q.Lines, lq)
		q.Subtotal = q.Subtotal.Add(lq.LineSubtotal)
		q.ProductDiscountTotal = q.ProductDiscountTotal.Add(ld.ProductSavings.Mul(qty))
		q.TierDiscountTotal = q.TierDiscountTotal.Add(ld.TierSavings.Mul(qty))
		q.SubtotalAfterLines = q.SubtotalAfterLines.Add(lq.LineTotal)
	}

	effect, err := RewardEffectOf(in.Reward, in.Now)
	if err != nil {
		return CheckoutQuote{}, err
	}
	q.RewardKind = effect.Kind
	q.AfterReward = q.SubtotalAfterLines
	switch effect.Kind {
	case EffectPercentDiscount:
		q.RewardPercent = effect.Percent
		q.RewardDiscount = percentOf(q.SubtotalAfterLines, effect.Percent)
		q.AfterReward = q.SubtotalAfterLines.Sub(q.RewardDiscount)
	case EffectFreeShipping:
		// Delivery fees live outside this engine; the flag passes through.
		q.FreeShipping = true
	}

	available := in.Account.Points
	if !in.Account.Verified {
		available = 0
	}
	pointsValue, err := RedeemPoints(available, q.AfterReward, in.RedeemPoints)
	if err != nil {
		return CheckoutQuote{}, err
	}
	q.PointsRedeemed = pointsValue

	q.FinalTotal = q.AfterReward.Sub(pointsValue)
	if q.FinalTotal.IsNegative() {
		q.FinalTotal = decimal.Zero
	}
	return q, nil
}

// effectiveTier applies the administrator override, the unverified fallback,
// and otherwise the threshold resolver.
func effectiveTier(acct domain.LoyaltyAccount, cfg domain.TierThresholdConfig) (TierResolution, error) {
	if acct.Override {
		// Admin accounts carry a pinned Platinum grant, never a resolved tier.
		return TierResolution{Tier: domain.TierPlatinum, Status: domain.StatusNone}, nil
	}
	if !acct.Verified {
		return TierResolution{Tier: domain.TierBasic, Status: domain.StatusNone}, nil
	}
	return ResolveTier(acct.Points, acct.Tier, cfg)
}
