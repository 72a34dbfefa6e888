package pricing

import (
	"time"

	"tajimart/internal/domain"
)

// EffectKind is what a selected community reward does to a quote.
type EffectKind string

const (
	EffectNone            EffectKind = "none"
	EffectPercentDiscount EffectKind = "percentDiscount"
	EffectFreeShipping    EffectKind = "freeShipping"
)

// RewardEffect is the cart-level effect of the selected reward. Percent is
// meaningful only for EffectPercentDiscount.
type RewardEffect struct {
	Kind    EffectKind
	Percent int
}

// RewardEffectOf maps a selected reward to its quote effect. A reward past
// its expiry must never influence a quote; reaching here with one is a
// CapacityError so the attempt gets logged instead of passing as a zero.
// Product and points rewards are fulfilled outside checkout math and yield
// no effect.
func RewardEffectOf(r *domain.CommunityReward, now time.Time) (RewardEffect, error) {
	if r == nil {
		return RewardEffect{Kind: EffectNone}, nil
	}
	if r.Consumed {
		return RewardEffect{}, &CapacityError{What: "community reward", Reason: "already consumed"}
	}
	if expired(r.ExpiryDate, now) {
		return RewardEffect{}, &CapacityError{What: "community reward", Reason: "past expiry date"}
	}
	switch r.Type {
	case domain.RewardDiscount:
		if !validPercent(r.Value) {
			return RewardEffect{}, &ValidationError{Field: "reward.value", Reason: "discount percent must be within 0..100"}
		}
		return RewardEffect{Kind: EffectPercentDiscount, Percent: r.Value}, nil
	case domain.RewardShipping:
		return RewardEffect{Kind: EffectFreeShipping}, nil
	case domain.RewardProduct, domain.RewardPoints:
		return RewardEffect{Kind: EffectNone}, nil
	default:
		return RewardEffect{}, &ValidationError{Field: "reward.type", Reason: "unknown reward type"}
	}
}

// ToggleReward implements the one-active-reward rule: picking a new reward
// replaces the current one, picking the current one again clears it.
func ToggleReward(current *domain.CommunityReward, pick domain.CommunityReward) *domain.CommunityReward {
	if current != nil && current.ID == pick.ID {
		return nil
	}
	p := pick
	return &p
}

// FilterActive drops consumed and expired rewards so they never reach
// selection.
func FilterActive(rewards []domain.CommunityReward, now time.Time) []domain.CommunityReward {
	out := make([]domain.CommunityReward, 0, len(rewards))
	for _, r := range rewards {
		if r.Consumed || expired(r.ExpiryDate, now) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func expired(expiry string, now time.Time) bool {
	if expiry == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, expiry)
	if err != nil {
		// Unparseable expiry is treated as expired; a reward with a broken
		// date must not grant a discount.
		return true
	}
	return now.After(t)
}
