package domain

import (
	"fmt"
	"time"
)

// Tier is a loyalty rank. The zero value is Basic; ranks form a total order.
type Tier string

const (
	TierBasic    Tier = "Basic"
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// Ladder lists all tiers in ascending rank order.
var Ladder = []Tier{TierBasic, TierBronze, TierSilver, TierGold, TierPlatinum}

var tierRank = map[Tier]int{
	TierBasic:    0,
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
}

func (t Tier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return 0
}

func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Next returns the tier one rung above, or the same tier for Platinum.
func (t Tier) Next() Tier {
	r := t.Rank()
	if r >= len(Ladder)-1 {
		return TierPlatinum
	}
	return Ladder[r+1]
}

// DiscountPercent is the storefront-wide discount conferred by a tier.
func (t Tier) DiscountPercent() int {
	switch t {
	case TierBronze:
		return 2
	case TierSilver:
		return 3
	case TierGold:
		return 5
	case TierPlatinum:
		return 7
	default:
		return 0
	}
}

// TierStatus tags how the effective tier was obtained.
type TierStatus string

const (
	StatusNone        TierStatus = "none"
	StatusEarlyActive TierStatus = "earlyActive"
	StatusProtected   TierStatus = "protected"
)

// LoyaltyAccount is a customer's loyalty card state.
//
// Tier is always derivable from Points and the active TierThresholdConfig,
// with one documented exception: Override pins administrator accounts to
// Platinum regardless of points.
//
// Verified is false when the account is a degraded fallback built after a
// failed loyalty lookup; a fallback account never earns discounts or
// redemption, only lets the UI render.
type LoyaltyAccount struct {
	UserID     string    `db:"user_id"`
	CardNumber string    `db:"card_number"`
	Points     int64     `db:"points"`
	Tier       Tier      `db:"tier"`
	Status     TierStatus
	Override   bool   `db:"override_platinum"`
	IsActive   bool   `db:"is_active"`
	ExpiresAt  string `db:"expires_at"`
	Verified   bool
}

// TierThresholds holds the point thresholds for one non-Basic tier.
type TierThresholds struct {
	Standard int64
	Early    int64
}

// TierThresholdConfig is the per-request snapshot of the loyalty ladder.
// It is read fresh for every quote; callers never cache it across requests.
type TierThresholdConfig struct {
	Bronze             TierThresholds
	Silver             TierThresholds
	Gold               TierThresholds
	Platinum           TierThresholds
	EarlyAccessEnabled bool
}

// DefaultTierThresholdConfig mirrors the seeded ladder.
func DefaultTierThresholdConfig() TierThresholdConfig {
	return TierThresholdConfig{
		Bronze:   TierThresholds{Standard: 500, Early: 400},
		Silver:   TierThresholds{Standard: 1500, Early: 1200},
		Gold:     TierThresholds{Standard: 3000, Early: 2500},
		Platinum: TierThresholds{Standard: 5000, Early: 3750},
	}
}

// Thresholds returns the thresholds for a non-Basic tier.
func (c TierThresholdConfig) Thresholds(t Tier) (TierThresholds, bool) {
	switch t {
	case TierBronze:
		return c.Bronze, true
	case TierSilver:
		return c.Silver, true
	case TierGold:
		return c.Gold, true
	case TierPlatinum:
		return c.Platinum, true
	default:
		return TierThresholds{}, false
	}
}

// Validate rejects misconfigured ladders instead of normalizing them:
// each tier's early threshold must not exceed its standard threshold, and
// both threshold sequences must be strictly increasing up the ladder.
func (c TierThresholdConfig) Validate() error {
	prev := TierThresholds{Standard: 0, Early: 0}
	prevTier := TierBasic
	for _, t := range Ladder[1:] {
		th, _ := c.Thresholds(t)
		if th.Standard <= 0 || th.Early < 0 {
			return fmt.Errorf("thresholds for %s must be positive", t)
		}
		if th.Early > th.Standard {
			return fmt.Errorf("early threshold for %s (%d) exceeds standard threshold (%d)", t, th.Early, th.Standard)
		}
		if th.Standard <= prev.Standard || th.Early <= prev.Early {
			return fmt.Errorf("thresholds for %s must be strictly above %s", t, prevTier)
		}
		prev = th
		prevTier = t
	}
	return nil
}

// PointsHistoryEntry records a points delta on a loyalty card.
type PointsHistoryEntry struct {
	Points int64  `db:"points"`
	Reason string `db:"reason"`
	Date   string `db:"date"`
}

// TierHistoryEntry records how a tier was acquired.
type TierHistoryEntry struct {
	Tier       Tier   `db:"tier"`
	Method     string `db:"method"` // standard | early_access | protected | admin_grant
	AcquiredAt string `db:"acquired_at"`
}

// TierPreview is a time-boxed, display-only tier override. It never reaches
// quote building or order placement; once ExpiresAt passes it resolves to nothing.
type TierPreview struct {
	Tier      Tier
	ExpiresAt time.Time
}

// Active reports whether the preview still applies at the given instant.
func (p TierPreview) Active(now time.Time) bool {
	return p.Tier.Valid() && p.Tier != TierBasic && now.Before(p.ExpiresAt)
}
