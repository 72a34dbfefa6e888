package pricing

import (
	"tajimart/internal/domain"
)

// TierResolution is the outcome of resolving a points balance against the
// threshold ladder.
type TierResolution struct {
	Tier   domain.Tier
	Status domain.TierStatus
}

// ResolveTier computes the effective tier for a points balance.
//
// prevTier is the last tier recorded for the account; it only matters for the
// hysteresis rule: when early access has been switched off, a customer sitting
// one rung above their standard tier keeps that rung (status protected) for as
// long as their points stay at or above its early threshold. Disabling the
// policy therefore never instantly demotes someone who was benefiting from it.
//
// Early elevation advances at most one rung per evaluation; nobody jumps two
// tiers above their standard tier in one step.
//
// Administrator accounts never reach this function; the caller pins them to
// Platinum as an explicit override.
func ResolveTier(points int64, prevTier domain.Tier, cfg domain.TierThresholdConfig) (TierResolution, error) {
	if points < 0 {
		return TierResolution{}, &ValidationError{Field: "points", Reason: "must be non-negative"}
	}
	if err := cfg.Validate(); err != nil {
		return TierResolution{}, &ValidationError{Field: "thresholds", Reason: err.Error()}
	}

	standard := standardTier(points, cfg)

	if cfg.EarlyAccessEnabled {
		next := standard.Next()
		if next != standard {
			th, _ := cfg.Thresholds(next)
			if points >= th.Early && points < th.Standard {
				return TierResolution{Tier: next, Status: domain.StatusEarlyActive}, nil
			}
		}
		return TierResolution{Tier: standard, Status: domain.StatusNone}, nil
	}

	// Policy off: protect a previously granted early-access rung while the
	// customer keeps enough points for it.
	if prevTier.Valid() && prevTier.Rank() == standard.Rank()+1 {
		if th, ok := cfg.Thresholds(prevTier); ok && points >= th.Early {
			return TierResolution{Tier: prevTier, Status: domain.StatusProtected}, nil
		}
	}

	return TierResolution{Tier: standard, Status: domain.StatusNone}, nil
}

// standardTier is the highest tier whose standard threshold the balance meets
// (inclusive lower bound), Basic if none qualify.
func standardTier(points int64, cfg domain.TierThresholdConfig) domain.Tier {
	tier := domain.TierBasic
	for _, t := range domain.Ladder[1:] {
		th, _ := cfg.Thresholds(t)
		if points >= th.Standard {
			tier = t
		}
	}
	return tier
}

// TierProgress describes how far a balance is from the next rung, for the
// loyalty card display.
type TierProgress struct {
	Current       domain.Tier
	NextTier      domain.Tier
	PointsToNext  int64
	NextThreshold int64
	EarlyEligible bool // next rung reachable via the early threshold
}

// ProgressTowards reports progress from an effective tier to the rung above.
// At Platinum there is no next rung and PointsToNext is zero.
func ProgressTowards(points int64, effective domain.Tier, cfg domain.TierThresholdConfig) TierProgress {
	next := effective.Next()
	if next == effective {
		return TierProgress{Current: effective, NextTier: effective}
	}
	th, _ := cfg.Thresholds(next)
	target := th.Standard
	early := false
	if cfg.EarlyAccessEnabled && th.Early < th.Standard {
		target = th.Early
		early = true
	}
	toNext := target - points
	if toNext < 0 {
		toNext = 0
	}
	return TierProgress{
		Current:       effective,
		NextTier:      next,
		PointsToNext:  toNext,
		NextThreshold: target,
		EarlyEligible: early,
	}
}
