package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tajimart/internal/domain"
	"tajimart/internal/pricing"
)

func ladder(early bool) domain.TierThresholdConfig {
	cfg := domain.DefaultTierThresholdConfig()
	cfg.EarlyAccessEnabled = early
	return cfg
}

func TestResolveTier_StandardLadder(t *testing.T) {
	cfg := ladder(false)
	cases := []struct {
		points int64
		want   domain.Tier
	}{
		{0, domain.TierBasic},
		{499, domain.TierBasic},
		{500, domain.TierBronze},   // inclusive lower bound
		{1499, domain.TierBronze},  // one below the next rung
		{1500, domain.TierSilver},
		{2999, domain.TierSilver},
		{3000, domain.TierGold},
		{4999, domain.TierGold},
		{5000, domain.TierPlatinum},
		{999999, domain.TierPlatinum},
	}
	for _, tc := range cases {
		res, err := pricing.ResolveTier(tc.points, domain.TierBasic, cfg)
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Tier, "points=%d", tc.points)
		assert.Equal(t, domain.StatusNone, res.Status, "points=%d", tc.points)
	}
}

func TestResolveTier_EarlyAccessActive(t *testing.T) {
	// points=1200, Silver early threshold 1200, standard 1500 -> Silver/earlyActive
	res, err := pricing.ResolveTier(1200, domain.TierBronze, ladder(true))
	require.NoError(t, err)
	assert.Equal(t, domain.TierSilver, res.Tier)
	assert.Equal(t, domain.StatusEarlyActive, res.Status)
}

func TestResolveTier_EarlyAccessOneRungOnly(t *testing.T) {
	cfg := ladder(true)
	// 2500 already meets Gold's early threshold, but the customer's standard
	// tier is Silver (1500..2999), so the elevation is exactly one rung.
	res, err := pricing.ResolveTier(2500, domain.TierSilver, cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.TierGold, res.Tier)
	assert.Equal(t, domain.StatusEarlyActive, res.Status)

	// 1200 meets Silver's early threshold but not Gold's; standard is Bronze.
	// Never two rungs above standard in one step.
	res, err = pricing.ResolveTier(1200, domain.TierBasic, cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.TierSilver, res.Tier)
}

func TestResolveTier_EarlyAccessAtStandardBoundary(t *testing.T) {
	// Once the standard threshold is met the elevation is ordinary, not early.
	res, err := pricing.ResolveTier(1500, domain.TierBronze, ladder(true))
	require.NoError(t, err)
	assert.Equal(t, domain.TierSilver, res.Tier)
	assert.Equal(t, domain.StatusNone, res.Status)
}

func TestResolveTier_ProtectedAfterToggleOff(t *testing.T) {
	cfg := ladder(false)

	// Last recorded tier Silver, 1200 points >= Silver early threshold:
	// the rung is protected.
	res, err := pricing.ResolveTier(1200, domain.TierSilver, cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.TierSilver, res.Tier)
	assert.Equal(t, domain.StatusProtected, res.Status)

	// Points slip below the early threshold: protection ends, tier falls back
	// to the standard rung.
	res, err = pricing.ResolveTier(1100, domain.TierSilver, cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.TierBronze, res.Tier)
	assert.Equal(t, domain.StatusNone, res.Status)
}

func TestResolveTier_ProtectionIsOneRungWide(t *testing.T) {
	// A recorded tier two rungs above standard is not protected; hysteresis
	// only covers the single early-access rung.
	res, err := pricing.ResolveTier(1200, domain.TierGold, ladder(false))
	require.NoError(t, err)
	assert.Equal(t, domain.TierBronze, res.Tier)
	assert.Equal(t, domain.StatusNone, res.Status)
}

func TestResolveTier_ZeroPoints(t *testing.T) {
	res, err := pricing.ResolveTier(0, domain.TierBasic, ladder(true))
	require.NoError(t, err)
	assert.Equal(t, domain.TierBasic, res.Tier)
	assert.Equal(t, domain.StatusNone, res.Status)
}

func TestResolveTier_RejectsNegativePoints(t *testing.T) {
	_, err := pricing.ResolveTier(-1, domain.TierBasic, ladder(false))
	var verr *pricing.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestResolveTier_RejectsMisconfiguredThresholds(t *testing.T) {
	cfg := ladder(true)
	cfg.Silver.Early = cfg.Silver.Standard + 1 // early above standard
	_, err := pricing.ResolveTier(1000, domain.TierBasic, cfg)
	var verr *pricing.ValidationError
	require.ErrorAs(t, err, &verr)

	cfg = ladder(true)
	cfg.Gold.Standard = cfg.Silver.Standard // ladder not strictly increasing
	_, err = pricing.ResolveTier(1000, domain.TierBasic, cfg)
	require.ErrorAs(t, err, &verr)
}

// For a fixed config the resolved rank never decreases as points grow.
func TestResolveTier_MonotonicInPoints(t *testing.T) {
	for _, early := range []bool{false, true} {
		cfg := ladder(early)
		prevRank := -1
		for p := int64(0); p <= 6000; p += 25 {
			res, err := pricing.ResolveTier(p, domain.TierBasic, cfg)
			require.NoError(t, err)
			require.GreaterOrEqual(t, res.Tier.Rank(), prevRank,
				"rank fell at points=%d early=%v", p, early)
			prevRank = res.Tier.Rank()
		}
	}
}

func TestProgressTowards(t *testing.T) {
	cfg := ladder(false)
	p := pricing.ProgressTowards(700, domain.TierBronze, cfg)
	assert.Equal(t, domain.TierSilver, p.NextTier)
	assert.Equal(t, int64(800), p.PointsToNext)
	assert.False(t, p.EarlyEligible)

	cfg.EarlyAccessEnabled = true
	p = pricing.ProgressTowards(700, domain.TierBronze, cfg)
	assert.Equal(t, int64(500), p.PointsToNext) // 1200 early target
	assert.True(t, p.EarlyEligible)

	p = pricing.ProgressTowards(9000, domain.TierPlatinum, cfg)
	assert.Equal(t, domain.TierPlatinum, p.NextTier)
	assert.Zero(t, p.PointsToNext)
}
