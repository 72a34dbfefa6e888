package services_test

import (
	"strings"
	"testing"
	"time"

	"tajimart/internal/domain"
)

func TestLoyalty_CardIssuedOnFirstUse(t *testing.T) {
	env := newEnv(t)

	a := env.loyalty.Account("u-wanjiku", false)
	if !a.Verified {
		t.Fatal("expected a verified account")
	}
	if !strings.HasPrefix(a.CardNumber, "TAJI") {
		t.Fatalf("card number %q missing TAJI prefix", a.CardNumber)
	}
	if a.Tier != domain.TierBasic || a.Points != 0 {
		t.Fatalf("new card should be Basic with 0 points: %+v", a)
	}

	// second call returns the same card
	b := env.loyalty.Account("u-wanjiku", false)
	if b.CardNumber != a.CardNumber {
		t.Fatalf("card number changed: %s vs %s", a.CardNumber, b.CardNumber)
	}
}

func TestLoyalty_AdminCardPinnedPlatinum(t *testing.T) {
	env := newEnv(t)

	a := env.loyalty.Account("u-admin", true)
	if !a.Override || a.Tier != domain.TierPlatinum {
		t.Fatalf("admin card should be pinned Platinum: %+v", a)
	}
	// zero points, still Platinum after resolution
	_, res, err := env.loyalty.Resolve("u-admin", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != domain.TierPlatinum {
		t.Fatalf("override lost on resolve: %s", res.Tier)
	}
}

func TestLoyalty_TierChangeRecorded(t *testing.T) {
	env := newEnv(t)
	env.loyalty.Account("u-wanjiku", false)

	if err := env.loyalty.Adjust("u-wanjiku", 1600, "migration"); err != nil {
		t.Fatal(err)
	}
	a := env.loyalty.Account("u-wanjiku", false)
	if a.Tier != domain.TierSilver {
		t.Fatalf("want Silver at 1600 points, got %s", a.Tier)
	}

	hist, err := env.loyalty.TierHistory("u-wanjiku", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) == 0 || hist[0].Tier != domain.TierSilver || hist[0].Method != "standard" {
		t.Fatalf("tier history missing standard Silver entry: %+v", hist)
	}

	points, err := env.loyalty.PointsHistory("u-wanjiku", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) == 0 || points[0].Points != 1600 || points[0].Reason != "migration" {
		t.Fatalf("points history missing entry: %+v", points)
	}
}

func TestLoyalty_EarlyAccessLadderSwitch(t *testing.T) {
	env := newEnv(t)
	env.loyalty.Account("u-otieno", false)
	if err := env.loyalty.Adjust("u-otieno", 1200, "migration"); err != nil {
		t.Fatal(err)
	}

	// Default ladder, policy off: 1200 is Bronze.
	a := env.loyalty.Account("u-otieno", false)
	if a.Tier != domain.TierBronze {
		t.Fatalf("want Bronze, got %s", a.Tier)
	}

	// Turn early access on; 1200 meets Silver's early threshold.
	cfg := domain.DefaultTierThresholdConfig()
	cfg.EarlyAccessEnabled = true
	if err := env.loyalty.UpdateThresholds(cfg, "u-admin", "pilot"); err != nil {
		t.Fatal(err)
	}
	_, res, err := env.loyalty.Resolve("u-otieno", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != domain.TierSilver || res.Status != domain.StatusEarlyActive {
		t.Fatalf("want early-active Silver, got %s/%s", res.Tier, res.Status)
	}

	// Switch the policy back off: the rung is protected, not stripped.
	cfg.EarlyAccessEnabled = false
	if err := env.loyalty.UpdateThresholds(cfg, "u-admin", "pilot over"); err != nil {
		t.Fatal(err)
	}
	_, res, err = env.loyalty.Resolve("u-otieno", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != domain.TierSilver || res.Status != domain.StatusProtected {
		t.Fatalf("want protected Silver, got %s/%s", res.Tier, res.Status)
	}
}

func TestLoyalty_RejectsBadLadder(t *testing.T) {
	env := newEnv(t)

	cfg := domain.DefaultTierThresholdConfig()
	cfg.Gold.Early = cfg.Gold.Standard + 1
	if err := env.loyalty.UpdateThresholds(cfg, "u-admin", "typo"); err == nil {
		t.Fatal("expected ladder with early > standard to be rejected")
	}

	// active ladder unchanged
	active, err := env.loyalty.ActiveThresholds()
	if err != nil {
		t.Fatal(err)
	}
	if active.Gold.Early != 2500 {
		t.Fatalf("active ladder mutated: %+v", active)
	}
}

func TestLoyalty_PreviewIsDisplayOnly(t *testing.T) {
	env := newEnv(t)
	user := &domain.User{ID: "u-wanjiku", Role: "USER"}
	env.loyalty.Account(user.ID, false)

	if err := env.loyalty.SetPreview(user.ID, domain.TierGold, time.Minute); err != nil {
		t.Fatal(err)
	}
	if p, ok := env.loyalty.Preview(user.ID, time.Now()); !ok || p.Tier != domain.TierGold {
		t.Fatalf("preview not visible: %+v ok=%v", p, ok)
	}

	// Pricing still uses the real (Basic) tier.
	sid := "sess-preview"
	if err := env.cart.Add(sid, "rice-2kg", 1); err != nil {
		t.Fatal(err)
	}
	q, err := env.checkout.Quote(sid, user, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if q.Tier != domain.TierBasic || q.TierPercent != 0 {
		t.Fatalf("preview leaked into pricing: %s/%d", q.Tier, q.TierPercent)
	}

	// Past its window the preview resolves to nothing.
	if _, ok := env.loyalty.Preview(user.ID, time.Now().Add(2*time.Minute)); ok {
		t.Fatal("expired preview still visible")
	}
}

func TestCampaign_PointsRewardCreditsImmediately(t *testing.T) {
	env := newEnv(t)
	env.loyalty.Account("u-otieno", false)

	rw, err := env.campaign.Grant("u-otieno", domain.RewardPoints, 300, "Beach Cleanup", farFuture())
	if err != nil {
		t.Fatal(err)
	}
	if !rw.Consumed {
		t.Fatal("points reward should be stored consumed")
	}

	a := env.loyalty.Account("u-otieno", false)
	if a.Points != 300 {
		t.Fatalf("want 300 points credited, got %d", a.Points)
	}

	// never selectable at checkout
	active, err := env.campaign.Active("u-otieno", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("points reward should not be selectable: %+v", active)
	}
}

func TestCampaign_ExpiredRewardNotListed(t *testing.T) {
	env := newEnv(t)
	env.loyalty.Account("u-wanjiku", false)

	if _, err := env.campaign.Grant("u-wanjiku", domain.RewardShipping, 0, "River Cleanup", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	active, err := env.campaign.Active("u-wanjiku", time.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("expired reward listed: %+v", active)
	}

	if _, err := env.campaign.Grant("u-wanjiku", domain.RewardType("voucher"), 0, "bad", farFuture()); err == nil {
		t.Fatal("unknown reward type must be rejected")
	}
}
