package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tajimart/internal/domain"
	applog "tajimart/internal/log"
	"tajimart/internal/services"
)

type LoyaltyHandler struct {
	Loyalty   *services.LoyaltyService
	Campaigns *services.CampaignService
}

// Card returns the loyalty card with its freshly resolved tier. If loyalty
// data could not be verified the payload says so and shows zero benefits.
func (h *LoyaltyHandler) Card(c *fiber.Ctx) error {
	u := optionalUser(c)
	a, res, err := h.Loyalty.Resolve(u.ID, u.IsAdmin())
	if err != nil {
		return fail(c, "loyalty.card.fail", err)
	}

	out := fiber.Map{
		"cardNumber": a.CardNumber,
		"points":     a.Points,
		"tier":       res.Tier,
		"tierStatus": res.Status,
		"percent":    res.Tier.DiscountPercent(),
		"isActive":   a.IsActive,
		"expiresAt":  a.ExpiresAt,
		"verified":   a.Verified,
	}
	// A preview only changes what this endpoint displays, never the tier the
	// engine prices with.
	if p, ok := h.Loyalty.Preview(u.ID, time.Now()); ok {
		out["previewTier"] = p.Tier
		out["previewExpiresAt"] = p.ExpiresAt.Format(time.RFC3339)
	}
	return c.JSON(out)
}

func (h *LoyaltyHandler) Progress(c *fiber.Ctx) error {
	u := optionalUser(c)
	p, err := h.Loyalty.Progress(u.ID, u.IsAdmin())
	if err != nil {
		return fail(c, "loyalty.progress.fail", err)
	}
	return c.JSON(fiber.Map{
		"current":       p.Current,
		"nextTier":      p.NextTier,
		"pointsToNext":  p.PointsToNext,
		"nextThreshold": p.NextThreshold,
		"earlyEligible": p.EarlyEligible,
	})
}

func (h *LoyaltyHandler) PointsHistory(c *fiber.Ctx) error {
	u := optionalUser(c)
	hist, err := h.Loyalty.PointsHistory(u.ID, c.QueryInt("limit", 50))
	if err != nil {
		return fail(c, "loyalty.points_history.fail", err)
	}
	return c.JSON(fiber.Map{"history": hist})
}

func (h *LoyaltyHandler) TierHistory(c *fiber.Ctx) error {
	u := optionalUser(c)
	hist, err := h.Loyalty.TierHistory(u.ID, c.QueryInt("limit", 50))
	if err != nil {
		return fail(c, "loyalty.tier_history.fail", err)
	}
	return c.JSON(fiber.Map{"history": hist})
}

// Rewards lists the community rewards still usable at checkout.
func (h *LoyaltyHandler) Rewards(c *fiber.Ctx) error {
	u := optionalUser(c)
	rewards, err := h.Campaigns.Active(u.ID, time.Now())
	if err != nil {
		return fail(c, "loyalty.rewards.fail", err)
	}
	return c.JSON(fiber.Map{"rewards": rewards})
}

type previewInput struct {
	Tier    string `json:"tier"`
	Minutes int    `json:"minutes"`
}

// Preview sets a short-lived display-only tier preview so the customer can
// see what a higher rung would look like.
func (h *LoyaltyHandler) Preview(c *fiber.Ctx) error {
	u := optionalUser(c)
	var in previewInput
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	if in.Minutes < 1 || in.Minutes > 60 {
		in.Minutes = 15
	}
	if err := h.Loyalty.SetPreview(u.ID, domain.Tier(in.Tier), time.Duration(in.Minutes)*time.Minute); err != nil {
		return fail(c, "loyalty.preview.fail", err)
	}
	applog.Audit(c, "loyalty.preview.set", map[string]any{"tier": in.Tier, "minutes": in.Minutes})
	return c.JSON(fiber.Map{"ok": true})
}
