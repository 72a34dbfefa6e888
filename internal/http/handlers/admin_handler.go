package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tajimart/internal/domain"
	applog "tajimart/internal/log"
	"tajimart/internal/repos"
	"tajimart/internal/services"
	"tajimart/internal/validate"
)

type AdminHandler struct {
	OrderRepo *repos.OrderRepo
	Users     *repos.UserRepo
	Catalog   *services.CatalogService
	Loyalty   *services.LoyaltyService
	Campaigns *services.CampaignService
}

// GET /admin/orders
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ords, err := h.OrderRepo.ListLatest(100)
	if err != nil {
		return fail(c, "admin.orders.list.fail", err)
	}
	return c.JSON(fiber.Map{"orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var in struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&in); err != nil || id == "" || in.Status == "" {
		return jsonErr(c, fiber.StatusBadRequest, "missing id or status")
	}
	if err := h.OrderRepo.UpdateStatus(id, in.Status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return jsonErr(c, fiber.StatusBadRequest, "could not update status")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": in.Status})
	return c.JSON(fiber.Map{"ok": true})
}

type stockInput struct {
	ProductID string `json:"productId"`
	Stock     *int   `json:"stock"`
	Discount  *int   `json:"discountPercent"`
}

// POST /admin/products sets stock and/or the promotional discount.
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	var in stockInput
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	pid, ok := validate.ID(in.ProductID)
	if !ok {
		return jsonErr(c, fiber.StatusBadRequest, "invalid productId")
	}
	if in.Stock == nil && in.Discount == nil {
		return jsonErr(c, fiber.StatusBadRequest, "nothing to update")
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return jsonErr(c, fiber.StatusBadRequest, "stock must be non-negative")
		}
		if err := h.Catalog.SetStock(pid, *in.Stock); err != nil {
			return fail(c, "admin.product.stock.fail", err)
		}
	}
	if in.Discount != nil {
		if !validate.Percent(*in.Discount) {
			return jsonErr(c, fiber.StatusBadRequest, "discount percent must be within 0..100")
		}
		if err := h.Catalog.SetDiscount(pid, *in.Discount); err != nil {
			return fail(c, "admin.product.discount.fail", err)
		}
	}
	applog.Audit(c, "admin.product.update", map[string]any{"product": pid})
	return c.JSON(fiber.Map{"ok": true})
}

// GET /admin/thresholds
func (h *AdminHandler) Thresholds(c *fiber.Ctx) error {
	cfg, err := h.Loyalty.ActiveThresholds()
	if err != nil {
		return fail(c, "admin.thresholds.load.fail", err)
	}
	return c.JSON(thresholdsPayload(cfg))
}

type thresholdsInput struct {
	Bronze             [2]int64 `json:"bronze"` // [standard, early]
	Silver             [2]int64 `json:"silver"`
	Gold               [2]int64 `json:"gold"`
	Platinum           [2]int64 `json:"platinum"`
	EarlyAccessEnabled bool     `json:"earlyAccessEnabled"`
	Notes              string   `json:"notes"`
}

// PUT /admin/thresholds stores a new ladder revision. A rejected ladder
// changes nothing; customers keep pricing against the previous revision.
func (h *AdminHandler) UpdateThresholds(c *fiber.Ctx) error {
	var in thresholdsInput
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	cfg := domain.TierThresholdConfig{
		Bronze:             domain.TierThresholds{Standard: in.Bronze[0], Early: in.Bronze[1]},
		Silver:             domain.TierThresholds{Standard: in.Silver[0], Early: in.Silver[1]},
		Gold:               domain.TierThresholds{Standard: in.Gold[0], Early: in.Gold[1]},
		Platinum:           domain.TierThresholds{Standard: in.Platinum[0], Early: in.Platinum[1]},
		EarlyAccessEnabled: in.EarlyAccessEnabled,
	}
	u := optionalUser(c)
	updatedBy := ""
	if u != nil {
		updatedBy = u.ID
	}
	if err := h.Loyalty.UpdateThresholds(cfg, updatedBy, in.Notes); err != nil {
		return fail(c, "admin.thresholds.update.fail", err)
	}
	applog.Audit(c, "admin.thresholds.update", map[string]any{
		"early_access": in.EarlyAccessEnabled,
		"notes":        in.Notes,
	})
	return c.JSON(thresholdsPayload(cfg))
}

func thresholdsPayload(cfg domain.TierThresholdConfig) fiber.Map {
	return fiber.Map{
		"bronze":             [2]int64{cfg.Bronze.Standard, cfg.Bronze.Early},
		"silver":             [2]int64{cfg.Silver.Standard, cfg.Silver.Early},
		"gold":               [2]int64{cfg.Gold.Standard, cfg.Gold.Early},
		"platinum":           [2]int64{cfg.Platinum.Standard, cfg.Platinum.Early},
		"earlyAccessEnabled": cfg.EarlyAccessEnabled,
	}
}

type pointsInput struct {
	UserID string `json:"userId"`
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

// POST /admin/loyalty/points applies a manual correction to a card.
func (h *AdminHandler) AdjustPoints(c *fiber.Ctx) error {
	var in pointsInput
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	if _, ok := validate.ID(in.UserID); !ok {
		return jsonErr(c, fiber.StatusBadRequest, "invalid userId")
	}
	if !validate.Points(in.Delta) {
		return jsonErr(c, fiber.StatusBadRequest, "delta must be non-zero and bounded")
	}
	if in.Reason == "" {
		in.Reason = "admin adjustment"
	}
	if err := h.Loyalty.Adjust(in.UserID, in.Delta, in.Reason); err != nil {
		return fail(c, "admin.loyalty.adjust.fail", err)
	}
	applog.Audit(c, "admin.loyalty.adjust", map[string]any{"user_id": in.UserID, "delta": in.Delta, "reason": in.Reason})
	return c.JSON(fiber.Map{"ok": true})
}

type grantInput struct {
	UserID        string `json:"userId"`
	Type          string `json:"type"`
	Value         int    `json:"value"`
	CampaignTitle string `json:"campaignTitle"`
	ExpiresInDays int    `json:"expiresInDays"`
}

// POST /admin/rewards issues a community-campaign reward to a user.
func (h *AdminHandler) GrantReward(c *fiber.Ctx) error {
	var in grantInput
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	if _, ok := validate.ID(in.UserID); !ok {
		return jsonErr(c, fiber.StatusBadRequest, "invalid userId")
	}
	if in.CampaignTitle == "" {
		return jsonErr(c, fiber.StatusBadRequest, "missing campaignTitle")
	}
	if in.ExpiresInDays < 1 || in.ExpiresInDays > 365 {
		in.ExpiresInDays = 30
	}
	rw, err := h.Campaigns.Grant(in.UserID, domain.RewardType(in.Type), in.Value,
		in.CampaignTitle, time.Now().AddDate(0, 0, in.ExpiresInDays))
	if err != nil {
		return fail(c, "admin.rewards.grant.fail", err)
	}
	applog.Audit(c, "admin.rewards.grant", map[string]any{"user_id": in.UserID, "type": in.Type, "reward_id": rw.ID})
	return c.Status(fiber.StatusCreated).JSON(rw)
}

// UsersPage lists users (excluding admin).
func (h *AdminHandler) UsersList(c *fiber.Ctx) error {
	var users []struct {
		ID    string `db:"id" json:"id"`
		Email string `db:"email" json:"email"`
		Name  string `db:"name" json:"name"`
		Role  string `db:"role" json:"role"`
	}
	if err := h.Users.DB.Select(&users, `SELECT id,email,name,role FROM users WHERE role != 'ADMIN' ORDER BY email`); err != nil {
		return fail(c, "admin.users.list.fail", err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// DeleteUser deletes a user and related data, cancels their orders.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return jsonErr(c, fiber.StatusBadRequest, "missing id")
	}
	if err := h.Users.DeleteUserCascade(id); err != nil {
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"user_id": id})
		return jsonErr(c, fiber.StatusBadRequest, "could not delete user")
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.JSON(fiber.Map{"ok": true})
}
