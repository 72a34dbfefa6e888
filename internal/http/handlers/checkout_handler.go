package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "tajimart/internal/log"
	"tajimart/internal/repos"
	"tajimart/internal/services"
	"tajimart/internal/validate"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
	Orders   *repos.OrderRepo
	Auth     *services.AuthService
}

type quoteInputBody struct {
	RewardID     string `json:"rewardId"`
	RedeemPoints bool   `json:"redeemPoints"`
}

type placeInputBody struct {
	RewardID      string `json:"rewardId"`
	RedeemPoints  bool   `json:"redeemPoints"`
	PaymentMethod string `json:"paymentMethod"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

// Quote prices the current cart without side effects. The client renders the
// returned breakdown as-is; it never does its own arithmetic.
func (h *CheckoutHandler) Quote(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in quoteInputBody
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	q, err := h.Checkout.Quote(sid, optionalUser(c), in.RewardID, in.RedeemPoints)
	if err != nil {
		return fail(c, "checkout.quote.fail", err)
	}
	return c.JSON(q)
}

// Place finalizes the order from a fresh server-side quote.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in placeInputBody
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}

	email, ok := validate.Email(in.Email)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return jsonErr(c, fiber.StatusBadRequest, "invalid email")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "name"})
		return jsonErr(c, fiber.StatusBadRequest, "name must be 1-20 characters")
	}
	pay := in.PaymentMethod
	if pay != "" {
		if pay, ok = validate.PaymentMethod(pay); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "paymentMethod"})
			return jsonErr(c, fiber.StatusBadRequest, "payment method must be card, mpesa or cod")
		}
	}

	orderID, q, err := h.Checkout.Place(services.PlaceRequest{
		SessionID:     sid,
		User:          optionalUser(c),
		RewardID:      in.RewardID,
		RedeemPoints:  in.RedeemPoints,
		PaymentMethod: pay,
		Contact:       services.Contact{Name: name, Email: email},
	})
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{"sid": sid, "error": err.Error()})
		return fail(c, "order.place.fail", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": orderID,
		"total":    q.FinalTotal.String(),
		"tier":     q.Tier,
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"orderId": orderID, "quote": q})
}

// View shows one order. Ownership: session owner or the order's user; admins
// may view anything.
func (h *CheckoutHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonErr(c, fiber.StatusNotFound, "order not found")
	}

	o, items, err := h.Orders.Get(oid)
	if err != nil {
		return jsonErr(c, fiber.StatusNotFound, "order not found")
	}

	sid := c.Cookies("sid")
	u := optionalUser(c)
	owner := (sid != "" && sid == o.SessionID) || (u != nil && u.ID == o.UserID)
	if !owner && !u.IsAdmin() {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return jsonErr(c, fiber.StatusNotFound, "order not found")
	}

	return c.JSON(fiber.Map{"order": o, "items": items})
}

// History lists orders for the current logged-in user.
func (h *CheckoutHandler) History(c *fiber.Ctx) error {
	u := optionalUser(c)
	if u == nil {
		return jsonErr(c, fiber.StatusUnauthorized, "login required")
	}
	orders, err := h.Orders.ListByUser(u.ID)
	if err != nil {
		return fail(c, "orders.history.fail", err)
	}
	// Fallback: show session orders if none linked to user (e.g., pre-login)
	if len(orders) == 0 {
		if sid := c.Cookies("sid"); sid != "" {
			if sessOrders, err := h.Orders.ListBySession(sid); err == nil && len(sessOrders) > 0 {
				orders = sessOrders
			}
		}
	}
	return c.JSON(fiber.Map{"orders": orders})
}
