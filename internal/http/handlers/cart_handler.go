package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tajimart/internal/services"
	"tajimart/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
}

type cartItemInput struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in cartItemInput
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	if _, ok := validate.ID(in.ProductID); !ok {
		return jsonErr(c, fiber.StatusBadRequest, "missing productId")
	}
	qty := validate.ClampQty(in.Qty)
	if err := h.Cart.Add(sid, in.ProductID, qty); err != nil {
		return fail(c, "cart.add.fail", err)
	}
	return h.View(c)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in cartItemInput
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	if _, ok := validate.ID(in.ProductID); !ok {
		return jsonErr(c, fiber.StatusBadRequest, "missing productId")
	}
	if in.Qty < 0 || in.Qty > 50 {
		return jsonErr(c, fiber.StatusBadRequest, "qty out of range")
	}
	if err := h.Cart.SetQty(sid, in.ProductID, in.Qty); err != nil {
		return fail(c, "cart.update.fail", err)
	}
	return h.View(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return jsonErr(c, fiber.StatusBadRequest, "missing productId")
	}
	if err := h.Cart.Remove(sid, pid); err != nil {
		return fail(c, "cart.remove.fail", err)
	}
	return h.View(c)
}

// View prices the cart through the quote pipeline so the customer always sees
// the same numbers checkout will charge. An empty cart is a valid view, not
// an error.
func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	lines, err := h.Cart.Lines(sid)
	if err != nil {
		return fail(c, "cart.view.fail", err)
	}
	if len(lines) == 0 {
		return c.JSON(fiber.Map{"lines": []any{}, "empty": true})
	}
	q, err := h.Checkout.Quote(sid, optionalUser(c), "", false)
	if err != nil {
		return fail(c, "cart.view.fail", err)
	}
	return c.JSON(q)
}
