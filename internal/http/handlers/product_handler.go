package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tajimart/internal/log"
	"tajimart/internal/services"
	"tajimart/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return jsonErr(c, fiber.StatusNotFound, "this item is no longer available")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil || p.ID == "" {
		return jsonErr(c, fiber.StatusNotFound, "this item is no longer available")
	}
	return c.JSON(p)
}
