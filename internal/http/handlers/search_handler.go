package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"tajimart/internal/log"
	"tajimart/internal/services"
	"tajimart/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		return c.JSON(fiber.Map{"q": "", "products": []any{}, "count": 0})
	}
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		return jsonErr(c, fiber.StatusBadRequest, "enter a valid keyword (letters/numbers only)")
	}
	q = strings.ToLower(q)
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, ok := validate.ID(category); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return jsonErr(c, fiber.StatusBadRequest, "invalid category")
		}
	}

	products, err := h.Catalog.Search(q, category, 1, 20)
	if err != nil {
		return fail(c, "search.error", err)
	}

	return c.JSON(fiber.Map{
		"q": q, "categoryId": category,
		"products": products, "count": len(products),
	})
}
