package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tajimart/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return fail(c, "categories.list.fail", err)
	}
	return c.JSON(fiber.Map{"categories": cats})
}

func (h *CategoryHandler) Products(c *fiber.Ctx) error {
	catID := c.Params("id")
	page := c.QueryInt("page", 1)
	products, err := h.Catalog.ListProductsByCategory(catID, page, 12)
	if err != nil {
		return fail(c, "category.products.fail", err)
	}
	return c.JSON(fiber.Map{"categoryId": catID, "products": products})
}
