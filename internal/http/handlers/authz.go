package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "tajimart/internal/log"
	"tajimart/internal/services"
)

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return jsonErr(c, fiber.StatusUnauthorized, "login required")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return jsonErr(c, fiber.StatusForbidden, "access denied")
		}
		c.Locals("user", u)
		c.Locals("user_id", u.ID)
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return jsonErr(c, fiber.StatusUnauthorized, "login required")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return jsonErr(c, fiber.StatusUnauthorized, "login required")
		}
		c.Locals("user", u)
		c.Locals("user_id", u.ID)
		return c.Next()
	}
}
