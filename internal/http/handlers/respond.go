package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tajimart/internal/domain"
	applog "tajimart/internal/log"
	"tajimart/internal/pricing"
)

func jsonErr(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// fail maps engine errors onto HTTP statuses. Anything unrecognized is logged
// and returned as a generic 500 so internals never leak.
func fail(c *fiber.Ctx, action string, err error) error {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		applog.Security(c, action, map[string]any{"field": verr.Field, "reason": verr.Reason})
		return jsonErr(c, fiber.StatusBadRequest, verr.Error())
	}
	var cerr *pricing.CapacityError
	if errors.As(err, &cerr) {
		applog.Security(c, action, map[string]any{"what": cerr.What, "reason": cerr.Reason})
		return jsonErr(c, fiber.StatusConflict, cerr.Error())
	}
	var derr *pricing.DataUnavailableError
	if errors.As(err, &derr) {
		applog.Error(c, action, err, map[string]any{"source": derr.Source})
		return jsonErr(c, fiber.StatusServiceUnavailable, "required data unavailable, try again")
	}
	applog.Error(c, action, err, nil)
	return jsonErr(c, fiber.StatusInternalServerError, "something went wrong")
}

// optionalUser returns the logged-in user when the session middleware found
// one, nil otherwise.
func optionalUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// ensureSID guarantees the request carries a session cookie.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}
