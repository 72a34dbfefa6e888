package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tajimart/internal/log"
	"tajimart/internal/services"
	"tajimart/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return jsonErr(c, fiber.StatusUnauthorized, "invalid email or password")
	}
	if !validate.Password(in.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return jsonErr(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	u, err := h.Auth.Login(sid, email, in.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return jsonErr(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return jsonErr(c, fiber.StatusBadRequest, "malformed body")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return jsonErr(c, fiber.StatusBadRequest, "invalid email")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return jsonErr(c, fiber.StatusBadRequest, "name must be 1-20 characters")
	}
	if !validate.Password(in.Password) {
		return jsonErr(c, fiber.StatusBadRequest, "password must be 8-20 characters with upper, lower, digit and symbol")
	}

	u, err := h.Auth.Register(sid, email, name, in.Password)
	if err == services.ErrEmailTaken {
		return jsonErr(c, fiber.StatusConflict, "email already registered")
	}
	if err != nil {
		return fail(c, "auth.register.fail", err)
	}
	log.Audit(c, "auth.register", map[string]any{"email": email})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid == "" {
		return jsonErr(c, fiber.StatusUnauthorized, "login required")
	}
	u, err := h.Auth.CurrentUser(sid)
	if err != nil || u == nil {
		return jsonErr(c, fiber.StatusUnauthorized, "login required")
	}
	return c.JSON(fiber.Map{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role})
}
