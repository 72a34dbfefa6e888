package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tajimart/internal/config"
	"tajimart/internal/http/handlers"
	applog "tajimart/internal/log"
	"tajimart/internal/repos"
	"tajimart/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	cartRepo := repos.NewCartRepo(db)
	authSvc := &services.AuthService{Users: userRepo, Carts: cartRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please try again",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
				c.Locals("user_id", u.ID)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "security check failed, refresh and retry"})
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)

	// Catalog
	app.Get("/categories", deps.CategoryHandler.List)
	app.Get("/category/:id", deps.CategoryHandler.Products)
	app.Get("/product/:id", deps.ProductHandler.Detail)
	app.Get("/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.SearchHandler.Search)

	// Cart & checkout
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Put("/cart", deps.CartHandler.Update)
	app.Delete("/cart/:productId", deps.CartHandler.Remove)
	app.Post("/checkout/quote", deps.CheckoutHandler.Quote)
	app.Post("/orders", deps.CheckoutHandler.Place)
	app.Get("/order/:id", deps.CheckoutHandler.View)
	app.Get("/orders", handlers.RequireUser(authSvc), deps.CheckoutHandler.History)

	// Loyalty
	loyalty := app.Group("/loyalty", handlers.RequireUser(authSvc))
	loyalty.Get("/card", deps.LoyaltyHandler.Card)
	loyalty.Get("/progress", deps.LoyaltyHandler.Progress)
	loyalty.Get("/history/points", deps.LoyaltyHandler.PointsHistory)
	loyalty.Get("/history/tiers", deps.LoyaltyHandler.TierHistory)
	loyalty.Get("/rewards", deps.LoyaltyHandler.Rewards)
	loyalty.Post("/preview", deps.LoyaltyHandler.Preview)

	// Auth routes (login throttled)
	app.Post("/register", authH.Register)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)
	app.Get("/me", authH.Me)

	// Admin
	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/orders", deps.AdminHandler.Orders)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Post("/products", deps.AdminHandler.UpdateProduct)
	admin.Get("/thresholds", deps.AdminHandler.Thresholds)
	admin.Put("/thresholds", deps.AdminHandler.UpdateThresholds)
	admin.Post("/loyalty/points", deps.AdminHandler.AdjustPoints)
	admin.Post("/rewards", deps.AdminHandler.GrantReward)
	admin.Get("/users", deps.AdminHandler.UsersList)
	admin.Post("/users/:id/delete", deps.AdminHandler.DeleteUser)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
