package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tajimart/internal/config"
	"tajimart/internal/http/handlers"
	"tajimart/internal/repos"
	"tajimart/internal/services"
)

func newQuoteApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	cartRepo := repos.NewCartRepo(db)
	authSvc := &services.AuthService{Users: userRepo, Carts: cartRepo}

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{KeyLookup: "header:X-CSRF-Token", CookieName: "csrf_", CookieSameSite: "Lax"}))
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
				c.Locals("user_id", u.ID)
			}
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, config.Config{}, authSvc)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/checkout/quote", deps.CheckoutHandler.Quote)
	return app
}

func extractCookieQuote(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Totals always come from the server-side pipeline; anything the client sends
// about prices is ignored.
func TestQuoteTotalsAreServerComputed(t *testing.T) {
	app := newQuoteApp(t)

	respHealth, _ := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	csrfTok := extractCookieQuote(respHealth, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}

	// guest adds two bags of maize (650 each, 10% off -> 585 each)
	reqCart := httptest.NewRequest("POST", "/cart", strings.NewReader(`{"productId":"maize-5kg","qty":2}`))
	reqCart.Header.Set("Content-Type", "application/json")
	reqCart.Header.Set("X-CSRF-Token", csrfTok)
	reqCart.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	respCart, err := app.Test(reqCart)
	if err != nil {
		t.Fatal(err)
	}
	if respCart.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(respCart.Body)
		t.Fatalf("cart add failed: %d %s", respCart.StatusCode, body)
	}
	sid := extractCookieQuote(respCart, "sid")
	if sid == "" {
		t.Fatal("sid not set after cart add")
	}

	// the bogus totals in the body must have no effect
	body := `{"redeemPoints":false,"finalTotal":"1","subtotal":"1"}`
	reqQuote := httptest.NewRequest("POST", "/checkout/quote", strings.NewReader(body))
	reqQuote.Header.Set("Content-Type", "application/json")
	reqQuote.Header.Set("X-CSRF-Token", csrfTok)
	reqQuote.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	reqQuote.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	respQuote, err := app.Test(reqQuote)
	if err != nil {
		t.Fatal(err)
	}
	if respQuote.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(respQuote.Body)
		t.Fatalf("quote failed: %d %s", respQuote.StatusCode, b)
	}
	b, _ := io.ReadAll(respQuote.Body)
	s := string(b)
	if !strings.Contains(s, `"finalTotal":"1170"`) {
		t.Fatalf("expected server-computed total 1170; body=%s", s)
	}
	if !strings.Contains(s, `"productDiscountTotal":"130"`) {
		t.Fatalf("expected product discount 130; body=%s", s)
	}
	// guests get no loyalty benefits
	if !strings.Contains(s, `"loyaltyVerified":false`) || !strings.Contains(s, `"tierDiscountTotal":"0"`) {
		t.Fatalf("guest quote should carry no tier benefit; body=%s", s)
	}
}
