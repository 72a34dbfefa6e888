package services_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"tajimart/internal/domain"
	"tajimart/internal/repos"
	"tajimart/internal/services"
)

type testEnv struct {
	db       *sqlx.DB
	prods    *repos.ProductRepo
	orders   *repos.OrderRepo
	cart     *services.CartService
	loyalty  *services.LoyaltyService
	campaign *services.CampaignService
	checkout *services.CheckoutService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	cartRepo := repos.NewCartRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	loyaltyRepo := repos.NewLoyaltyRepo(db)
	thresholdRepo := repos.NewThresholdRepo(db)
	rewardRepo := repos.NewRewardRepo(db)

	loyaltySvc := services.NewLoyaltyService(loyaltyRepo, thresholdRepo)
	campaignSvc := services.NewCampaignService(rewardRepo, loyaltySvc)
	return &testEnv{
		db:       db,
		prods:    prodRepo,
		orders:   orderRepo,
		cart:     services.NewCartService(cartRepo, prodRepo),
		loyalty:  loyaltySvc,
		campaign: campaignSvc,
		checkout: services.NewCheckoutService(cartRepo, prodRepo, orderRepo, loyaltySvc, campaignSvc, thresholdRepo),
	}
}

func farFuture() time.Time { return time.Now().AddDate(1, 0, 0) }

func eq(t *testing.T, got decimal.Decimal, want int64, label string) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s: want %d, got %s", label, want, got)
	}
}

// Full storefront flow: a Silver customer buys two discounted bags of maize.
// Unit 650 with 10% product discount -> 585; Silver 3% of 585 -> 18 off; final
// unit 567, so 1134 for two.
func TestCheckoutFlow_QuoteAndPlace(t *testing.T) {
	env := newEnv(t)
	user := &domain.User{ID: "u-wanjiku", Role: "USER"}

	env.loyalty.Account(user.ID, false)
	if err := env.loyalty.Adjust(user.ID, 2000, "migration"); err != nil {
		t.Fatal(err)
	}

	sid := "sess-checkout"
	if err := env.cart.Add(sid, "maize-5kg", 2); err != nil {
		t.Fatal(err)
	}

	q, err := env.checkout.Quote(sid, user, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if q.Tier != domain.TierSilver {
		t.Fatalf("want Silver, got %s", q.Tier)
	}
	eq(t, q.Subtotal, 1300, "subtotal")
	eq(t, q.ProductDiscountTotal, 130, "product discount")
	eq(t, q.TierDiscountTotal, 36, "tier discount")
	eq(t, q.FinalTotal, 1134, "final total")

	orderID, placed, err := env.checkout.Place(services.PlaceRequest{
		SessionID:     sid,
		User:          user,
		PaymentMethod: "mpesa",
		Contact:       services.Contact{Name: "Wanjiku", Email: "wanjiku@tajimart.test"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if orderID == "" {
		t.Fatal("no order id")
	}
	eq(t, placed.FinalTotal, 1134, "placed total")

	// order persisted with the quoted breakdown, not a recomputation
	row, items, err := env.orders.Get(orderID)
	if err != nil {
		t.Fatal(err)
	}
	eq(t, row.Total, 1134, "stored total")
	eq(t, row.TierDiscount, 36, "stored tier discount")
	if row.Tier != "Silver" || row.PaymentMethod != "mpesa" {
		t.Fatalf("bad order row: %+v", row)
	}
	if len(items) != 1 || !items[0].FinalUnitPrice.Equal(decimal.NewFromInt(567)) {
		t.Fatalf("bad order items: %+v", items)
	}

	// stock 120 -> 118
	stock, err := env.prods.Stock("maize-5kg")
	if err != nil {
		t.Fatal(err)
	}
	if stock != 118 {
		t.Fatalf("want stock 118, got %d", stock)
	}

	// one point per 100 paid: 2000 + 11
	a := env.loyalty.Account(user.ID, false)
	if a.Points != 2011 {
		t.Fatalf("want 2011 points, got %d", a.Points)
	}

	// cart cleared
	lines, err := env.cart.Lines(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Fatalf("cart not cleared: %+v", lines)
	}
}

// Redeeming a small balance deducts it and earns points on what was actually
// paid.
func TestCheckoutFlow_PointsRedemption(t *testing.T) {
	env := newEnv(t)
	user := &domain.User{ID: "u-otieno", Role: "USER"}

	env.loyalty.Account(user.ID, false)
	if err := env.loyalty.Adjust(user.ID, 50, "promo"); err != nil {
		t.Fatal(err)
	}

	sid := "sess-redeem"
	if err := env.cart.Add(sid, "soap-4pk", 1); err != nil {
		t.Fatal(err)
	}

	_, placed, err := env.checkout.Place(services.PlaceRequest{
		SessionID:    sid,
		User:         user,
		RedeemPoints: true,
		Contact:      services.Contact{Name: "Otieno", Email: "otieno@tajimart.test"},
	})
	if err != nil {
		t.Fatal(err)
	}
	eq(t, placed.PointsRedeemed, 50, "points redeemed")
	eq(t, placed.FinalTotal, 260, "final total")

	// 50 deducted, floor(260/100)=2 earned
	a := env.loyalty.Account(user.ID, false)
	if a.Points != 2 {
		t.Fatalf("want 2 points, got %d", a.Points)
	}
}

// A discount reward applies once and is consumed at placement; reusing it
// fails the whole quote.
func TestCheckoutFlow_RewardConsumedOnce(t *testing.T) {
	env := newEnv(t)
	user := &domain.User{ID: "u-wanjiku", Role: "USER"}
	env.loyalty.Account(user.ID, false)

	rw, err := env.campaign.Grant(user.ID, domain.RewardDiscount, 10, "Tree Planting Drive", farFuture())
	if err != nil {
		t.Fatal(err)
	}

	sid := "sess-reward"
	if err := env.cart.Add(sid, "rice-2kg", 1); err != nil {
		t.Fatal(err)
	}

	// 480, no product discount, Basic tier: reward 10% -> 48 off, final 432
	_, placed, err := env.checkout.Place(services.PlaceRequest{
		SessionID: sid,
		User:      user,
		RewardID:  rw.ID,
		Contact:   services.Contact{Name: "Wanjiku", Email: "wanjiku@tajimart.test"},
	})
	if err != nil {
		t.Fatal(err)
	}
	eq(t, placed.RewardDiscount, 48, "reward discount")
	eq(t, placed.FinalTotal, 432, "final total")

	// second attempt with the same reward fails before any side effect
	if err := env.cart.Add(sid, "rice-2kg", 1); err != nil {
		t.Fatal(err)
	}
	if _, _, err := env.checkout.Place(services.PlaceRequest{
		SessionID: sid,
		User:      user,
		RewardID:  rw.ID,
		Contact:   services.Contact{Name: "Wanjiku", Email: "wanjiku@tajimart.test"},
	}); err == nil {
		t.Fatal("expected consumed reward to fail the quote")
	}
	stock, _ := env.prods.Stock("rice-2kg")
	if stock != 79 {
		t.Fatalf("second attempt must not touch stock, got %d", stock)
	}
}
