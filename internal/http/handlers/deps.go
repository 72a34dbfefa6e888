package handlers

import (
	"github.com/jmoiron/sqlx"

	"tajimart/internal/config"
	"tajimart/internal/repos"
	"tajimart/internal/services"
)

type Deps struct {
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	LoyaltyHandler  *LoyaltyHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	loyaltyRepo := repos.NewLoyaltyRepo(db)
	thresholdRepo := repos.NewThresholdRepo(db)
	rewardRepo := repos.NewRewardRepo(db)
	userRepo := repos.NewUserRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	loyaltySvc := services.NewLoyaltyService(loyaltyRepo, thresholdRepo)
	campaignSvc := services.NewCampaignService(rewardRepo, loyaltySvc)
	checkoutSvc := services.NewCheckoutService(cartRepo, prodRepo, orderRepo, loyaltySvc, campaignSvc, thresholdRepo)

	return &Deps{
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc, Checkout: checkoutSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc, Orders: orderRepo, Auth: auth},
		LoyaltyHandler:  &LoyaltyHandler{Loyalty: loyaltySvc, Campaigns: campaignSvc},
		AdminHandler: &AdminHandler{
			OrderRepo: orderRepo,
			Users:     userRepo,
			Catalog:   catalogSvc,
			Loyalty:   loyaltySvc,
			Campaigns: campaignSvc,
		},
	}
}
