package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tajimart/internal/domain"
	"tajimart/internal/pricing"
	"tajimart/internal/repos"
)

type Contact struct {
	Name  string
	Email string
}

// CheckoutService turns a cart into a quote and a quote into an order. All
// pricing goes through the quote pipeline; placement persists the quoted
// breakdown verbatim, never a recomputation.
type CheckoutService struct {
	Carts      *repos.CartRepo
	Prods      *repos.ProductRepo
	Orders     *repos.OrderRepo
	Loyalty    *LoyaltyService
	Campaigns  *CampaignService
	Thresholds *repos.ThresholdRepo
}

func NewCheckoutService(carts *repos.CartRepo, prods *repos.ProductRepo, orders *repos.OrderRepo,
	loyalty *LoyaltyService, campaigns *CampaignService, thresholds *repos.ThresholdRepo) *CheckoutService {
	return &CheckoutService{
		Carts: carts, Prods: prods, Orders: orders,
		Loyalty: loyalty, Campaigns: campaigns, Thresholds: thresholds,
	}
}

// Quote prices the session's cart. Guests quote against an unverified
// account, so they see prices but no loyalty benefits.
func (s *CheckoutService) Quote(sessionID string, user *domain.User, rewardID string, redeemPoints bool) (pricing.CheckoutQuote, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return pricing.CheckoutQuote{}, err
	}
	lines, err := s.Carts.Lines(cartID)
	if err != nil {
		return pricing.CheckoutQuote{}, &pricing.DataUnavailableError{Source: "cart", Err: err}
	}

	account := domain.LoyaltyAccount{Tier: domain.TierBasic}
	var reward *domain.CommunityReward
	if user != nil {
		account = s.Loyalty.Account(user.ID, user.IsAdmin())
		reward, err = s.Campaigns.ForCheckout(user.ID, rewardID)
		if err != nil {
			return pricing.CheckoutQuote{}, err
		}
	} else if rewardID != "" {
		return pricing.CheckoutQuote{}, &pricing.ValidationError{Field: "rewardId", Reason: "login required to use rewards"}
	}

	cfg, err := s.Thresholds.Latest()
	if err != nil {
		return pricing.CheckoutQuote{}, &pricing.DataUnavailableError{Source: "thresholds", Err: err}
	}

	return pricing.BuildQuote(pricing.QuoteInput{
		Lines:        lines,
		Account:      account,
		Config:       cfg,
		Reward:       reward,
		RedeemPoints: redeemPoints,
		Now:          time.Now(),
	})
}

type PlaceRequest struct {
	SessionID     string
	User          *domain.User
	RewardID      string
	RedeemPoints  bool
	PaymentMethod string // card | mpesa | cod
	Contact       Contact
}

// Place quotes the cart one final time and persists the result: stock is
// decremented, the reward consumed, points deducted and re-earned, and the
// order stored with the full breakdown.
func (s *CheckoutService) Place(req PlaceRequest) (string, pricing.CheckoutQuote, error) {
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cod"
	}

	q, err := s.Quote(req.SessionID, req.User, req.RewardID, req.RedeemPoints)
	if err != nil {
		return "", pricing.CheckoutQuote{}, err
	}

	// pre-check stock
	for _, l := range q.Lines {
		have, err := s.Prods.Stock(l.ProductID)
		if err != nil {
			return "", pricing.CheckoutQuote{}, &pricing.DataUnavailableError{Source: "stock", Err: err}
		}
		if have < l.Quantity {
			return "", pricing.CheckoutQuote{}, &pricing.CapacityError{
				What:   "stock " + l.ProductID,
				Reason: fmt.Sprintf("need %d, have %d", l.Quantity, have),
			}
		}
	}

	// decrement
	for _, l := range q.Lines {
		if err := s.Prods.DecrementStock(l.ProductID, l.Quantity); err != nil {
			return "", pricing.CheckoutQuote{}, err
		}
	}

	userID := ""
	if req.User != nil {
		userID = req.User.ID
	}

	orderID := uuid.NewString()
	b := repos.OrderBreakdown{
		Subtotal:        q.Subtotal,
		ProductDiscount: q.ProductDiscountTotal,
		TierDiscount:    q.TierDiscountTotal,
		Tier:            string(q.Tier),
		RewardID:        req.RewardID,
		RewardDiscount:  q.RewardDiscount,
		FreeShipping:    q.FreeShipping,
		PointsUsed:      q.PointsRedeemed,
		Total:           q.FinalTotal,
	}
	if err := s.Orders.Create(orderID, req.SessionID, userID, req.Contact.Name, req.Contact.Email, req.PaymentMethod, b); err != nil {
		return "", pricing.CheckoutQuote{}, err
	}
	for _, l := range q.Lines {
		if err := s.Orders.InsertItem(orderID, l.ProductID, l.Quantity, l.UnitPrice, l.FinalUnitPrice); err != nil {
			return "", pricing.CheckoutQuote{}, err
		}
	}

	// Loyalty side effects only apply to verified accounts.
	if req.User != nil && q.LoyaltyVerified {
		if req.RewardID != "" {
			if err := s.Campaigns.Consume(req.RewardID); err != nil {
				return "", pricing.CheckoutQuote{}, err
			}
		}
		if q.PointsRedeemed.IsPositive() {
			if err := s.Loyalty.Deduct(req.User.ID, q.PointsRedeemed.IntPart(), "redeemed on order "+orderID); err != nil {
				return "", pricing.CheckoutQuote{}, err
			}
		}
		if earned := q.FinalTotal.Div(pointsPerUnit).Floor().IntPart(); earned > 0 {
			if err := s.Loyalty.Award(req.User.ID, earned, "earned on order "+orderID); err != nil {
				return "", pricing.CheckoutQuote{}, err
			}
		}
	}

	cartID, err := s.Carts.EnsureCart(req.SessionID)
	if err == nil {
		_ = s.Carts.Clear(cartID)
	}
	return orderID, q, nil
}

// One loyalty point per 100 currency units actually paid.
var pointsPerUnit = decimal.NewFromInt(100)
