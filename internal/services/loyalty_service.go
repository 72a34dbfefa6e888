package services

import (
	"log"
	"sync"
	"time"

	"tajimart/internal/domain"
	"tajimart/internal/pricing"
	"tajimart/internal/repos"
)

// cardValidity is how long a newly issued loyalty card stays valid.
const cardValidity = 2 * 365 * 24 * time.Hour

type LoyaltyService struct {
	Cards      *repos.LoyaltyRepo
	Thresholds *repos.ThresholdRepo

	mu       sync.Mutex
	previews map[string]domain.TierPreview
}

func NewLoyaltyService(cards *repos.LoyaltyRepo, thresholds *repos.ThresholdRepo) *LoyaltyService {
	return &LoyaltyService{
		Cards:      cards,
		Thresholds: thresholds,
		previews:   make(map[string]domain.TierPreview),
	}
}

// Account returns the user's loyalty account, creating a card on first use.
// A failed lookup degrades to an unverified fallback account so the caller
// can still render and quote; the fallback confers no benefits.
func (s *LoyaltyService) Account(userID string, isAdmin bool) domain.LoyaltyAccount {
	a, err := s.Cards.ByUser(userID)
	if err == repos.ErrNoCard {
		a, err = s.Cards.Create(userID, isAdmin, time.Now().Add(cardValidity))
	}
	if err != nil {
		log.Printf("[loyalty] lookup failed for %s, serving fallback: %v", userID, err)
		return domain.LoyaltyAccount{UserID: userID, Tier: domain.TierBasic, Verified: false}
	}
	return a
}

// Resolve recomputes the user's tier against the active ladder and persists a
// change, recording how the rung was acquired.
func (s *LoyaltyService) Resolve(userID string, isAdmin bool) (domain.LoyaltyAccount, pricing.TierResolution, error) {
	a := s.Account(userID, isAdmin)
	if !a.Verified {
		return a, pricing.TierResolution{Tier: domain.TierBasic, Status: domain.StatusNone}, nil
	}
	if a.Override {
		return a, pricing.TierResolution{Tier: domain.TierPlatinum, Status: domain.StatusNone}, nil
	}

	cfg, err := s.Thresholds.Latest()
	if err != nil {
		return a, pricing.TierResolution{}, err
	}
	res, err := pricing.ResolveTier(a.Points, a.Tier, cfg)
	if err != nil {
		return a, pricing.TierResolution{}, err
	}
	if res.Tier != a.Tier {
		if err := s.Cards.SetTier(userID, res.Tier, tierMethod(res.Status)); err != nil {
			return a, pricing.TierResolution{}, err
		}
		a.Tier = res.Tier
	}
	a.Status = res.Status
	return a, res, nil
}

func tierMethod(st domain.TierStatus) string {
	switch st {
	case domain.StatusEarlyActive:
		return "early_access"
	case domain.StatusProtected:
		return "protected"
	default:
		return "standard"
	}
}

// Progress reports how far the account is from the next rung.
func (s *LoyaltyService) Progress(userID string, isAdmin bool) (pricing.TierProgress, error) {
	a, res, err := s.Resolve(userID, isAdmin)
	if err != nil {
		return pricing.TierProgress{}, err
	}
	cfg, err := s.Thresholds.Latest()
	if err != nil {
		return pricing.TierProgress{}, err
	}
	return pricing.ProgressTowards(a.Points, res.Tier, cfg), nil
}

// Award credits points (accrual, campaign claims) and re-resolves the tier.
func (s *LoyaltyService) Award(userID string, points int64, reason string) error {
	if points <= 0 {
		return nil
	}
	if err := s.Cards.AddPoints(userID, points, reason); err != nil {
		return err
	}
	_, _, err := s.Resolve(userID, false)
	return err
}

// Deduct removes redeemed points. The repo guards against going negative.
func (s *LoyaltyService) Deduct(userID string, points int64, reason string) error {
	if points <= 0 {
		return nil
	}
	if err := s.Cards.AddPoints(userID, -points, reason); err != nil {
		return err
	}
	_, _, err := s.Resolve(userID, false)
	return err
}

// Adjust applies an admin points correction, positive or negative.
func (s *LoyaltyService) Adjust(userID string, delta int64, reason string) error {
	if err := s.Cards.AddPoints(userID, delta, reason); err != nil {
		return err
	}
	_, _, err := s.Resolve(userID, false)
	return err
}

func (s *LoyaltyService) PointsHistory(userID string, limit int) ([]domain.PointsHistoryEntry, error) {
	return s.Cards.PointsHistory(userID, limit)
}

func (s *LoyaltyService) TierHistory(userID string, limit int) ([]domain.TierHistoryEntry, error) {
	return s.Cards.TierHistory(userID, limit)
}

// ActiveThresholds returns the ladder quotes are currently built against.
func (s *LoyaltyService) ActiveThresholds() (domain.TierThresholdConfig, error) {
	return s.Thresholds.Latest()
}

// UpdateThresholds validates and stores a new ladder revision. Customers see
// the new ladder on their next evaluation; nothing is recomputed eagerly.
func (s *LoyaltyService) UpdateThresholds(cfg domain.TierThresholdConfig, updatedBy, notes string) error {
	if err := cfg.Validate(); err != nil {
		return &pricing.ValidationError{Field: "thresholds", Reason: err.Error()}
	}
	return s.Thresholds.Insert(cfg, updatedBy, notes)
}

// SetPreview stores a time-boxed, display-only tier preview. Previews live in
// memory only; they never reach quote building and vanish on restart.
func (s *LoyaltyService) SetPreview(userID string, tier domain.Tier, d time.Duration) error {
	if !tier.Valid() {
		return &pricing.ValidationError{Field: "tier", Reason: "unknown tier"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews[userID] = domain.TierPreview{Tier: tier, ExpiresAt: time.Now().Add(d)}
	return nil
}

// Preview returns the active preview for display, if any.
func (s *LoyaltyService) Preview(userID string, now time.Time) (domain.TierPreview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.previews[userID]
	if !ok || !p.Active(now) {
		delete(s.previews, userID)
		return domain.TierPreview{}, false
	}
	return p, true
}
