package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"tajimart/internal/domain"
	"tajimart/internal/pricing"
	"tajimart/internal/repos"
)

var ErrRewardSpent = errors.New("reward already consumed")

// CampaignService manages community-campaign rewards: granting them when a
// campaign completes, listing the ones still usable, and consuming them.
type CampaignService struct {
	Rewards *repos.RewardRepo
	Loyalty *LoyaltyService
}

func NewCampaignService(rewards *repos.RewardRepo, loyalty *LoyaltyService) *CampaignService {
	return &CampaignService{Rewards: rewards, Loyalty: loyalty}
}

// Grant issues a reward to a user. Points rewards are credited immediately
// and stored as consumed, so they never show up as selectable at checkout.
func (s *CampaignService) Grant(userID string, typ domain.RewardType, value int, campaignTitle string, expiry time.Time) (domain.CommunityReward, error) {
	switch typ {
	case domain.RewardDiscount:
		if value < 0 || value > 100 {
			return domain.CommunityReward{}, &pricing.ValidationError{Field: "value", Reason: "discount percent must be within 0..100"}
		}
	case domain.RewardPoints:
		if value <= 0 {
			return domain.CommunityReward{}, &pricing.ValidationError{Field: "value", Reason: "points grant must be positive"}
		}
	case domain.RewardShipping, domain.RewardProduct:
		value = 0
	default:
		return domain.CommunityReward{}, &pricing.ValidationError{Field: "type", Reason: "unknown reward type"}
	}

	rw := domain.CommunityReward{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          typ,
		Value:         value,
		CampaignTitle: campaignTitle,
		ExpiryDate:    expiry.Format(time.RFC3339),
	}
	if typ == domain.RewardPoints {
		rw.Consumed = true
	}
	if err := s.Rewards.Insert(rw); err != nil {
		return domain.CommunityReward{}, err
	}
	if typ == domain.RewardPoints {
		if err := s.Loyalty.Award(userID, int64(value), "campaign: "+campaignTitle); err != nil {
			return domain.CommunityReward{}, err
		}
	}
	return rw, nil
}

// Active lists the user's rewards still selectable at checkout.
func (s *CampaignService) Active(userID string, now time.Time) ([]domain.CommunityReward, error) {
	all, err := s.Rewards.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	return pricing.FilterActive(all, now), nil
}

// ForCheckout fetches a selected reward and verifies it belongs to the user.
func (s *CampaignService) ForCheckout(userID, rewardID string) (*domain.CommunityReward, error) {
	if rewardID == "" {
		return nil, nil
	}
	rw, err := s.Rewards.Get(rewardID)
	if err != nil {
		return nil, err
	}
	if rw.UserID != userID {
		return nil, &pricing.ValidationError{Field: "rewardId", Reason: "reward belongs to another user"}
	}
	return &rw, nil
}

// Consume marks a reward spent exactly once.
func (s *CampaignService) Consume(rewardID string) error {
	ok, err := s.Rewards.MarkConsumed(rewardID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRewardSpent
	}
	return nil
}
