package domain

// RewardType classifies what a community-campaign reward grants.
type RewardType string

const (
	RewardDiscount RewardType = "discount" // Value = percent off the cart subtotal
	RewardShipping RewardType = "shipping" // free delivery
	RewardProduct  RewardType = "product"  // free item, fulfilled outside checkout math
	RewardPoints   RewardType = "points"   // Value = loyalty points granted on claim
)

// CommunityReward is a perk earned through a completed community campaign.
// It expires independently of use and is consumed at most once, at order
// placement.
type CommunityReward struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	Type          RewardType `db:"type"`
	Value         int        `db:"value"`
	CampaignTitle string     `db:"campaign_title"`
	ExpiryDate    string     `db:"expiry_date"`
	Consumed      bool       `db:"consumed"`
}
