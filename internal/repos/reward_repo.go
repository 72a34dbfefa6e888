package repos

import (
	"github.com/jmoiron/sqlx"

	"tajimart/internal/domain"
)

type RewardRepo struct{ db *sqlx.DB }

func NewRewardRepo(db *sqlx.DB) *RewardRepo { return &RewardRepo{db: db} }

func (r *RewardRepo) Get(id string) (domain.CommunityReward, error) {
	var out domain.CommunityReward
	err := r.db.Get(&out, `
		SELECT id, user_id, type, value, campaign_title, expiry_date, consumed
		FROM community_rewards
		WHERE id = ?
	`, id)
	return out, err
}

// ListForUser returns all of a user's rewards, newest first. Expiry filtering
// is the pricing layer's concern, not SQL's.
func (r *RewardRepo) ListForUser(userID string) ([]domain.CommunityReward, error) {
	var out []domain.CommunityReward
	err := r.db.Select(&out, `
		SELECT id, user_id, type, value, campaign_title, expiry_date, consumed
		FROM community_rewards
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *RewardRepo) Insert(rw domain.CommunityReward) error {
	_, err := r.db.Exec(`
		INSERT INTO community_rewards(id, user_id, type, value, campaign_title, expiry_date, consumed)
		VALUES(?,?,?,?,?,?,0)
	`, rw.ID, rw.UserID, rw.Type, rw.Value, rw.CampaignTitle, rw.ExpiryDate)
	return err
}

// MarkConsumed flips consumed exactly once; a second call affects no rows.
func (r *RewardRepo) MarkConsumed(id string) (bool, error) {
	res, err := r.db.Exec(`UPDATE community_rewards SET consumed = 1 WHERE id = ? AND consumed = 0`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
