package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tajimart/internal/domain"
)

type LoyaltyRepo struct{ db *sqlx.DB }

func NewLoyaltyRepo(db *sqlx.DB) *LoyaltyRepo { return &LoyaltyRepo{db: db} }

// ErrNoCard distinguishes "no card yet" from a failed lookup so callers can
// create one instead of degrading to a fallback account.
var ErrNoCard = errors.New("loyalty: no card for user")

func (r *LoyaltyRepo) ByUser(userID string) (domain.LoyaltyAccount, error) {
	var a domain.LoyaltyAccount
	err := r.db.Get(&a, `
		SELECT user_id, card_number, points, tier, override_platinum, is_active, expires_at
		FROM loyalty_cards
		WHERE user_id = ?
	`, userID)
	if err == sql.ErrNoRows {
		return domain.LoyaltyAccount{}, ErrNoCard
	}
	if err != nil {
		return domain.LoyaltyAccount{}, err
	}
	a.Verified = true
	return a, nil
}

// Create issues a card. Card numbers are "TAJI" plus a zero-padded sequence
// so they sort by issue order.
func (r *LoyaltyRepo) Create(userID string, override bool, expiresAt time.Time) (domain.LoyaltyAccount, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return domain.LoyaltyAccount{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM loyalty_cards`); err != nil {
		return domain.LoyaltyAccount{}, err
	}
	card := fmt.Sprintf("TAJI%012d", n+1)

	tier := domain.TierBasic
	if override {
		tier = domain.TierPlatinum
	}
	_, err = tx.Exec(`
		INSERT INTO loyalty_cards(user_id, card_number, points, tier, override_platinum, is_active, expires_at)
		VALUES(?,?,0,?,?,1,?)
	`, userID, card, tier, override, expiresAt.Format(time.RFC3339))
	if err != nil {
		return domain.LoyaltyAccount{}, err
	}
	if _, err := tx.Exec(`
		INSERT INTO loyalty_tier_history(user_id, tier, method) VALUES(?,?,?)
	`, userID, tier, methodForCreate(override)); err != nil {
		return domain.LoyaltyAccount{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.LoyaltyAccount{}, err
	}

	return domain.LoyaltyAccount{
		UserID:     userID,
		CardNumber: card,
		Points:     0,
		Tier:       tier,
		Override:   override,
		IsActive:   true,
		ExpiresAt:  expiresAt.Format(time.RFC3339),
		Verified:   true,
	}, nil
}

func methodForCreate(override bool) string {
	if override {
		return "admin_grant"
	}
	return "standard"
}

// AddPoints applies a delta (positive or negative) and records it. The stored
// balance never goes below zero; callers validate before deducting.
func (r *LoyaltyRepo) AddPoints(userID string, delta int64, reason string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		UPDATE loyalty_cards SET points = points + ?
		WHERE user_id = ? AND points + ? >= 0
	`, delta, userID, delta)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("loyalty: points update for %s would go negative or card missing", userID)
	}
	if _, err := tx.Exec(`
		INSERT INTO loyalty_points_history(user_id, points, reason) VALUES(?,?,?)
	`, userID, delta, reason); err != nil {
		return err
	}
	return tx.Commit()
}

// SetTier stores a newly resolved tier and the method it was acquired by.
// No-op history is the caller's concern; this always appends.
func (r *LoyaltyRepo) SetTier(userID string, tier domain.Tier, method string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE loyalty_cards SET tier = ? WHERE user_id = ?`, tier, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO loyalty_tier_history(user_id, tier, method) VALUES(?,?,?)
	`, userID, tier, method); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *LoyaltyRepo) PointsHistory(userID string, limit int) ([]domain.PointsHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.PointsHistoryEntry
	err := r.db.Select(&out, `
		SELECT points, reason, date
		FROM loyalty_points_history
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, userID, limit)
	return out, err
}

func (r *LoyaltyRepo) TierHistory(userID string, limit int) ([]domain.TierHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.TierHistoryEntry
	err := r.db.Select(&out, `
		SELECT tier, method, acquired_at
		FROM loyalty_tier_history
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, userID, limit)
	return out, err
}
