package repos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"tajimart/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// UpsertItem adds quantity to a line, snapshotting price and promotional
// discount at add time so later catalog edits don't reprice the cart.
func (r *CartRepo) UpsertItem(cartID, productID string, qty int, price decimal.Decimal, discountPct int) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,product_id,qty,price_at_add,discount_percent,created_at)
		VALUES(?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, productID, qty, price, discountPct)
	return err
}

// SetQty replaces a line's quantity; qty 0 removes the line.
func (r *CartRepo) SetQty(cartID, productID string, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(cartID, productID)
	}
	_, err := r.db.Exec(`
		UPDATE cart_items SET qty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE cart_id = ? AND product_id = ?
	`, qty, cartID, productID)
	return err
}

func (r *CartRepo) RemoveItem(cartID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	return err
}

// Lines returns the priced snapshot lines the quote pipeline consumes.
func (r *CartRepo) Lines(cartID string) ([]domain.CartLine, error) {
	var out []domain.CartLine
	err := r.db.Select(&out, `
	  SELECT ci.product_id, p.title, ci.qty, ci.price_at_add, ci.discount_percent
	  FROM cart_items ci JOIN products p ON p.id=ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.product_id
	`, cartID)
	return out, err
}

func (r *CartRepo) Clear(cartID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}

// MergeForLogin folds an anonymous session cart into the user's cart.
func (r *CartRepo) MergeForLogin(userID, sid string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var anonID, userCartID sql.NullString

	if err := tx.Get(&anonID, `SELECT id FROM carts WHERE session_id=?`, sid); err != nil && err != sql.ErrNoRows {
		return err
	}
	if err := tx.Get(&userCartID, `
		SELECT c.id FROM carts c JOIN sessions s ON s.id = c.session_id
		WHERE s.user_id=? ORDER BY c.updated_at DESC LIMIT 1`, userID); err != nil && err != sql.ErrNoRows {
		return err
	}

	if !anonID.Valid {
		_, _ = tx.Exec(`UPDATE sessions SET user_id=?, last_seen=CURRENT_TIMESTAMP WHERE id=?`, userID, sid)
		return tx.Commit()
	}

	if !userCartID.Valid || userCartID.String == anonID.String {
		_, _ = tx.Exec(`UPDATE sessions SET user_id=?, last_seen=CURRENT_TIMESTAMP WHERE id=?`, userID, sid)
		return tx.Commit()
	}

	type line struct {
		ProductID   string          `db:"product_id"`
		Qty         int             `db:"qty"`
		PriceAtAdd  decimal.Decimal `db:"price_at_add"`
		DiscountPct int             `db:"discount_percent"`
	}
	var lines []line
	if err := tx.Select(&lines, `SELECT product_id, qty, price_at_add, discount_percent FROM cart_items WHERE cart_id=?`, anonID.String); err != nil {
		return err
	}

	for _, it := range lines {
		_, err := tx.Exec(`
			INSERT INTO cart_items(cart_id, product_id, qty, price_at_add, discount_percent, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(cart_id, product_id) DO UPDATE SET
			  qty = qty + excluded.qty,
			  updated_at = CURRENT_TIMESTAMP
		`, userCartID.String, it.ProductID, it.Qty, it.PriceAtAdd, it.DiscountPct)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`DELETE FROM carts WHERE id=?`, anonID.String); err != nil {
		return err
	}
	_, _ = tx.Exec(`UPDATE sessions SET user_id=?, last_seen=CURRENT_TIMESTAMP WHERE id=?`, userID, sid)

	return tx.Commit()
}
