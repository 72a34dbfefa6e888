package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Admin list summary ----------
type OrderSummary struct {
	ID            string          `db:"id"`
	SessionID     string          `db:"session_id"`
	CustomerName  string          `db:"customer_name"`
	CustomerEmail string          `db:"customer_email"`
	Total         decimal.Decimal `db:"total"`
	Status        string          `db:"status"`
	CreatedAt     string          `db:"created_at"`
}

// ---------- Order detail (used by /order/:id) ----------
type OrderRow struct {
	ID              string          `db:"id"`
	SessionID       string          `db:"session_id"`
	UserID          string          `db:"user_id"`
	Customer        string          `db:"customer_name"`
	Email           string          `db:"customer_email"`
	PaymentMethod   string          `db:"payment_method"`
	Subtotal        decimal.Decimal `db:"subtotal"`
	ProductDiscount decimal.Decimal `db:"product_discount"`
	TierDiscount    decimal.Decimal `db:"tier_discount"`
	Tier            string          `db:"tier"`
	RewardID        string          `db:"reward_id"`
	RewardDiscount  decimal.Decimal `db:"reward_discount"`
	FreeShipping    bool            `db:"free_shipping"`
	PointsUsed      decimal.Decimal `db:"points_used"`
	Total           decimal.Decimal `db:"total"`
	Status          string          `db:"status"`
	CreatedAt       string          `db:"created_at"`
}

type OrderItemRow struct {
	Title          string          `db:"title"`
	Qty            int             `db:"qty"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	FinalUnitPrice decimal.Decimal `db:"final_unit_price"`
	Subtotal       decimal.Decimal `db:"subtotal"`
}

// OrderBreakdown is the persisted quote: every charged component is stored,
// never recomputed from the catalog.
type OrderBreakdown struct {
	Subtotal        decimal.Decimal
	ProductDiscount decimal.Decimal
	TierDiscount    decimal.Decimal
	Tier            string
	RewardID        string
	RewardDiscount  decimal.Decimal
	FreeShipping    bool
	PointsUsed      decimal.Decimal
	Total           decimal.Decimal
}

// Create inserts a new order header with the full pricing breakdown.
func (r *OrderRepo) Create(orderID, sessionID, userID, name, email, payMethod string, b OrderBreakdown) error {
	_, err := r.db.Exec(`
	  INSERT INTO orders
	    (id, session_id, user_id, customer_name, customer_email, payment_method,
	     subtotal, product_discount, tier_discount, tier,
	     reward_id, reward_discount, free_shipping, points_used,
	     total, status, created_at)
	  VALUES
	    (?, ?, ?, ?, ?, ?,
	     ?, ?, ?, ?,
	     NULLIF(?,''), ?, ?, ?,
	     ?, 'PLACED', CURRENT_TIMESTAMP)
	`, orderID, sessionID, userID, name, email, payMethod,
		b.Subtotal, b.ProductDiscount, b.TierDiscount, b.Tier,
		b.RewardID, b.RewardDiscount, b.FreeShipping, b.PointsUsed,
		b.Total)
	return err
}

// InsertItem inserts a single line item with both the listed and the charged
// unit price.
func (r *OrderRepo) InsertItem(orderID, productID string, qty int, unitPrice, finalUnitPrice decimal.Decimal) error {
	_, err := r.db.Exec(`
	  INSERT INTO order_items(order_id, product_id, qty, unit_price, final_unit_price)
	  VALUES(?, ?, ?, ?, ?)
	`, orderID, productID, qty, unitPrice, finalUnitPrice)
	return err
}

// ---------- Used by order page/admin ----------

func (r *OrderRepo) Get(orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.Get(&o, `
		SELECT id, COALESCE(session_id,'') AS session_id, COALESCE(user_id,'') AS user_id,
		       COALESCE(customer_name,'') AS customer_name, COALESCE(customer_email,'') AS customer_email,
		       payment_method, subtotal, product_discount, tier_discount, tier,
		       COALESCE(reward_id,'') AS reward_id, reward_discount, free_shipping, points_used,
		       total, status, created_at
		FROM orders
		WHERE id = ?
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	var items []OrderItemRow
	if err := r.db.Select(&items, `
		SELECT p.title, oi.qty, oi.unit_price, oi.final_unit_price,
		       (oi.qty * oi.final_unit_price) AS subtotal
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY p.title
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	return o, items, nil
}

func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, COALESCE(session_id,'') AS session_id,
		       COALESCE(customer_name,'') AS customer_name,
		       COALESCE(customer_email,'') AS customer_email,
		       total, status, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}

// ListByUser returns orders for a given user.
func (r *OrderRepo) ListByUser(userID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, COALESCE(session_id,'') AS session_id,
		       COALESCE(customer_name,'') AS customer_name,
		       COALESCE(customer_email,'') AS customer_email,
		       total, status, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

// ListBySession returns orders tied to a given session id (helps show anon or pre-login orders).
func (r *OrderRepo) ListBySession(sessionID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, COALESCE(session_id,'') AS session_id,
		       COALESCE(customer_name,'') AS customer_name,
		       COALESCE(customer_email,'') AS customer_email,
		       total, status, created_at
		FROM orders
		WHERE session_id = ?
		ORDER BY datetime(created_at) DESC
	`, sessionID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}
