package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"tajimart/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) ListByCategory(catID string, limit, offset int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT
	    id, category_id, title, description, price, discount_percent, stock,
	    images_json, active, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE category_id = ? AND active = 1
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?
	`, catID, limit, offset)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT
	    id, category_id, title, description, price, discount_percent, stock,
	    images_json, active, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE id = ?
	`, id)
	return p, err
}

func (r *ProductRepo) Search(q, catID string, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if catID != "" {
		where += ` AND category_id = ?`
		args = append(args, catID)
	}

	query := `
	  SELECT
	    id, category_id, title, description, price, discount_percent, stock,
	    images_json, active, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE ` + where + `
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, query, args...)
	return out, err
}

// Stock returns current stock for a product.
func (r *ProductRepo) Stock(productID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT stock FROM products WHERE id = ?`, productID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// DecrementStock atomically subtracts "by" units if enough stock exists.
func (r *ProductRepo) DecrementStock(productID string, by int) error {
	res, err := r.db.Exec(`
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, by, productID, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("insufficient stock for %s", productID)
	}
	return nil
}

// SetStock sets the stock level (admin only).
func (r *ProductRepo) SetStock(productID string, qty int) error {
	_, err := r.db.Exec(`UPDATE products SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, qty, productID)
	return err
}

// SetDiscount sets the promotional discount percent (admin).
func (r *ProductRepo) SetDiscount(productID string, pct int) error {
	_, err := r.db.Exec(`UPDATE products SET discount_percent = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, pct, productID)
	return err
}
