package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

type Product struct {
	ID              string          `db:"id"`
	CategoryID      string          `db:"category_id"`
	Title           string          `db:"title"`
	Description     string          `db:"description"`
	Price           decimal.Decimal `db:"price"`
	DiscountPercent int             `db:"discount_percent"` // 0..100, promotional
	Stock           int             `db:"stock"`
	ImagesJSON      string          `db:"images_json"`
	Active          bool            `db:"active"`
	CreatedAt       string          `db:"created_at"`
	UpdatedAt       string          `db:"updated_at"`
}

// CartLine is a priced snapshot of a product inside a cart or checkout attempt.
// PriceAtAdd and DiscountPercent are captured when the line is created so a
// later catalog edit cannot change what the customer was shown.
type CartLine struct {
	ProductID       string          `db:"product_id"`
	Title           string          `db:"title"`
	Quantity        int             `db:"qty"`
	PriceAtAdd      decimal.Decimal `db:"price_at_add"`
	DiscountPercent int             `db:"discount_percent"`
}
