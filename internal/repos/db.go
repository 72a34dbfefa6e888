package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (categories/products)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure a threshold ladder exists (idempotent; safe to run every start)
	if err := seedThresholds(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL CHECK (price > 0),
  discount_percent INTEGER NOT NULL DEFAULT 0 CHECK (discount_percent BETWEEN 0 AND 100),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  images_json TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_title      ON products(LOWER(title));
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price_at_add NUMERIC NOT NULL,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, product_id)
);

-- Loyalty
CREATE TABLE IF NOT EXISTS loyalty_cards(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  card_number TEXT NOT NULL UNIQUE,
  points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
  tier TEXT NOT NULL DEFAULT 'Basic',
  override_platinum INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  expires_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS loyalty_points_history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES loyalty_cards(user_id) ON DELETE CASCADE,
  points INTEGER NOT NULL,
  reason TEXT NOT NULL,
  date TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_points_history_user ON loyalty_points_history(user_id);

CREATE TABLE IF NOT EXISTS loyalty_tier_history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES loyalty_cards(user_id) ON DELETE CASCADE,
  tier TEXT NOT NULL,
  method TEXT NOT NULL,
  acquired_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tier_history_user ON loyalty_tier_history(user_id);

-- One row per revision; the newest row is the active ladder.
CREATE TABLE IF NOT EXISTS loyalty_thresholds(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  bronze_standard INTEGER NOT NULL,
  bronze_early INTEGER NOT NULL,
  silver_standard INTEGER NOT NULL,
  silver_early INTEGER NOT NULL,
  gold_standard INTEGER NOT NULL,
  gold_early INTEGER NOT NULL,
  platinum_standard INTEGER NOT NULL,
  platinum_early INTEGER NOT NULL,
  early_access_enabled INTEGER NOT NULL DEFAULT 0,
  updated_by TEXT,
  notes TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Community campaign rewards
CREATE TABLE IF NOT EXISTS community_rewards(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  type TEXT NOT NULL CHECK (type IN ('discount','shipping','product','points')),
  value INTEGER NOT NULL DEFAULT 0,
  campaign_title TEXT NOT NULL,
  expiry_date TEXT NOT NULL,
  consumed INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_rewards_user ON community_rewards(user_id);

-- Orders: the quote breakdown is persisted column by column so the charged
-- amounts stay auditable without recomputation.
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  session_id TEXT,
  user_id TEXT,
  customer_name TEXT,
  customer_email TEXT,
  payment_method TEXT NOT NULL DEFAULT 'cod',  -- card | mpesa | cod
  subtotal NUMERIC NOT NULL,
  product_discount NUMERIC NOT NULL DEFAULT 0,
  tier_discount NUMERIC NOT NULL DEFAULT 0,
  tier TEXT NOT NULL DEFAULT 'Basic',
  reward_id TEXT,
  reward_discount NUMERIC NOT NULL DEFAULT 0,
  free_shipping INTEGER NOT NULL DEFAULT 0,
  points_used NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PLACED',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);

CREATE TABLE IF NOT EXISTS order_items(
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  qty INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  final_unit_price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, product_id)
);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('fresh-produce','Fresh Produce'),
	  ('pantry','Pantry Staples'),
	  ('beverages','Beverages'),
	  ('household','Household')`)

	tx.MustExec(`INSERT INTO products(id,category_id,title,description,price,discount_percent,stock,images_json) VALUES
	  ('maize-5kg','pantry','Maize Flour 5kg','Fortified maize flour',650,10,120,'["products/maize-5kg/main.jpg"]'),
	  ('rice-2kg','pantry','Pishori Rice 2kg','Aromatic long grain rice',480,0,80,'["products/rice-2kg/main.jpg"]'),
	  ('avocado-3','fresh-produce','Avocados (pack of 3)','Ready to eat',150,5,45,'["products/avocado-3/main.jpg"]'),
	  ('tea-500g','beverages','Kericho Gold Tea 500g','Black tea leaves',520,15,60,'["products/tea-500g/main.jpg"]'),
	  ('soap-4pk','household','Laundry Soap 4-pack','Long bar soap',310,0,200,'["products/soap-4pk/main.jpg"]')`)

	return tx.Commit()
}

// seedThresholds inserts the default ladder when none exists.
func seedThresholds(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM loyalty_thresholds`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := db.Exec(`
		INSERT INTO loyalty_thresholds(
			bronze_standard, bronze_early,
			silver_standard, silver_early,
			gold_standard, gold_early,
			platinum_standard, platinum_early,
			early_access_enabled, notes
		) VALUES (500,400, 1500,1200, 3000,2500, 5000,3750, 0, 'default ladder')
	`)
	return err
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-wanjiku", "wanjiku@tajimart.test", "Wanjiku", "USER", "Passw0rd!"),
		mk("u-otieno", "otieno@tajimart.test", "Otieno", "USER", "Passw0rd!"),
		mk("u-admin", "admin@tajimart.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
