package main

import "database/sql"

// ensureSchema creates the tables on startup so a fresh database works
// without a separate migration step.
func ensureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			is_staff BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			category TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			base_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS product_variants (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			sku TEXT UNIQUE NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			size TEXT NOT NULL DEFAULT '',
			price_modifier NUMERIC(10,2) NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			UNIQUE (product_id, color, size)
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id BIGSERIAL PRIMARY KEY,
			cart_id BIGINT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			variant_id BIGINT REFERENCES product_variants(id) ON DELETE CASCADE,
			quantity INT NOT NULL CHECK (quantity > 0)
		)`,
		// NULL variant ids never collide in a plain unique constraint, so the
		// one-line-per-(product, variant) rule needs two partial indexes.
		`CREATE UNIQUE INDEX IF NOT EXISTS cart_items_product_variant_key
			ON cart_items (cart_id, product_id, variant_id) WHERE variant_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS cart_items_product_only_key
			ON cart_items (cart_id, product_id) WHERE variant_id IS NULL`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			order_number TEXT UNIQUE NOT NULL,
			user_id BIGINT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'pending',
			payment_status TEXT NOT NULL DEFAULT 'unpaid',
			payment_method TEXT NOT NULL DEFAULT '',
			subtotal NUMERIC(10,2) NOT NULL DEFAULT 0,
			tax NUMERIC(10,2) NOT NULL DEFAULT 0,
			shipping_cost NUMERIC(10,2) NOT NULL DEFAULT 0,
			total NUMERIC(10,2) NOT NULL DEFAULT 0,
			full_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			stock_restored BOOLEAN NOT NULL DEFAULT FALSE,
			is_received_back BOOLEAN NOT NULL DEFAULT FALSE,
			cancelled_by BIGINT,
			cancellation_reason TEXT NOT NULL DEFAULT '',
			paid_at TIMESTAMPTZ,
			shipped_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			cancelled_at TIMESTAMPTZ,
			received_back_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id BIGINT NOT NULL,
			variant_id BIGINT,
			product_name TEXT NOT NULL,
			product_slug TEXT NOT NULL DEFAULT '',
			variant_info TEXT NOT NULL DEFAULT '',
			quantity INT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			subtotal NUMERIC(10,2) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items (order_id)`,
		`CREATE TABLE IF NOT EXISTS stock_adjustments (
			id BIGSERIAL PRIMARY KEY,
			product_id BIGINT NOT NULL REFERENCES products(id),
			variant_id BIGINT REFERENCES product_variants(id),
			adjustment_type TEXT NOT NULL,
			quantity INT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			adjusted_by BIGINT NOT NULL,
			previous_stock INT NOT NULL,
			new_stock INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS stock_adjustments_product_id_idx ON stock_adjustments (product_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
