package postgres

import (
	"context"
	"fmt"
)

// InitSchema crea las tablas si no existen. Se ejecuta al arrancar el daemon;
// las tablas de caché están separadas por dimensión para que los sweeps
// concurrentes nunca toquen filas ajenas.
func InitSchema(ctx context.Context, q Querier) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			full_name TEXT,
			is_admin BOOLEAN DEFAULT FALSE,
			is_subscribed BOOLEAN DEFAULT FALSE,
			subscription_expiry TIMESTAMP,
			joined TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist (
			user_id TEXT NOT NULL,
			user_name TEXT,
			product_id TEXT NOT NULL,
			product_name TEXT,
			added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, product_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_product ON watchlist(product_id)`,
		`CREATE TABLE IF NOT EXISTS user_stores (
			user_id TEXT NOT NULL,
			store_id TEXT NOT NULL,
			city TEXT,
			address1 TEXT,
			added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, store_id)
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id TEXT PRIMARY KEY,
			name TEXT,
			categories TEXT,
			active BOOLEAN,
			in_stock INTEGER DEFAULT 0,
			allocated TEXT,
			lottery TEXT,
			price NUMERIC,
			order_limit TEXT,
			product_url TEXT,
			thumbnail_url TEXT,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_active ON products(active) WHERE active = TRUE`,
		`CREATE TABLE IF NOT EXISTS product_active_cache (
			product_id TEXT PRIMARY KEY,
			active BOOLEAN,
			updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS product_category_cache (
			product_id TEXT PRIMARY KEY,
			categories TEXT,
			updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS store_stock_cache (
			product_id TEXT NOT NULL,
			store_id TEXT NOT NULL,
			last_qty INTEGER DEFAULT 0,
			last_checked TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (product_id, store_id)
		)`,
		`CREATE TABLE IF NOT EXISTS stores (
			store_id TEXT PRIMARY KEY,
			city TEXT,
			address1 TEXT,
			state TEXT DEFAULT 'PA',
			zip_code TEXT,
			phone TEXT,
			latitude NUMERIC,
			longitude NUMERIC,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stores_city ON stores(city)`,
	}

	for _, stmt := range statements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
