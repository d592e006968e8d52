package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations is the ordered, versioned schema history. Consistency logic that
// the legacy system kept in database triggers and stored procedures lives in
// application transactions instead, so the schema is plain tables.
var migrations = []string{
	// 1: product catalog
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		price DECIMAL(10,2) NOT NULL,
		cost DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		stock INT NOT NULL DEFAULT 0,
		category VARCHAR(50) NOT NULL DEFAULT '',
		barcode VARCHAR(50) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// 2: customers
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		phone VARCHAR(20) NOT NULL DEFAULT '',
		email VARCHAR(100) NOT NULL DEFAULT '',
		address VARCHAR(255) NOT NULL DEFAULT '',
		points INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// 3: suppliers
	`CREATE TABLE IF NOT EXISTS suppliers (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		contact_person VARCHAR(100) NOT NULL DEFAULT '',
		phone VARCHAR(20) NOT NULL DEFAULT '',
		email VARCHAR(100) NOT NULL DEFAULT '',
		address VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// 4: stock projection, one row per product, created lazily
	`CREATE TABLE IF NOT EXISTS inventory (
		product_id BIGINT NOT NULL PRIMARY KEY,
		quantity INT NOT NULL DEFAULT 0,
		min_stock_level INT NOT NULL DEFAULT 10,
		max_stock_level INT NOT NULL DEFAULT 100,
		last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)`,

	// 5: append-only inventory ledger; microsecond timestamps keep the
	// created_at DESC, id DESC ordering stable
	`CREATE TABLE IF NOT EXISTS inventory_logs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		change_kind ENUM('in','out','sale','adjustment') NOT NULL,
		quantity INT NOT NULL,
		quantity_change INT NOT NULL,
		reference_kind ENUM('stock_in','stock_out','adjustment','sales_order') NOT NULL,
		reference_id BIGINT NULL,
		before_quantity INT NOT NULL,
		after_quantity INT NOT NULL,
		notes TEXT,
		created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		FOREIGN KEY (product_id) REFERENCES products(id),
		INDEX idx_inventory_logs_product_created (product_id, created_at)
	)`,

	// 6: sales orders
	`CREATE TABLE IF NOT EXISTS sales_orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		total_amount DECIMAL(10,2) NOT NULL,
		discount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		final_amount DECIMAL(10,2) NOT NULL,
		payment_method ENUM('cash','card','online') NOT NULL,
		status ENUM('pending','completed','cancelled') NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// 7: order lines with price snapshots
	`CREATE TABLE IF NOT EXISTS sales_order_items (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		subtotal DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (order_id) REFERENCES sales_orders(id),
		FOREIGN KEY (product_id) REFERENCES products(id)
	)`,
}

// Migrate applies pending schema versions. It runs once at startup (or via
// cmd/migrate), replacing the legacy per-call existence checks.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT NOT NULL PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT IFNULL(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		if _, err := db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %d: %w", version, err)
		}
	}
	return nil
}
