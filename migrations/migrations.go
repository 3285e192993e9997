package migrations

import (
	"database/sql"
	"time"
)

func execWithRetry(db *sql.DB, query string, retries int) error {
	_, err := db.Exec(query)
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(1 * time.Second)
		_, err = db.Exec(query)
	}
	return err
}

// AutoMigrateProducts creates the products table if it does not exist.
func AutoMigrateProducts(db *sql.DB, retries int) error {
	query := `
		CREATE TABLE IF NOT EXISTS products (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(10,2) NOT NULL,
			stock_quantity INT NOT NULL DEFAULT 0,
			category VARCHAR(255),
			image_url VARCHAR(255),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT chk_stock_non_negative CHECK (stock_quantity >= 0)
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateOrders creates the orders table if it does not exist.
func AutoMigrateOrders(db *sql.DB, retries int) error {
	query := `
		CREATE TABLE IF NOT EXISTS orders (
			id CHAR(36) PRIMARY KEY,
			customer_email VARCHAR(255) NOT NULL,
			customer_name VARCHAR(255) NOT NULL,
			shipping_address TEXT NOT NULL,
			billing_address TEXT,
			total_amount DECIMAL(10,2) NOT NULL,
			tax_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
			shipping_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
			status ENUM('pending','confirmed','processing','shipped','delivered','cancelled') NOT NULL DEFAULT 'pending',
			payment_status ENUM('pending','paid','failed','refunded') NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(50),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_orders_customer_email (customer_email),
			INDEX idx_orders_created_at (created_at)
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateOrderItems creates the order_items table if it does not exist.
// Items cascade away with their parent order.
func AutoMigrateOrderItems(db *sql.DB, retries int) error {
	query := `
		CREATE TABLE IF NOT EXISTS order_items (
			id CHAR(36) PRIMARY KEY,
			order_id CHAR(36) NOT NULL,
			product_id CHAR(36) NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(10,2) NOT NULL,
			total_price DECIMAL(10,2) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		);
	`
	return execWithRetry(db, query, retries)
}

// AutoMigrateAll runs every migration in dependency order.
func AutoMigrateAll(db *sql.DB, retries int) error {
	if err := AutoMigrateProducts(db, retries); err != nil {
		return err
	}
	if err := AutoMigrateOrders(db, retries); err != nil {
		return err
	}
	return AutoMigrateOrderItems(db, retries)
}
