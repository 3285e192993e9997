package migrations

import (
	"database/sql"

	"github.com/google/uuid"
)

type seedProduct struct {
	name        string
	description string
	price       string
	stock       int
	category    string
	imageURL    string
}

var seedProducts = []seedProduct{
	{"Gaming Laptop", "High-performance gaming laptop with RTX graphics", "1299.99", 25, "Electronics", "https://example.com/images/laptop.jpg"},
	{"Wireless Gaming Mouse", "Precision wireless mouse for gaming", "79.99", 100, "Electronics", "https://example.com/images/mouse.jpg"},
	{"Mechanical Keyboard", "RGB mechanical keyboard with blue switches", "149.99", 50, "Electronics", "https://example.com/images/keyboard.jpg"},
	{"4K Gaming Monitor", "27-inch 4K monitor with 144Hz refresh rate", "599.99", 30, "Electronics", "https://example.com/images/monitor.jpg"},
	{"Noise-Cancelling Headphones", "Premium wireless headphones with active noise cancellation", "299.99", 75, "Electronics", "https://example.com/images/headphones.jpg"},
	{"Android Tablet", "10-inch Android tablet with stylus support", "399.99", 40, "Electronics", "https://example.com/images/tablet.jpg"},
	{"Flagship Smartphone", "Latest flagship smartphone with triple camera system", "899.99", 60, "Electronics", "https://example.com/images/smartphone.jpg"},
	{"Bluetooth Speaker", "Portable Bluetooth speaker with waterproof design", "129.99", 80, "Electronics", "https://example.com/images/speaker.jpg"},
}

// SeedProducts inserts the demo catalog. It is a no-op when the products
// table already has rows, so it is safe to run on every boot.
func SeedProducts(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	query := `INSERT INTO products (id, name, description, price, stock_quantity, category, image_url, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, TRUE)`
	for _, p := range seedProducts {
		if _, err := db.Exec(query, uuid.NewString(), p.name, p.description, p.price, p.stock, p.category, p.imageURL); err != nil {
			return err
		}
	}
	return nil
}
