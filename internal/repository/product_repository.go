package repository

import (
	"context"
	"database/sql"

	"order-management-service/internal/entity"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db}
}

const productColumns = `id, name, description, price, stock_quantity, category, image_url, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.Category, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// GetActiveProduct returns the product only if it is active.
func (r *ProductRepository) GetActiveProduct(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ? AND is_active = TRUE`
	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

// LockProductForUpdate fetches an active product inside tx and takes a row
// lock, serializing concurrent stock decrements on the same product.
func (r *ProductRepository) LockProductForUpdate(ctx context.Context, tx Tx, id string) (*entity.Product, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ? AND is_active = TRUE FOR UPDATE`
	return scanProduct(t.QueryRowContext(ctx, query, id))
}

// DecrementStock reduces stock within the caller's transaction. The guard on
// stock_quantity keeps the column non-negative even if the caller's check
// raced; zero rows affected is reported as ErrNotFound.
func (r *ProductRepository) DecrementStock(ctx context.Context, tx Tx, id string, quantity int) error {
	t, err := sqlTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = NOW() WHERE id = ? AND stock_quantity >= ?`
	res, err := t.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns active products sorted by name, optionally filtered by
// category.
func (r *ProductRepository) ListActive(ctx context.Context, category string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE`
	args := []any{}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return products, nil
}
