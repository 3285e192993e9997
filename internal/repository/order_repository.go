package repository

import (
	"context"
	"database/sql"

	"order-management-service/internal/entity"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

// InsertOrderWithItems writes the order row and all of its items within the
// caller's transaction. Nothing is visible until the caller commits.
func (r *OrderRepository) InsertOrderWithItems(ctx context.Context, tx Tx, order *entity.Order, items []entity.OrderItem) error {
	t, err := sqlTx(tx)
	if err != nil {
		return err
	}

	orderQuery := `
		INSERT INTO orders (id, customer_email, customer_name, shipping_address, billing_address,
			total_amount, tax_amount, shipping_amount, status, payment_status, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = t.ExecContext(ctx, orderQuery,
		order.ID, order.CustomerEmail, order.CustomerName, order.ShippingAddress, order.BillingAddress,
		order.TotalAmount, order.TaxAmount, order.ShippingAmount, order.Status, order.PaymentStatus, order.PaymentMethod)
	if err != nil {
		return classify(err)
	}

	// Insert items with a single batch statement
	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price)
		VALUES `
	var values []any
	for _, item := range items {
		itemQuery += "(?, ?, ?, ?, ?, ?),"
		values = append(values, item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
	}
	itemQuery = itemQuery[:len(itemQuery)-1]

	_, err = t.ExecContext(ctx, itemQuery, values...)
	if err != nil {
		return classify(err)
	}
	return nil
}

// GetByID returns the order with its items, joined with product display
// fields. Items reflect the price snapshotted at order time, not the current
// catalog price.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	orderQuery := `
		SELECT id, customer_email, customer_name, shipping_address, billing_address,
			total_amount, tax_amount, shipping_amount, status, payment_status, payment_method,
			created_at, updated_at
		FROM orders WHERE id = ?`

	var o entity.Order
	err := r.db.QueryRowContext(ctx, orderQuery, id).Scan(
		&o.ID, &o.CustomerEmail, &o.CustomerName, &o.ShippingAddress, &o.BillingAddress,
		&o.TotalAmount, &o.TaxAmount, &o.ShippingAmount, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}

	itemQuery := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.total_price,
			p.name, p.description, p.image_url
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`

	rows, err := r.db.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice,
			&item.ProductName, &item.ProductDescription, &item.ProductImage)
		if err != nil {
			return nil, classify(err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return &o, nil
}

// UpdateStatus applies a partial status update and bumps updated_at. Fields
// left nil in the request are untouched.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, upd entity.UpdateOrderStatusRequest) error {
	query := `UPDATE orders SET updated_at = NOW()`
	args := []any{}
	if upd.Status != nil {
		query += `, status = ?`
		args = append(args, *upd.Status)
	}
	if upd.PaymentStatus != nil {
		query += `, payment_status = ?`
		args = append(args, *upd.PaymentStatus)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
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

// List returns orders matching the filter, newest first, plus the total
// matching count for pagination.
func (r *OrderRepository) List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.CustomerEmail != "" {
		where += ` AND customer_email = ?`
		args = append(args, filter.CustomerEmail)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.PaymentStatus != "" {
		where += ` AND payment_status = ?`
		args = append(args, filter.PaymentStatus)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := `
		SELECT id, customer_email, customer_name, shipping_address, billing_address,
			total_amount, tax_amount, shipping_amount, status, payment_status, payment_method,
			created_at, updated_at
		FROM orders` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		var o entity.Order
		err := rows.Scan(&o.ID, &o.CustomerEmail, &o.CustomerName, &o.ShippingAddress, &o.BillingAddress,
			&o.TotalAmount, &o.TaxAmount, &o.ShippingAmount, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
			&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, 0, classify(err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}

	return orders, total, nil
}
