package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"order-management-service/internal/entity"
	"order-management-service/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	taxRate           = decimal.NewFromFloat(0.08)
	freeShippingAbove = decimal.NewFromFloat(100.00)
	flatShipping      = decimal.NewFromFloat(9.99)
)

// txTimeout bounds one order-creation unit of work. Expiry rolls back and
// surfaces as a transient storage error, safe to retry.
const txTimeout = 10 * time.Second

// TxBeginner starts a unit of work spanning catalog and order writes.
type TxBeginner interface {
	BeginTx(ctx context.Context) (repository.Tx, error)
}

// CatalogStore is the order engine's view of the product catalog.
type CatalogStore interface {
	GetActiveProduct(ctx context.Context, id string) (*entity.Product, error)
	ListActive(ctx context.Context, category string) ([]*entity.Product, error)
	LockProductForUpdate(ctx context.Context, tx repository.Tx, id string) (*entity.Product, error)
	DecrementStock(ctx context.Context, tx repository.Tx, id string, quantity int) error
}

// OrderStore persists orders and their line items.
type OrderStore interface {
	InsertOrderWithItems(ctx context.Context, tx repository.Tx, order *entity.Order, items []entity.OrderItem) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, upd entity.UpdateOrderStatusRequest) error
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, int64, error)
}

// OrderService is the order transaction engine plus the read paths over the
// order store.
type OrderService struct {
	txs       TxBeginner
	catalog   CatalogStore
	orders    OrderStore
	publisher EventPublisher
}

// NewOrderService creates a new instance of OrderService. A nil publisher
// disables event publishing.
func NewOrderService(txs TxBeginner, catalog CatalogStore, orders OrderStore, publisher EventPublisher) *OrderService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &OrderService{
		txs:       txs,
		catalog:   catalog,
		orders:    orders,
		publisher: publisher,
	}
}

// CreateOrder runs the whole order creation as one unit of work: for each
// requested line, in request order, the product row is locked, availability
// is checked against stock, the current price is snapshotted into the line
// item and stock is decremented. Totals are computed, the order and its items
// are inserted, and everything commits together. Any failure rolls the unit
// of work back entirely; no stock decrement or order row survives.
//
// Duplicate product ids are deliberately not merged: each line is checked
// against the stock as already decremented by earlier lines of the same
// request.
func (s *OrderService) CreateOrder(ctx context.Context, req *entity.CreateOrderRequest) (*entity.Order, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	logger.Info().
		Str("order_id", orderID).
		Str("customer_email", req.CustomerEmail).
		Int("item_count", len(req.Items)).
		Msg("Order creation started")

	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	tx, err := s.txs.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.buildOrder(ctx, tx, orderID, req)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Str("order_id", orderID).Msg("Rollback failed")
		}
		logger.Warn().Err(err).Str("order_id", orderID).Msg("Order creation failed, transaction rolled back")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Join(repository.ErrUnavailable, err)
	}

	logger.Info().
		Str("order_id", orderID).
		Str("total_amount", order.TotalAmount.String()).
		Msg("Order created successfully")

	if err := s.publisher.PublishOrderEvent(ctx, order, "created"); err != nil {
		// The order is committed; a lost event must not fail the request.
		logger.Error().Err(err).Str("order_id", orderID).Msg("Error publishing order created event")
	}

	// Re-read outside the transaction to return items enriched with product
	// display fields.
	return s.GetOrder(ctx, orderID)
}

// buildOrder performs steps 1-5 of the creation workflow inside tx. The
// caller owns commit and rollback.
func (s *OrderService) buildOrder(ctx context.Context, tx repository.Tx, orderID string, req *entity.CreateOrderRequest) (*entity.Order, error) {
	subtotal := decimal.Zero
	items := make([]entity.OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		product, err := s.catalog.LockProductForUpdate(ctx, tx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &ProductUnavailableError{ProductID: line.ProductID}
			}
			return nil, err
		}

		if product.StockQuantity < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.StockQuantity,
				Requested:   line.Quantity,
			}
		}

		itemTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(itemTotal)

		items = append(items, entity.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			ProductID:  product.ID,
			Quantity:   line.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: itemTotal,
		})

		if err := s.catalog.DecrementStock(ctx, tx, product.ID, line.Quantity); err != nil {
			return nil, err
		}
	}

	taxAmount := subtotal.Mul(taxRate).Round(2)
	shippingAmount := flatShipping
	if subtotal.GreaterThan(freeShippingAbove) {
		shippingAmount = decimal.Zero
	}
	totalAmount := subtotal.Add(taxAmount).Add(shippingAmount)

	billing := req.BillingAddress
	if billing == "" {
		billing = req.ShippingAddress
	}

	order := &entity.Order{
		ID:              orderID,
		CustomerEmail:   req.CustomerEmail,
		CustomerName:    req.CustomerName,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		TotalAmount:     totalAmount,
		TaxAmount:       taxAmount,
		ShippingAmount:  shippingAmount,
		Status:          entity.StatusPending,
		PaymentStatus:   entity.PaymentPending,
		PaymentMethod:   req.PaymentMethod,
		Items:           items,
	}

	if err := s.orders.InsertOrderWithItems(ctx, tx, order, items); err != nil {
		return nil, err
	}
	return order, nil
}

// checkRequest guards the engine against callers bypassing the boundary
// validation. Shape limits mirror the API schema.
func checkRequest(req *entity.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "order must contain at least one item"}
	}
	if len(req.Items) > 50 {
		return &ValidationError{Field: "items", Reason: "order cannot contain more than 50 items"}
	}
	for _, line := range req.Items {
		if line.ProductID == "" {
			return &ValidationError{Field: "product_id", Reason: "must not be empty"}
		}
		if line.Quantity < 1 || line.Quantity > 100 {
			return &ValidationError{Field: "quantity", Reason: "must be between 1 and 100"}
		}
	}
	return nil
}

// GetOrder returns the fully materialized order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus applies a partial status/payment_status update and
// returns the updated order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, upd entity.UpdateOrderStatusRequest) (*entity.Order, error) {
	if upd.Status == nil && upd.PaymentStatus == nil {
		return nil, &ValidationError{Field: "status", Reason: "at least one of status, payment_status is required"}
	}

	if err := s.orders.UpdateStatus(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishOrderEvent(ctx, order, "updated"); err != nil {
		logger.Error().Err(err).Str("order_id", id).Msg("Error publishing order updated event")
	}
	return order, nil
}

// ListOrders returns a page of orders matching the filter, newest first.
// Limit defaults to 10 (capped at 100), offset to 0.
func (s *OrderService) ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, entity.Pagination, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, entity.Pagination{}, err
	}

	pagination := entity.Pagination{
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
		HasMore: int64(filter.Offset+filter.Limit) < total,
	}
	return orders, pagination, nil
}
