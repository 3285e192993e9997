package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. The zero value is not valid; new orders always start as pending.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

type Order struct {
	ID              string          `json:"id"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerName    string          `json:"customer_name"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	ShippingAmount  decimal.Decimal `json:"shipping_amount"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentMethod   string          `json:"payment_method"`
	Items           []OrderItem     `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem snapshots the product's price at order time; UnitPrice is never
// re-read from the catalog after the order is created.
type OrderItem struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`

	// Display fields joined from the products table on read.
	ProductName        string `json:"product_name,omitempty"`
	ProductDescription string `json:"product_description,omitempty"`
	ProductImage       string `json:"product_image,omitempty"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=100"`
}

type CreateOrderRequest struct {
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	CustomerName    string             `json:"customer_name" validate:"required,min=2,max=100"`
	ShippingAddress string             `json:"shipping_address" validate:"required,min=10,max=500"`
	BillingAddress  string             `json:"billing_address" validate:"omitempty,min=10,max=500"`
	PaymentMethod   string             `json:"payment_method" validate:"required,oneof=credit_card debit_card paypal stripe cash_on_delivery"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

// UpdateOrderStatusRequest is a partial update; nil fields are left unchanged.
type UpdateOrderStatusRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	PaymentStatus *string `json:"payment_status" validate:"omitempty,oneof=pending paid failed refunded"`
}

type OrderFilter struct {
	CustomerEmail string `query:"customer_email" validate:"omitempty,email"`
	Status        string `query:"status" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	PaymentStatus string `query:"payment_status" validate:"omitempty,oneof=pending paid failed refunded"`
	Limit         int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset        int    `query:"offset" validate:"omitempty,min=0"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}
