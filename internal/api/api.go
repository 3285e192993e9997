package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"order-management-service/internal/entity"
	"order-management-service/internal/service"
)

// OrderService is what the handlers need from the order engine.
type OrderService interface {
	CreateOrder(ctx context.Context, req *entity.CreateOrderRequest) (*entity.Order, error)
	GetOrder(ctx context.Context, id string) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, upd entity.UpdateOrderStatusRequest) (*entity.Order, error)
	ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, entity.Pagination, error)
}

// ProductService serves the catalog read paths.
type ProductService interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	ListProducts(ctx context.Context, category string) ([]*entity.Product, error)
	Invalidate(ctx context.Context, productIDs ...string)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	orders   OrderService
	products ProductService
	db       Pinger
	metrics  service.Recorder
	dev      bool
	started  time.Time
}

// NewHandler creates the API boundary. A nil metrics recorder disables
// metric emission.
func NewHandler(orders OrderService, products ProductService, db Pinger, metrics service.Recorder, dev bool) *Handler {
	if metrics == nil {
		metrics = service.NoopRecorder{}
	}
	return &Handler{
		orders:   orders,
		products: products,
		db:       db,
		metrics:  metrics,
		dev:      dev,
		started:  time.Now(),
	}
}

// Register wires up all routes.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	e.GET("/products", h.GetProducts)
	e.GET("/products/:id", h.GetProduct)

	e.POST("/orders", h.PlaceOrder)
	e.GET("/orders", h.GetOrders)
	e.GET("/orders/:id", h.GetOrder)
	e.PATCH("/orders/:id/status", h.UpdateOrderStatus)
}

func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":   "E-commerce API is running!",
		"version":   "1.0.0",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.db.Ping(c.Request().Context()); err != nil {
		h.metrics.RecordError(err)
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":  "ERROR",
			"service": "order-management-service",
			"error":   "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "OK",
		"service": "order-management-service",
		"uptime":  time.Since(h.started).String(),
		"time":    time.Now().Format(time.RFC3339),
	})
}

// PlaceOrder handles POST /orders.
func (h *Handler) PlaceOrder(c echo.Context) error {
	start := time.Now()
	h.metrics.RecordMetric("Custom/Order/PlaceOrder", 1)

	var req entity.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload", nil)
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Validation failed", fieldErrors(err))
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), &req)
	if err != nil {
		h.metrics.RecordMetric("Custom/Order/PlaceOrder/Error", 1)
		h.metrics.RecordError(err)
		return h.errorResponse(c, err)
	}

	// Stock changed; drop stale catalog cache entries.
	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	h.products.Invalidate(c.Request().Context(), ids...)

	h.metrics.RecordTiming("Custom/Order/PlaceOrder/ResponseTime", time.Since(start))
	return ok(c, http.StatusCreated, "Order placed successfully", order)
}

// GetOrder handles GET /orders/:id.
func (h *Handler) GetOrder(c echo.Context) error {
	h.metrics.RecordMetric("Custom/Order/GetOrder", 1)

	order, err := h.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.metrics.RecordError(err)
		return h.errorResponse(c, err)
	}
	return ok(c, http.StatusOK, "", order)
}

// GetOrders handles GET /orders with filtering and pagination.
func (h *Handler) GetOrders(c echo.Context) error {
	h.metrics.RecordMetric("Custom/Order/GetOrders", 1)

	var filter entity.OrderFilter
	if err := c.Bind(&filter); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid query parameters", nil)
	}
	if err := c.Validate(&filter); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid query parameters", fieldErrors(err))
	}

	orders, pagination, err := h.orders.ListOrders(c.Request().Context(), filter)
	if err != nil {
		h.metrics.RecordError(err)
		return h.errorResponse(c, err)
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: orders, Pagination: &pagination})
}

// UpdateOrderStatus handles PATCH /orders/:id/status.
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	h.metrics.RecordMetric("Custom/Order/UpdateStatus", 1)

	var upd entity.UpdateOrderStatusRequest
	if err := c.Bind(&upd); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request payload", nil)
	}
	if err := c.Validate(&upd); err != nil {
		return fail(c, http.StatusBadRequest, "Validation failed", fieldErrors(err))
	}

	order, err := h.orders.UpdateOrderStatus(c.Request().Context(), c.Param("id"), upd)
	if err != nil {
		h.metrics.RecordMetric("Custom/Order/UpdateStatus/Error", 1)
		h.metrics.RecordError(err)
		return h.errorResponse(c, err)
	}
	return ok(c, http.StatusOK, "Order status updated successfully", order)
}

// GetProducts handles GET /products.
func (h *Handler) GetProducts(c echo.Context) error {
	h.metrics.RecordMetric("Custom/Product/GetProducts", 1)

	products, err := h.products.ListProducts(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		h.metrics.RecordError(err)
		return h.errorResponse(c, err)
	}
	if products == nil {
		products = []*entity.Product{}
	}
	return ok(c, http.StatusOK, "", products)
}

// GetProduct handles GET /products/:id.
func (h *Handler) GetProduct(c echo.Context) error {
	h.metrics.RecordMetric("Custom/Product/GetProduct", 1)

	product, err := h.products.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.metrics.RecordError(err)
		return h.errorResponse(c, err)
	}
	return ok(c, http.StatusOK, "", product)
}
