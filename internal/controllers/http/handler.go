package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"payment-service/internal/domain"
	"payment-service/internal/payment"
	"payment-service/internal/services"
)

const (
	maxWebhookBody    = 1 << 20
	analyticsCacheTTL = time.Minute
)

// Narrow interfaces over the services so the handler is testable with fakes.
type Reconciler interface {
	HandlePaymentSucceeded(ctx context.Context, paymentIntentID string) (*services.ReconciliationResult, error)
	HandlePaymentFailed(ctx context.Context, paymentIntentID string) error
}

type Analytics interface {
	SalesReport(ctx context.Context, period string) (*domain.SalesReport, error)
}

type Orders interface {
	CreateOrder(ctx context.Context, in services.CreateOrderInput) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListRecentOrders(ctx context.Context, limit int) ([]domain.Order, error)
	AdvanceOrderStatus(ctx context.Context, number string, next domain.OrderStatus) (*domain.Order, error)
}

type Handler struct {
	verifier   payment.Verifier
	reconciler Reconciler
	analytics  Analytics
	orders     Orders
	rdb        *redis.Client
}

// NewHandler wires the HTTP surface. verifier may be nil when the webhook
// secret is unconfigured; the webhook route then fails closed with a 500.
func NewHandler(verifier payment.Verifier, reconciler Reconciler, analytics Analytics, orders Orders, rdb *redis.Client) *Handler {
	return &Handler{
		verifier:   verifier,
		reconciler: reconciler,
		analytics:  analytics,
		orders:     orders,
		rdb:        rdb,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	r.GET("/healthz", h.Health)
	r.POST("/webhooks/stripe", h.StripeWebhook)
	r.POST("/orders", h.CreateOrder)

	admin := r.Group("/admin", auth, AdminOnly())
	admin.GET("/analytics", h.Analytics)
	admin.GET("/orders", h.ListOrders)
	admin.GET("/orders/:number", h.GetOrder)
	admin.PUT("/orders/:number/status", h.UpdateOrderStatus)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.verifier == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook secret not configured"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := h.verifier.VerifyAndParse(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	switch event.Type {
	case domain.PaymentSucceeded:
		if _, err := h.reconciler.HandlePaymentSucceeded(ctx, event.PaymentIntentID); err != nil {
			// The provider redelivers on non-2xx; redelivery is safe because
			// reconciliation is idempotent.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process payment event"})
			return
		}
	case domain.PaymentFailed:
		if err := h.reconciler.HandlePaymentFailed(ctx, event.PaymentIntentID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process payment event"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) Analytics(c *gin.Context) {
	period := c.DefaultQuery("period", services.PeriodAll)
	ctx := c.Request.Context()

	cacheKey := "analytics:" + period
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		}
	}

	report, err := h.analytics.SalesReport(ctx, period)
	if err != nil {
		if errors.Is(err, services.ErrUnknownPeriod) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown period", "details": period})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to build sales report", "details": err.Error()})
		return
	}

	resp := AnalyticsResponse{
		Success: true,
		Period:  report.Period,
		Metrics: report.Metrics,
		TimeSeries: TimeSeries{
			Type:   report.SeriesType,
			Points: report.Series,
		},
	}

	if h.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			h.rdb.Set(ctx, cacheKey, data, analyticsCacheTTL)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.CreateOrderInput{
		PaymentIntentID: req.PaymentIntentID,
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyOrder), errors.Is(err, services.ErrProductNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrDuplicatedKey):
			c.JSON(http.StatusConflict, gin.H{"error": "payment reference already used"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	orders, err := h.orders.ListRecentOrders(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrderByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.AdvanceOrderStatus(c.Request.Context(), c.Param("number"), domain.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, services.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
		}
		return
	}
	c.JSON(http.StatusOK, order)
}
