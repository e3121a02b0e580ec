package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"payment-service/internal/domain"
	"payment-service/internal/mocks"
	"payment-service/internal/payment"
	"payment-service/internal/services"
)

const testJWTSecret = "jwt_test_secret"

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) HandlePaymentSucceeded(ctx context.Context, paymentIntentID string) (*services.ReconciliationResult, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReconciliationResult), args.Error(1)
}

func (m *MockReconciler) HandlePaymentFailed(ctx context.Context, paymentIntentID string) error {
	args := m.Called(ctx, paymentIntentID)
	return args.Error(0)
}

type MockAnalytics struct {
	mock.Mock
}

func (m *MockAnalytics) SalesReport(ctx context.Context, period string) (*domain.SalesReport, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesReport), args.Error(1)
}

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) CreateOrder(ctx context.Context, in services.CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrders) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrders) ListRecentOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrders) AdvanceOrderStatus(ctx context.Context, number string, next domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, number, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type fixture struct {
	router     *gin.Engine
	verifier   *mocks.MockVerifier
	reconciler *MockReconciler
	analytics  *MockAnalytics
	orders     *MockOrders
	users      *mocks.MockUserRepository
}

func newFixture(t *testing.T, verifier payment.Verifier) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		reconciler: new(MockReconciler),
		analytics:  new(MockAnalytics),
		orders:     new(MockOrders),
		users:      new(mocks.MockUserRepository),
	}
	if mv, ok := verifier.(*mocks.MockVerifier); ok {
		f.verifier = mv
	}

	handler := NewHandler(verifier, f.reconciler, f.analytics, f.orders, nil)
	f.router = gin.New()
	handler.RegisterRoutes(f.router, AuthRequired(testJWTSecret, f.users))
	return f
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	assert.NoError(t, err)
	return "Bearer " + signed
}

func TestHandler_StripeWebhook_UnconfiguredSecret(t *testing.T) {
	f := newFixture(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_StripeWebhook_InvalidSignature(t *testing.T) {
	verifier := new(mocks.MockVerifier)
	verifier.On("VerifyAndParse", mock.Anything, mock.Anything).Return(nil, payment.ErrInvalidSignature)

	f := newFixture(t, verifier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.reconciler.AssertNotCalled(t, "HandlePaymentSucceeded", mock.Anything, mock.Anything)
}

func TestHandler_StripeWebhook_PaymentSucceeded(t *testing.T) {
	verifier := new(mocks.MockVerifier)
	verifier.On("VerifyAndParse", mock.Anything, "sig_header").Return(&domain.PaymentEvent{
		Type:            domain.PaymentSucceeded,
		PaymentIntentID: "pi_123",
	}, nil)

	f := newFixture(t, verifier)
	f.reconciler.On("HandlePaymentSucceeded", mock.Anything, "pi_123").
		Return(&services.ReconciliationResult{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "sig_header")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	f.reconciler.AssertExpectations(t)
}

func TestHandler_StripeWebhook_PaymentFailed(t *testing.T) {
	verifier := new(mocks.MockVerifier)
	verifier.On("VerifyAndParse", mock.Anything, mock.Anything).Return(&domain.PaymentEvent{
		Type:            domain.PaymentFailed,
		PaymentIntentID: "pi_456",
	}, nil)

	f := newFixture(t, verifier)
	f.reconciler.On("HandlePaymentFailed", mock.Anything, "pi_456").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.reconciler.AssertExpectations(t)
}

func TestHandler_StripeWebhook_IgnoredEventStillAcknowledged(t *testing.T) {
	verifier := new(mocks.MockVerifier)
	verifier.On("VerifyAndParse", mock.Anything, mock.Anything).Return(&domain.PaymentEvent{
		Type: domain.PaymentIgnored,
	}, nil)

	f := newFixture(t, verifier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.reconciler.AssertNotCalled(t, "HandlePaymentSucceeded", mock.Anything, mock.Anything)
	f.reconciler.AssertNotCalled(t, "HandlePaymentFailed", mock.Anything, mock.Anything)
}

func TestHandler_StripeWebhook_ReconciliationErrorTriggersRedelivery(t *testing.T) {
	verifier := new(mocks.MockVerifier)
	verifier.On("VerifyAndParse", mock.Anything, mock.Anything).Return(&domain.PaymentEvent{
		Type:            domain.PaymentSucceeded,
		PaymentIntentID: "pi_123",
	}, nil)

	f := newFixture(t, verifier)
	f.reconciler.On("HandlePaymentSucceeded", mock.Anything, "pi_123").
		Return(nil, errors.New("transaction retries exhausted"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(`{}`))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_Analytics_AuthRequired(t *testing.T) {
	f := newFixture(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Analytics_InvalidToken(t *testing.T) {
	f := newFixture(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Analytics_NonAdminForbidden(t *testing.T) {
	f := newFixture(t, nil)
	f.users.On("FindByID", mock.Anything, "u1").
		Return(&domain.User{ID: "u1", Role: "customer"}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
	req.Header.Set("Authorization", bearerToken(t, "u1"))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_Analytics_AdminGetsReport(t *testing.T) {
	f := newFixture(t, nil)
	f.users.On("FindByID", mock.Anything, "admin1").
		Return(&domain.User{ID: "admin1", Role: domain.RoleAdmin}, nil)
	f.analytics.On("SalesReport", mock.Anything, "30d").Return(&domain.SalesReport{
		Period:     "30d",
		SeriesType: "day",
		Metrics: domain.SalesMetrics{
			TotalRevenue: 120,
			TotalOrders:  2,
		},
		Series: []domain.SalesBucket{{Key: "2026-08-30", Revenue: 120, Orders: 2}},
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics?period=30d", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin1"))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AnalyticsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "30d", resp.Period)
	assert.InDelta(t, 120, resp.Metrics.TotalRevenue, 0.001)
	assert.Equal(t, "day", resp.TimeSeries.Type)
	assert.Len(t, resp.TimeSeries.Points, 1)
}

func TestHandler_Analytics_UnknownPeriod(t *testing.T) {
	f := newFixture(t, nil)
	f.users.On("FindByID", mock.Anything, "admin1").
		Return(&domain.User{ID: "admin1", Role: domain.RoleAdmin}, nil)
	f.analytics.On("SalesReport", mock.Anything, "fortnight").Return(nil, services.ErrUnknownPeriod)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics?period=fortnight", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin1"))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Analytics_AggregationError(t *testing.T) {
	f := newFixture(t, nil)
	f.users.On("FindByID", mock.Anything, "admin1").
		Return(&domain.User{ID: "admin1", Role: domain.RoleAdmin}, nil)
	f.analytics.On("SalesReport", mock.Anything, "all").Return(nil, errors.New("database connection error"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
	req.Header.Set("Authorization", bearerToken(t, "admin1"))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestHandler_CreateOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("services.CreateOrderInput")).
		Return(&domain.Order{OrderNumber: "ORDER-1", Status: domain.StatusCreated}, nil)

	body := `{"paymentIntentId":"pi_123","customer":{"email":"jane@example.com"},"items":[{"id":"p1","quantity":2}]}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.orders.AssertExpectations(t)
}

func TestHandler_CreateOrder_BadRequest(t *testing.T) {
	f := newFixture(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestHandler_UpdateOrderStatus_InvalidTransition(t *testing.T) {
	f := newFixture(t, nil)
	f.users.On("FindByID", mock.Anything, "admin1").
		Return(&domain.User{ID: "admin1", Role: domain.RoleAdmin}, nil)
	f.orders.On("AdvanceOrderStatus", mock.Anything, "ORDER-1", domain.StatusDelivered).
		Return(nil, services.ErrInvalidTransition)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/admin/orders/ORDER-1/status", bytes.NewBufferString(`{"status":"delivered"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "admin1"))
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
