package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"payment-service/internal/domain"
	"payment-service/internal/notify"
	"payment-service/internal/repository"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	args := m.Called(ctx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkPaymentFailed(ctx context.Context, orderID uint64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockStore hands out the mock repositories and runs transaction callbacks
// against itself, so service tests observe exactly the calls made inside the
// transaction. Set TxErr to simulate a transaction that cannot commit, or
// TxReruns to rerun the callback the way the gorm store does after a
// deadlock rollback.
type MockStore struct {
	OrdersRepo   *MockOrderRepository
	ProductsRepo *MockProductRepository
	UsersRepo    *MockUserRepository
	TxErr        error
	TxReruns     int
}

func NewMockStore() *MockStore {
	return &MockStore{
		OrdersRepo:   new(MockOrderRepository),
		ProductsRepo: new(MockProductRepository),
		UsersRepo:    new(MockUserRepository),
	}
}

func (m *MockStore) Orders() repository.OrderRepository     { return m.OrdersRepo }
func (m *MockStore) Products() repository.ProductRepository { return m.ProductsRepo }
func (m *MockStore) Users() repository.UserRepository       { return m.UsersRepo }

func (m *MockStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	if m.TxErr != nil {
		return m.TxErr
	}
	var err error
	for i := 0; i <= m.TxReruns; i++ {
		err = fn(m)
	}
	return err
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email notify.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderPaid(ctx context.Context, order *domain.Order, lowStock []domain.LowStockItem) {
	m.Called(ctx, order, lowStock)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyAndParse(payload []byte, sigHeader string) (*domain.PaymentEvent, error) {
	args := m.Called(payload, sigHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentEvent), args.Error(1)
}

var _ repository.Store = (*MockStore)(nil)
