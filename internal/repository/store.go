package repository

import (
	"context"

	"payment-service/internal/domain"
)

// Lookup methods return (nil, nil) when no row matches; callers decide
// whether a miss is an error.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	FindRecent(ctx context.Context, limit int) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) error
	MarkPaymentFailed(ctx context.Context, orderID uint64) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Store aggregates the repositories over one backing database.
//
// Transaction runs fn against a store bound to a single database
// transaction: reads made through it take row locks, and fn returning an
// error rolls every write back.
type Store interface {
	Orders() OrderRepository
	Products() ProductRepository
	Users() UserRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}
