package mysql

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payment-service/internal/domain"
	"payment-service/internal/repository"
)

const txAttempts = 3

type store struct {
	db   *gorm.DB
	inTx bool
}

func NewStore(db *gorm.DB) repository.Store {
	return &store{db: db}
}

func (s *store) Orders() repository.OrderRepository     { return &orderRepo{s} }
func (s *store) Products() repository.ProductRepository { return &productRepo{s} }
func (s *store) Users() repository.UserRepository       { return &userRepo{s} }

func (s *store) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&store{db: tx, inTx: true})
		})
		if !retryable(err) {
			return err
		}
		log.Printf("store: transaction attempt %d/%d failed, retrying: %v", attempt, txAttempts, err)
		time.Sleep(time.Duration(attempt) * 20 * time.Millisecond)
	}
	return err
}

// MySQL 1213 is a deadlock victim and 1205 a lock wait timeout. Both leave
// the transaction fully rolled back, so rerunning fn is safe.
func retryable(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1213 || myErr.Number == 1205
	}
	return false
}

// read returns a query handle; inside a transaction it locks selected rows
// so concurrent reconciliations serialize on the same order and products.
func (s *store) read(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if s.inTx {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

type orderRepo struct{ s *store }

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	return r.s.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var o domain.Order
	err := r.s.read(ctx).Preload("Items").Where("order_number = ?", number).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	var o domain.Order
	err := r.s.read(ctx).Preload("Items").Where("payment_intent_id = ?", paymentIntentID).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := r.s.db.WithContext(ctx).Preload("Items").Order("created_at DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.s.db.WithContext(ctx).Preload("Items").Order("created_at ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, orderID uint64, status domain.OrderStatus) error {
	return r.s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}

func (r *orderRepo) MarkPaymentFailed(ctx context.Context, orderID uint64) error {
	return r.s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":         domain.StatusCancelled,
			"payment_status": domain.PaymentStatusFailed,
			"updated_at":     time.Now(),
		}).Error
}

type productRepo struct{ s *store }

func (r *productRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.s.read(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	if len(ids) == 0 {
		return out, nil
	}
	err := r.s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	return r.s.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"stock": stock, "updated_at": time.Now()}).Error
}

type userRepo struct{ s *store }

func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

var _ repository.Store = (*store)(nil)
