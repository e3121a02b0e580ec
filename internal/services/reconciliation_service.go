package services

import (
	"context"
	"log"
	"time"

	"payment-service/internal/domain"
	rabbit "payment-service/internal/infra/rabbitmq"
	"payment-service/internal/repository"
)

// Notifier decouples reconciliation from the mail stack.
type Notifier interface {
	OrderPaid(ctx context.Context, order *domain.Order, lowStock []domain.LowStockItem)
}

type ReconciliationResult struct {
	Order       *domain.Order
	LowStock    []domain.LowStockItem
	AlreadyPaid bool
}

type ReconciliationService struct {
	store             repository.Store
	publisher         rabbit.PublisherInterface
	notifier          Notifier
	lowStockThreshold int
}

func NewReconciliationService(store repository.Store, pub rabbit.PublisherInterface, notifier Notifier, lowStockThreshold int) *ReconciliationService {
	return &ReconciliationService{
		store:             store,
		publisher:         pub,
		notifier:          notifier,
		lowStockThreshold: lowStockThreshold,
	}
}

// HandlePaymentSucceeded converts a verified payment into durable state: all
// stock decrements and the paid flip commit in one transaction. Redelivered
// events short-circuit on the paid check, so processing is at most once.
// A nil result with nil error means no matching order existed.
func (s *ReconciliationService) HandlePaymentSucceeded(ctx context.Context, paymentIntentID string) (*ReconciliationResult, error) {
	var result ReconciliationResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		// The store reruns this callback after a deadlock rollback; anything
		// accumulated on a rolled-back pass must not leak into the retry.
		result = ReconciliationResult{}

		order, err := tx.Orders().FindByPaymentIntentID(ctx, paymentIntentID)
		if err != nil {
			return err
		}
		if order == nil {
			// The provider can deliver before checkout finished writing the
			// order; redelivery will pick it up later.
			log.Printf("reconciliation: no order for payment reference %s, skipping", paymentIntentID)
			return nil
		}
		result.Order = order

		if order.Status == domain.StatusPaid {
			result.AlreadyPaid = true
			return nil
		}

		for _, item := range order.Items {
			if item.Quantity <= 0 || item.ProductID == "" {
				continue
			}
			product, err := tx.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				log.Printf("reconciliation: product %s missing for order %s, stock not adjusted",
					item.ProductID, order.OrderNumber)
				continue
			}
			newStock := product.Stock - item.Quantity
			if newStock < 0 {
				newStock = 0
			}
			if err := tx.Products().UpdateStock(ctx, product.ID, newStock); err != nil {
				return err
			}
			if newStock <= s.lowStockThreshold {
				result.LowStock = append(result.LowStock, domain.LowStockItem{
					ProductID: product.ID,
					Name:      product.Name,
					Stock:     newStock,
				})
			}
		}

		return tx.Orders().UpdateStatus(ctx, order.ID, domain.StatusPaid)
	})
	if err != nil {
		return nil, err
	}
	if result.Order == nil {
		return nil, nil
	}

	if !result.AlreadyPaid {
		result.Order.Status = domain.StatusPaid
		result.Order.UpdatedAt = time.Now()
		go s.publishOrderEvent(context.Background(), "order.paid", result.Order)
		go s.notifier.OrderPaid(context.Background(), result.Order, result.LowStock)
	}

	return &result, nil
}

// HandlePaymentFailed cancels the order. No stock was reserved at checkout,
// so nothing needs restoring.
func (s *ReconciliationService) HandlePaymentFailed(ctx context.Context, paymentIntentID string) error {
	var cancelled *domain.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		cancelled = nil

		order, err := tx.Orders().FindByPaymentIntentID(ctx, paymentIntentID)
		if err != nil {
			return err
		}
		if order == nil {
			log.Printf("reconciliation: no order for failed payment %s, skipping", paymentIntentID)
			return nil
		}
		if order.Status == domain.StatusPaid {
			// A late failure event never demotes a captured order.
			log.Printf("reconciliation: order %s already paid, ignoring failure event", order.OrderNumber)
			return nil
		}
		if order.Status == domain.StatusCancelled {
			// Redelivered failure event; the cancellation already went out.
			return nil
		}
		cancelled = order
		return tx.Orders().MarkPaymentFailed(ctx, order.ID)
	})
	if err != nil {
		return err
	}

	if cancelled != nil {
		cancelled.Status = domain.StatusCancelled
		cancelled.PaymentStatus = domain.PaymentStatusFailed
		cancelled.UpdatedAt = time.Now()
		go s.publishOrderEvent(context.Background(), "order.cancelled", cancelled)
	}
	return nil
}

func (s *ReconciliationService) publishOrderEvent(ctx context.Context, pattern string, order *domain.Order) {
	evt := map[string]any{
		"orderNumber":     order.OrderNumber,
		"paymentIntentId": order.PaymentIntentID,
		"status":          order.Status,
		"total":           order.Total,
		"currency":        order.Currency,
		"updatedAt":       order.UpdatedAt,
	}

	if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
		log.Printf("reconciliation: publish %s failed: %v", pattern, err)
	}
}
