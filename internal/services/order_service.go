package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"payment-service/internal/domain"
	rabbit "payment-service/internal/infra/rabbitmq"
	"payment-service/internal/repository"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type CreateOrderItem struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	PaymentIntentID string
	Customer        domain.Customer
	ShippingAddress domain.ShippingAddress
	Items           []CreateOrderItem
}

type OrderService struct {
	store       repository.Store
	publisher   rabbit.PublisherInterface
	shippingFee float64
	currency    string
}

func NewOrderService(store repository.Store, pub rabbit.PublisherInterface, shippingFee float64, currency string) *OrderService {
	return &OrderService{
		store:       store,
		publisher:   pub,
		shippingFee: shippingFee,
		currency:    currency,
	}
}

// CreateOrder writes the unpaid order at checkout submission, before the
// provider captures the card. Line items snapshot the catalog name and price
// so later product edits never rewrite history.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("product %s: quantity must be positive", item.ProductID)
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.store.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var items []domain.OrderItem
	var subtotal float64
	for _, item := range in.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		lineTotal := product.Price * float64(item.Quantity)
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Total:     lineTotal,
		})
		subtotal += lineTotal
	}

	order := &domain.Order{
		OrderNumber:     fmt.Sprintf("ORDER-%d", time.Now().UnixMilli()),
		PaymentIntentID: in.PaymentIntentID,
		Status:          domain.StatusCreated,
		Customer:        in.Customer,
		ShippingAddress: in.ShippingAddress,
		Items:           items,
		Subtotal:        subtotal,
		ShippingFee:     s.shippingFee,
		Total:           subtotal + s.shippingFee,
		Currency:        s.currency,
	}

	if err := s.store.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	go s.publishOrderCreatedEvent(context.Background(), order)

	return order, nil
}

func (s *OrderService) publishOrderCreatedEvent(ctx context.Context, order *domain.Order) {
	evt := map[string]any{
		"orderNumber":     order.OrderNumber,
		"paymentIntentId": order.PaymentIntentID,
		"total":           order.Total,
		"currency":        order.Currency,
		"createdAt":       order.CreatedAt,
	}

	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("orders: publish order.created failed: %v", err)
	}
}

func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	order, err := s.store.Orders().FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListRecentOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.Orders().FindRecent(ctx, limit)
}

// AdvanceOrderStatus moves a paid order along the fulfilment chain. Payment
// transitions stay with the reconciliation flow.
func (s *OrderService) AdvanceOrderStatus(ctx context.Context, number string, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.store.Orders().FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.Status.CanAdvanceTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}
	if err := s.store.Orders().UpdateStatus(ctx, order.ID, next); err != nil {
		return nil, err
	}
	order.Status = next
	order.UpdatedAt = time.Now()
	return order, nil
}
