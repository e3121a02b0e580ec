package services

import (
	"time"

	"payment-service/internal/domain"
)

const (
	TestPaymentIntentID = "pi_123"
	TestOrderNumber     = "ORDER-1"
	TestProductID       = "p1"
	TestCustomerEmail   = "jane@example.com"
	TestAdminThreshold  = 3
)

func CreateTestOrder(status domain.OrderStatus, items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		ID:              1,
		OrderNumber:     TestOrderNumber,
		PaymentIntentID: TestPaymentIntentID,
		Status:          status,
		Customer: domain.Customer{
			Email:     TestCustomerEmail,
			FirstName: "Jane",
			LastName:  "Doe",
		},
		ShippingAddress: domain.ShippingAddress{
			Address:    "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		Items:     items,
		Subtotal:  100,
		Total:     100,
		Currency:  "usd",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func CreateTestProduct(id, name string, price float64, stock int) *domain.Product {
	return &domain.Product{
		ID:    id,
		Name:  name,
		Price: price,
		Stock: stock,
	}
}
