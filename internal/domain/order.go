package domain

import (
	"math"
	"time"
)

type OrderStatus string

const (
	StatusCreated    OrderStatus = "created"
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatusFailed marks an order whose capture failed. Sales reporting
// excludes such orders even when the status field was left behind.
const PaymentStatusFailed = "failed"

type Customer struct {
	Email     string `json:"email" gorm:"size:255;not null"`
	FirstName string `json:"firstName" gorm:"size:100"`
	LastName  string `json:"lastName" gorm:"size:100"`
	Phone     string `json:"phone,omitempty" gorm:"size:32"`
	UserID    string `json:"userId,omitempty" gorm:"size:64;index"`
}

type ShippingAddress struct {
	Address    string `json:"address" gorm:"size:255"`
	City       string `json:"city" gorm:"size:100"`
	PostalCode string `json:"postalCode" gorm:"size:20"`
	Country    string `json:"country" gorm:"size:100"`
}

type Order struct {
	ID              uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderNumber     string          `json:"orderNumber" gorm:"size:64;uniqueIndex;not null"`
	PaymentIntentID string          `json:"paymentIntentId" gorm:"size:128;uniqueIndex;not null"`
	Status          OrderStatus     `json:"status" gorm:"size:16;index;default:'created'"`
	PaymentStatus   string          `json:"paymentStatus,omitempty" gorm:"size:16"`
	Customer        Customer        `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:ship_"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal        float64         `json:"subtotal"`
	ShippingFee     float64         `json:"shipping"`
	Total           float64         `json:"total"`
	Currency        string          `json:"currency" gorm:"size:8;default:'usd'"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// OrderItem is a snapshot of the product at checkout time. Orders stay
// historically accurate even when the catalog row changes or disappears.
type OrderItem struct {
	ID        uint64  `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64  `json:"-" gorm:"index;not null"`
	ProductID string  `json:"id" gorm:"size:64;index"`
	Name      string  `json:"name" gorm:"size:255"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// LineTotal prefers the snapshot total and falls back to price*quantity.
// Non-finite or non-positive values come back as zero.
func (i OrderItem) LineTotal() float64 {
	total := i.Total
	if total <= 0 {
		total = i.Price * float64(i.Quantity)
	}
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return 0
	}
	return total
}

// CountsTowardSales reports whether the order belongs in revenue metrics.
func (s OrderStatus) CountsTowardSales() bool {
	switch s {
	case StatusPaid, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// CanAdvanceTo reports whether an admin may move an order from its current
// status to next. Only the forward fulfilment chain is allowed.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	switch s {
	case StatusPaid:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}

// ReferenceDate is the timestamp analytics buckets an order under. The last
// update usually marks when the payment landed; creation time is the fallback.
func (o *Order) ReferenceDate() time.Time {
	if !o.UpdatedAt.IsZero() {
		return o.UpdatedAt
	}
	return o.CreatedAt
}
