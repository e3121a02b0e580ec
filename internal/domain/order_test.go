package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderItem_LineTotal(t *testing.T) {
	tests := []struct {
		name     string
		item     OrderItem
		expected float64
	}{
		{name: "explicit total wins", item: OrderItem{Price: 10, Quantity: 3, Total: 25}, expected: 25},
		{name: "falls back to price times quantity", item: OrderItem{Price: 10, Quantity: 3}, expected: 30},
		{name: "negative price yields zero", item: OrderItem{Price: -5, Quantity: 2}, expected: 0},
		{name: "nan total yields zero", item: OrderItem{Total: math.NaN()}, expected: 0},
		{name: "infinite fallback yields zero", item: OrderItem{Price: math.Inf(1), Quantity: 1}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.item.LineTotal(), 0.001)
		})
	}
}

func TestOrderStatus_CountsTowardSales(t *testing.T) {
	assert.True(t, StatusPaid.CountsTowardSales())
	assert.True(t, StatusProcessing.CountsTowardSales())
	assert.True(t, StatusShipped.CountsTowardSales())
	assert.True(t, StatusDelivered.CountsTowardSales())

	assert.False(t, StatusCreated.CountsTowardSales())
	assert.False(t, StatusCancelled.CountsTowardSales())
}

func TestOrderStatus_CanAdvanceTo(t *testing.T) {
	assert.True(t, StatusPaid.CanAdvanceTo(StatusProcessing))
	assert.True(t, StatusProcessing.CanAdvanceTo(StatusShipped))
	assert.True(t, StatusShipped.CanAdvanceTo(StatusDelivered))

	assert.False(t, StatusCreated.CanAdvanceTo(StatusPaid))
	assert.False(t, StatusPaid.CanAdvanceTo(StatusDelivered))
	assert.False(t, StatusDelivered.CanAdvanceTo(StatusProcessing))
	assert.False(t, StatusCancelled.CanAdvanceTo(StatusProcessing))
}

func TestOrder_ReferenceDate(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 8, 2, 15, 0, 0, 0, time.UTC)

	order := Order{CreatedAt: created, UpdatedAt: updated}
	assert.Equal(t, updated, order.ReferenceDate())

	order.UpdatedAt = time.Time{}
	assert.Equal(t, created, order.ReferenceDate())
}
