package http

import "payment-service/internal/domain"

type CreateOrderItemRequest struct {
	ProductID string `json:"id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	PaymentIntentID string                   `json:"paymentIntentId" binding:"required"`
	Customer        domain.Customer          `json:"customer" binding:"required"`
	ShippingAddress domain.ShippingAddress   `json:"shippingAddress"`
	Items           []CreateOrderItemRequest `json:"items" binding:"required,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TimeSeries struct {
	Type   string               `json:"type"`
	Points []domain.SalesBucket `json:"points"`
}

type AnalyticsResponse struct {
	Success    bool                `json:"success"`
	Period     string              `json:"period"`
	Metrics    domain.SalesMetrics `json:"metrics"`
	TimeSeries TimeSeries          `json:"timeSeries"`
}
