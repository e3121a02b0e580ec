package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"payment-service/internal/domain"
	"payment-service/internal/mocks"
	"payment-service/internal/notify"
)

const adminEmail = "alerts@example.com"

func testOrder() *domain.Order {
	return &domain.Order{
		OrderNumber: "ORDER-1",
		Customer:    domain.Customer{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
		Items: []domain.OrderItem{
			{ProductID: "p1", Name: "Widget", Price: 50, Quantity: 2, Total: 100},
		},
		Subtotal: 100,
		Total:    100,
		Currency: "usd",
	}
}

func sentTo(address string) any {
	return mock.MatchedBy(func(e notify.Email) bool { return e.To == address })
}

func TestDispatcher_OrderPaid_SendsCustomerAndAdminEmails(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("Send", mock.Anything, sentTo("jane@example.com")).Return(nil).Once()
	mailer.On("Send", mock.Anything, sentTo(adminEmail)).Return(nil).Once()

	d := notify.NewDispatcher(mailer, adminEmail)
	d.OrderPaid(context.Background(), testOrder(), nil)

	mailer.AssertExpectations(t)
	mailer.AssertNumberOfCalls(t, "Send", 2)
}

func TestDispatcher_OrderPaid_SendsLowStockAlert(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(e notify.Email) bool {
		return e.To == adminEmail && e.Subject == "Low stock after order ORDER-1"
	})).Return(nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil)

	d := notify.NewDispatcher(mailer, adminEmail)
	d.OrderPaid(context.Background(), testOrder(), []domain.LowStockItem{
		{ProductID: "p1", Name: "Widget", Stock: 3},
	})

	mailer.AssertExpectations(t)
	mailer.AssertNumberOfCalls(t, "Send", 3)
}

func TestDispatcher_OrderPaid_OneFailureDoesNotBlockOthers(t *testing.T) {
	mailer := new(mocks.MockMailer)
	mailer.On("Send", mock.Anything, sentTo("jane@example.com")).
		Return(errors.New("smtp connection refused")).Once()
	mailer.On("Send", mock.Anything, sentTo(adminEmail)).Return(nil).Times(2)

	d := notify.NewDispatcher(mailer, adminEmail)

	// must not panic or propagate the customer-send failure
	assert.NotPanics(t, func() {
		d.OrderPaid(context.Background(), testOrder(), []domain.LowStockItem{
			{ProductID: "p1", Name: "Widget", Stock: 0},
		})
	})

	mailer.AssertExpectations(t)
}
