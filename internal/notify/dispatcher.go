package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"payment-service/internal/domain"
)

// Dispatcher sends the post-payment emails. Every send is best effort:
// failures are logged and swallowed, so the webhook can acknowledge the
// provider once the reconciliation itself has committed.
type Dispatcher struct {
	mailer     Mailer
	adminEmail string
}

func NewDispatcher(mailer Mailer, adminEmail string) *Dispatcher {
	return &Dispatcher{mailer: mailer, adminEmail: adminEmail}
}

func (d *Dispatcher) OrderPaid(ctx context.Context, order *domain.Order, lowStock []domain.LowStockItem) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.trySend(ctx, "customer confirmation", Email{
			To:      order.Customer.Email,
			Subject: fmt.Sprintf("Your order %s is confirmed", order.OrderNumber),
			Body:    customerBody(order),
		})
		return nil
	})

	g.Go(func() error {
		d.trySend(ctx, "admin new-order alert", Email{
			To:      d.adminEmail,
			Subject: fmt.Sprintf("New paid order %s", order.OrderNumber),
			Body:    adminBody(order),
		})
		return nil
	})

	if len(lowStock) > 0 {
		g.Go(func() error {
			d.trySend(ctx, "low-stock alert", Email{
				To:      d.adminEmail,
				Subject: fmt.Sprintf("Low stock after order %s", order.OrderNumber),
				Body:    lowStockBody(lowStock),
			})
			return nil
		})
	}

	_ = g.Wait()
}

func (d *Dispatcher) trySend(ctx context.Context, label string, email Email) {
	if err := d.mailer.Send(ctx, email); err != nil {
		log.Printf("notify: %s send failed: %v", label, err)
	}
}

func customerBody(order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", strings.TrimSpace(order.Customer.FirstName+" "+order.Customer.LastName))
	fmt.Fprintf(&b, "Thanks for your purchase. Order %s has been paid.\n\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %dx %s - %.2f %s\n", item.Quantity, item.Name, item.LineTotal(), order.Currency)
	}
	fmt.Fprintf(&b, "\nSubtotal: %.2f %s\n", order.Subtotal, order.Currency)
	fmt.Fprintf(&b, "Shipping: %.2f %s\n", order.ShippingFee, order.Currency)
	fmt.Fprintf(&b, "Total:    %.2f %s\n\n", order.Total, order.Currency)
	addr := order.ShippingAddress
	fmt.Fprintf(&b, "Shipping to: %s, %s %s, %s\n", addr.Address, addr.PostalCode, addr.City, addr.Country)
	return b.String()
}

func adminBody(order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s was paid by %s (%.2f %s).\n\nItems:\n",
		order.OrderNumber, order.Customer.Email, order.Total, order.Currency)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %dx %s (product %s)\n", item.Quantity, item.Name, item.ProductID)
	}
	return b.String()
}

func lowStockBody(items []domain.LowStockItem) string {
	var b strings.Builder
	b.WriteString("The following products are running low:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  %s (%s): %d left\n", item.Name, item.ProductID, item.Stock)
	}
	return b.String()
}
