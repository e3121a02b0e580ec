package payment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"payment-service/internal/domain"
)

var (
	ErrSecretNotConfigured = errors.New("webhook signing secret not configured")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
)

// Verifier authenticates a raw webhook payload and maps it to a
// provider-neutral event.
type Verifier interface {
	VerifyAndParse(payload []byte, sigHeader string) (*domain.PaymentEvent, error)
}

type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) (*StripeVerifier, error) {
	if secret == "" {
		return nil, ErrSecretNotConfigured
	}
	return &StripeVerifier{secret: secret}, nil
}

func (v *StripeVerifier) VerifyAndParse(payload []byte, sigHeader string) (*domain.PaymentEvent, error) {
	if err := webhook.ValidatePayload(payload, sigHeader, v.secret); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	// Data may be absent or null on an otherwise valid event.
	var pi stripe.PaymentIntent
	if event.Data != nil && len(event.Data.Raw) > 0 {
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			// Valid signature, but not a payment-intent shaped object.
			return &domain.PaymentEvent{Type: domain.PaymentIgnored}, nil
		}
	}
	if pi.ID == "" {
		// Signed but carrying no object to act on.
		return &domain.PaymentEvent{Type: domain.PaymentIgnored}, nil
	}

	switch event.Type {
	case "payment_intent.succeeded":
		return &domain.PaymentEvent{
			Type:            domain.PaymentSucceeded,
			PaymentIntentID: pi.ID,
		}, nil

	case "payment_intent.payment_failed":
		evt := &domain.PaymentEvent{
			Type:            domain.PaymentFailed,
			PaymentIntentID: pi.ID,
		}
		if pi.LastPaymentError != nil {
			evt.FailureMessage = pi.LastPaymentError.Msg
		}
		return evt, nil
	}

	return &domain.PaymentEvent{Type: domain.PaymentIgnored}, nil
}

var _ Verifier = (*StripeVerifier)(nil)
