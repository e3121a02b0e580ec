package domain

type PaymentEventType string

const (
	PaymentSucceeded PaymentEventType = "payment_succeeded"
	PaymentFailed    PaymentEventType = "payment_failed"
	PaymentIgnored   PaymentEventType = "ignored"
)

// PaymentEvent is the provider-neutral form of a verified webhook event.
type PaymentEvent struct {
	Type            PaymentEventType `json:"type"`
	PaymentIntentID string           `json:"paymentIntentId"`
	FailureMessage  string           `json:"failureMessage,omitempty"`
}
