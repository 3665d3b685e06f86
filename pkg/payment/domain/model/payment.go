package model

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrUnsupportedMethod = errors.New("payment method does not use card intents")
	ErrInvalidSignature  = errors.New("webhook signature verification failed")
)

// EventPaymentSucceeded is the only provider event the orchestrator
// consumes.
const EventPaymentSucceeded = "payment_intent.succeeded"

const IntentStatusSucceeded = "succeeded"

// Intent is the provider object representing a pending charge.
type Intent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
}

// IntentStatus is the provider's current view of an intent.
type IntentStatus struct {
	ID      string
	Status  string
	OrderID string
}

// WebhookEvent is a verified provider callback. OrderID is empty when
// the intent carries no order metadata.
type WebhookEvent struct {
	Type     string
	IntentID string
	OrderID  string
}

// PaymentGateway is the payment provider surface the orchestrator
// needs. ParseWebhook MUST verify the signature over the exact raw
// payload bytes before returning an event.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, orderID uuid.UUID, amountMinor int64, currency string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*IntentStatus, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
