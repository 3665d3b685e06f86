package model

import "github.com/google/uuid"

type PaymentIntentCreated struct {
	OrderID     uuid.UUID
	IntentID    string
	AmountMinor int64
}

func (e PaymentIntentCreated) Type() string { return "PaymentIntentCreated" }

type OrderPaid struct {
	OrderID  uuid.UUID
	IntentID string
}

func (e OrderPaid) Type() string { return "OrderPaid" }
