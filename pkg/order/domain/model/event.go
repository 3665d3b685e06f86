package model

import "github.com/google/uuid"

type OrderCreated struct {
	OrderID    uuid.UUID
	UserID     uuid.UUID
	TotalPrice string
}

func (e OrderCreated) Type() string { return "OrderCreated" }
