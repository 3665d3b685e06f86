package model

import "github.com/google/uuid"

type ItemAddedToCart struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Qty       int
}

func (e ItemAddedToCart) Type() string { return "ItemAddedToCart" }

type ItemRemovedFromCart struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
}

func (e ItemRemovedFromCart) Type() string { return "ItemRemovedFromCart" }

type CartMerged struct {
	CartID          uuid.UUID
	UserID          uuid.UUID
	DiscardedCartID *uuid.UUID
}

func (e CartMerged) Type() string { return "CartMerged" }

type CartCleared struct {
	CartID uuid.UUID
}

func (e CartCleared) Type() string { return "CartCleared" }
