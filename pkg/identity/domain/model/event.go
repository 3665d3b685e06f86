package model

import "github.com/google/uuid"

type UserProfileCreated struct {
	UserID uuid.UUID
	Email  string
}

func (e UserProfileCreated) Type() string { return "UserProfileCreated" }

type ShippingAddressUpdated struct {
	UserID uuid.UUID
}

func (e ShippingAddressUpdated) Type() string { return "ShippingAddressUpdated" }

type PaymentMethodSelected struct {
	UserID uuid.UUID
	Method string
}

func (e PaymentMethodSelected) Type() string { return "PaymentMethodSelected" }
