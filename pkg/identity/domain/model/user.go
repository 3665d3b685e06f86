package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	common "github.com/entoun8/alshami-store/pkg/common/domain"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email is already taken")
	ErrInvalidToken         = errors.New("invalid auth token")
	ErrUnknownPaymentMethod = errors.New("payment method is not recognised")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PaymentMethods is the recognised set of checkout payment methods.
// Only Stripe drives a server-side intent flow; the others are stored
// as a preference and settled out of band.
var PaymentMethods = []string{"Stripe", "CashOnDelivery", "PayPal"}

const DefaultPaymentMethod = "Stripe"

func IsRecognisedPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// ShippingAddress is a value object frozen onto orders at creation.
type ShippingAddress struct {
	FullName      string `json:"fullName"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
}

const minAddressFieldLength = 3

func (a ShippingAddress) Validate() error {
	var issues []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"Full name", a.FullName},
		{"Street address", a.StreetAddress},
		{"City", a.City},
		{"Postal code", a.PostalCode},
		{"Country", a.Country},
	} {
		if len(field.value) < minAddressFieldLength {
			issues = append(issues, fmt.Sprintf("%s must be at least %d characters", field.name, minAddressFieldLength))
		}
	}
	if len(issues) > 0 {
		return common.NewValidationError(issues...)
	}
	return nil
}

// UserProfile is provisioned on first sign-in; its ID is distinct from
// the auth provider's subject.
type UserProfile struct {
	ID            uuid.UUID
	Email         string
	FullName      string
	Image         string
	Role          Role
	Address       *ShippingAddress
	PaymentMethod string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type UserRepository interface {
	NextID() (uuid.UUID, error)
	Create(user *UserProfile) error
	Update(user *UserProfile) error
	Find(id uuid.UUID) (*UserProfile, error)
	FindByEmail(email string) (*UserProfile, error)
}

// Subject is the identity the auth provider vouches for.
type Subject struct {
	Email    string
	FullName string
	Image    string
}

// TokenVerifier checks a bearer token issued by the auth provider and
// yields the subject it belongs to.
type TokenVerifier interface {
	Verify(token string) (*Subject, error)
}
