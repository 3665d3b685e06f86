package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrNoShippingAddress = errors.New("shipping address is missing")
	ErrNoPaymentMethod   = errors.New("payment method is missing")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Item is an order line frozen from the cart snapshot.
type Item struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Slug      string
	Image     string
	Price     string
	Qty       int
}

// Order is immutable after creation; the only permitted mutation is the
// one-way unpaid -> paid transition.
type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ShippingAddress identitymodel.ShippingAddress
	PaymentMethod   string
	Items           []Item
	ItemsPrice      string
	ShippingPrice   string
	TaxPrice        string
	TotalPrice      string
	IsPaid          bool
	PaidAt          *time.Time
	PaymentIntentID string
	CreatedAt       time.Time
}

// Summary is the order-history row.
type Summary struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	IsPaid     bool
	PaidAt     *time.Time
	TotalPrice string
	ItemCount  int
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	// CreateFromCart inserts the order and its items, decrements stock
	// per line, and deletes the cart, all in one transaction. A line
	// whose decrement would push stock negative aborts the whole
	// transaction with ErrInsufficientStock.
	CreateFromCart(order *Order, cartID uuid.UUID) error
	Find(id uuid.UUID) (*Order, error)
	ListByUser(userID uuid.UUID) ([]Summary, error)
	// MarkPaid flips the paid flag only when it is still unset and
	// reports whether this call performed the transition.
	MarkPaid(id uuid.UUID, paidAt time.Time) (bool, error)
	SetPaymentIntent(id uuid.UUID, intentID string) error
}
