package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	common "github.com/entoun8/alshami-store/pkg/common/domain"
)

var (
	ErrCartNotFound   = errors.New("cart not found")
	ErrItemNotFound   = errors.New("cart item not found")
	ErrNoSession      = errors.New("no cart session")
	ErrStockExceeded  = errors.New("not enough stock")
	ErrOptimisticLock = errors.New("cart has been modified by another transaction")
)

// Item is a line-item snapshot. Price is frozen at add time and may
// drift from the current product price.
type Item struct {
	ProductID uuid.UUID
	Name      string
	Slug      string
	Image     string
	Price     string
	Qty       int
}

// Totals are the cached output of the pricing kernel, serialised as
// fixed two-decimal strings.
type Totals struct {
	Items    string
	Shipping string
	Tax      string
	Grand    string
}

// Cart binds exactly one of UserID or SessionCartID. A product appears
// in Items at most once.
type Cart struct {
	ID            uuid.UUID
	UserID        *uuid.UUID
	SessionCartID string
	Items         []Item
	Totals        Totals
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Owner identifies the cart owner of a request: an authenticated user,
// an anonymous session, or both during the sign-in transition.
type Owner struct {
	UserID        *uuid.UUID
	SessionCartID string
}

type CartRepository interface {
	NextID() (uuid.UUID, error)
	Create(cart *Cart) error
	Update(cart *Cart) error
	Delete(id uuid.UUID) error
	Find(id uuid.UUID) (*Cart, error)
	FindByUser(userID uuid.UUID) (*Cart, error)
	FindBySession(sessionCartID string) (*Cart, error)
}

// ItemInput is the client-provided line item for add-to-cart.
type ItemInput struct {
	ProductID uuid.UUID
	Name      string
	Slug      string
	Image     string
	Price     string
	Qty       int
}

func (in ItemInput) Validate() error {
	var issues []string
	if in.ProductID == uuid.Nil {
		issues = append(issues, "Product is required")
	}
	if len(in.Name) < 3 {
		issues = append(issues, "Name must be at least 3 characters")
	}
	if len(in.Slug) < 3 {
		issues = append(issues, "Slug must be at least 3 characters")
	}
	if in.Image == "" {
		issues = append(issues, "Image is required")
	}
	if in.Qty < 1 {
		issues = append(issues, "Quantity must be at least 1")
	}
	if len(issues) > 0 {
		return common.NewValidationError(issues...)
	}
	return nil
}
