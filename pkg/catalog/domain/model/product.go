package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	common "github.com/entoun8/alshami-store/pkg/common/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSlugTaken       = errors.New("slug is already taken")
	ErrOptimisticLock  = errors.New("product has been modified by another transaction")
)

// Product is the catalog aggregate. Price is carried as a two-decimal
// string everywhere outside the pricing kernel so serialisation stays
// stable.
type Product struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Category    string
	Brand       string
	Description string
	Stock       int
	Price       string
	Image       string
	Version     int
	CreatedAt   time.Time
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(product *Product) error
	Update(product *Product) error
	Delete(id uuid.UUID) error
	Find(id uuid.UUID) (*Product, error)
	FindBySlug(slug string) (*Product, error)
	List(category string) ([]Product, error)
	Categories() ([]string, error)
	SlugExists(slug string) (bool, error)
}

// ProductInput carries admin-provided product fields.
type ProductInput struct {
	Name        string
	Slug        string
	Category    string
	Brand       string
	Description string
	Stock       int
	Price       string
	Image       string
}

const minFieldLength = 3

func (in ProductInput) Validate() error {
	var issues []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"Name", in.Name},
		{"Slug", in.Slug},
		{"Category", in.Category},
		{"Brand", in.Brand},
		{"Description", in.Description},
	} {
		if len(field.value) < minFieldLength {
			issues = append(issues, fmt.Sprintf("%s must be at least %d characters", field.name, minFieldLength))
		}
	}
	if in.Image == "" {
		issues = append(issues, "Image is required")
	}
	if in.Stock < 0 {
		issues = append(issues, "Stock must be a positive number")
	}
	if _, err := ParsePrice(in.Price); err != nil {
		issues = append(issues, "Price must have exactly two decimal places")
	}
	if len(issues) > 0 {
		return common.NewValidationError(issues...)
	}
	return nil
}

// ParsePrice accepts a non-negative decimal string and normalises it to
// two fractional digits.
func ParsePrice(raw string) (string, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", err
	}
	if d.IsNegative() {
		return "", errors.New("price cannot be negative")
	}
	if d.Exponent() < -2 {
		return "", errors.New("price must have at most two decimal places")
	}
	return d.StringFixed(2), nil
}
