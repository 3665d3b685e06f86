package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/entoun8/alshami-store/pkg/cart/domain/model"
	catalogmodel "github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	common "github.com/entoun8/alshami-store/pkg/common/domain"
)

// ProductFinder is the slice of the catalog the cart needs: the current
// product row for stock checks and price snapshots.
type ProductFinder interface {
	Find(id uuid.UUID) (*catalogmodel.Product, error)
}

type CartService interface {
	// AddItem adds one unit of a product to the owner's active cart,
	// creating the cart on first add. Stock is checked but not reserved.
	AddItem(owner model.Owner, input model.ItemInput) (*model.Cart, error)
	// RemoveItem decrements the line's quantity, dropping the line at
	// quantity one.
	RemoveItem(owner model.Owner, productID uuid.UUID) (*model.Cart, error)
	GetMyCart(owner model.Owner) (*model.Cart, error)
	Clear(cartID uuid.UUID) error
	// MergeOnSignIn rebinds the anonymous cart to the user, discarding
	// any cart the user already had.
	MergeOnSignIn(sessionCartID string, userID uuid.UUID) error
}

func NewCartService(repo model.CartRepository, products ProductFinder, dispatcher common.EventDispatcher) CartService {
	return &cartService{repo: repo, products: products, dispatcher: dispatcher}
}

type cartService struct {
	repo       model.CartRepository
	products   ProductFinder
	dispatcher common.EventDispatcher
}

func (s *cartService) AddItem(owner model.Owner, input model.ItemInput) (*model.Cart, error) {
	if owner.SessionCartID == "" {
		return nil, model.ErrNoSession
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	product, err := s.products.Find(input.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.findOwnerCart(owner)
	if errors.Is(err, model.ErrCartNotFound) {
		cart, err = s.newCart(owner)
	}
	if err != nil {
		return nil, err
	}

	if idx := lineIndex(cart.Items, product.ID); idx >= 0 {
		if product.Stock < cart.Items[idx].Qty+1 {
			return nil, model.ErrStockExceeded
		}
		cart.Items[idx].Qty++
	} else {
		if product.Stock < 1 {
			return nil, model.ErrStockExceeded
		}
		cart.Items = append(cart.Items, model.Item{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Image:     product.Image,
			Price:     product.Price,
			Qty:       1,
		})
	}

	if err := s.updateCart(cart); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ItemAddedToCart{CartID: cart.ID, ProductID: product.ID, Qty: 1})
	return cart, nil
}

func (s *cartService) RemoveItem(owner model.Owner, productID uuid.UUID) (*model.Cart, error) {
	cart, err := s.findOwnerCart(owner)
	if err != nil {
		return nil, err
	}

	idx := lineIndex(cart.Items, productID)
	if idx < 0 {
		return nil, model.ErrItemNotFound
	}

	if cart.Items[idx].Qty > 1 {
		cart.Items[idx].Qty--
	} else {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	}

	if err := s.updateCart(cart); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ItemRemovedFromCart{CartID: cart.ID, ProductID: productID})
	return cart, nil
}

func (s *cartService) GetMyCart(owner model.Owner) (*model.Cart, error) {
	return s.findOwnerCart(owner)
}

func (s *cartService) Clear(cartID uuid.UUID) error {
	cart, err := s.repo.Find(cartID)
	if err != nil {
		return err
	}

	cart.Items = nil
	if err := s.updateCart(cart); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CartCleared{CartID: cartID})
	return nil
}

func (s *cartService) MergeOnSignIn(sessionCartID string, userID uuid.UUID) error {
	anonymous, err := s.repo.FindBySession(sessionCartID)
	if errors.Is(err, model.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// The just-expressed anonymous intent wins over a stale saved cart.
	var discarded *uuid.UUID
	if saved, err := s.repo.FindByUser(userID); err == nil {
		if err := s.repo.Delete(saved.ID); err != nil {
			return err
		}
		discarded = &saved.ID
	} else if !errors.Is(err, model.ErrCartNotFound) {
		return err
	}

	anonymous.UserID = &userID
	anonymous.SessionCartID = ""
	if err := s.updateCart(anonymous); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CartMerged{CartID: anonymous.ID, UserID: userID, DiscardedCartID: discarded})
	return nil
}

// findOwnerCart prefers the authenticated identity over the anonymous
// session when both are present.
func (s *cartService) findOwnerCart(owner model.Owner) (*model.Cart, error) {
	if owner.UserID != nil {
		return s.repo.FindByUser(*owner.UserID)
	}
	if owner.SessionCartID == "" {
		return nil, model.ErrCartNotFound
	}
	return s.repo.FindBySession(owner.SessionCartID)
}

func (s *cartService) newCart(owner model.Owner) (*model.Cart, error) {
	cartID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cart := &model.Cart{
		ID:        cartID,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if owner.UserID != nil {
		cart.UserID = owner.UserID
	} else {
		cart.SessionCartID = owner.SessionCartID
	}
	return cart, nil
}

func (s *cartService) updateCart(cart *model.Cart) error {
	totals, err := ComputeTotals(cart.Items)
	if err != nil {
		return err
	}
	cart.Totals = totals
	cart.UpdatedAt = time.Now().UTC()

	if cart.Version == 0 {
		cart.Version = 1
		return s.repo.Create(cart)
	}
	cart.Version++
	return s.repo.Update(cart)
}

func lineIndex(items []model.Item, productID uuid.UUID) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
