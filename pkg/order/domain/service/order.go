package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	cartmodel "github.com/entoun8/alshami-store/pkg/cart/domain/model"
	catalogmodel "github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	common "github.com/entoun8/alshami-store/pkg/common/domain"
	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	"github.com/entoun8/alshami-store/pkg/order/domain/model"
)

type UserFinder interface {
	Find(id uuid.UUID) (*identitymodel.UserProfile, error)
}

type CartFinder interface {
	FindByUser(userID uuid.UUID) (*cartmodel.Cart, error)
}

type ProductFinder interface {
	Find(id uuid.UUID) (*catalogmodel.Product, error)
}

type OrderService interface {
	// PlaceOrder converts the user's cart into an immutable order.
	// Every precondition failure is a distinct error so the caller can
	// redirect to the missing checkout step.
	PlaceOrder(userID uuid.UUID) (uuid.UUID, error)
	GetOrder(orderID uuid.UUID) (*model.Order, error)
	ListUserOrders(userID uuid.UUID) ([]model.Summary, error)
}

func NewOrderService(repo model.OrderRepository, users UserFinder, carts CartFinder, products ProductFinder, dispatcher common.EventDispatcher) OrderService {
	return &orderService{repo: repo, users: users, carts: carts, products: products, dispatcher: dispatcher}
}

type orderService struct {
	repo       model.OrderRepository
	users      UserFinder
	carts      CartFinder
	products   ProductFinder
	dispatcher common.EventDispatcher
}

func (s *orderService) PlaceOrder(userID uuid.UUID) (uuid.UUID, error) {
	user, err := s.users.Find(userID)
	if err != nil {
		return uuid.Nil, err
	}

	cart, err := s.carts.FindByUser(userID)
	if errors.Is(err, cartmodel.ErrCartNotFound) {
		return uuid.Nil, model.ErrCartEmpty
	}
	if err != nil {
		return uuid.Nil, err
	}
	if len(cart.Items) == 0 {
		return uuid.Nil, model.ErrCartEmpty
	}

	if user.Address == nil {
		return uuid.Nil, model.ErrNoShippingAddress
	}
	if !identitymodel.IsRecognisedPaymentMethod(user.PaymentMethod) {
		return uuid.Nil, model.ErrNoPaymentMethod
	}

	// Advisory pre-check; the authoritative stock check reruns inside
	// the creation transaction.
	for _, line := range cart.Items {
		product, err := s.products.Find(line.ProductID)
		if err != nil {
			return uuid.Nil, err
		}
		if product.Stock < line.Qty {
			return uuid.Nil, model.ErrInsufficientStock
		}
	}

	orderID, err := s.repo.NextID()
	if err != nil {
		return uuid.Nil, err
	}

	order := &model.Order{
		ID:              orderID,
		UserID:          userID,
		ShippingAddress: *user.Address,
		PaymentMethod:   user.PaymentMethod,
		Items:           freezeItems(orderID, cart.Items),
		ItemsPrice:      cart.Totals.Items,
		ShippingPrice:   cart.Totals.Shipping,
		TaxPrice:        cart.Totals.Tax,
		TotalPrice:      cart.Totals.Grand,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.CreateFromCart(order, cart.ID); err != nil {
		return uuid.Nil, err
	}

	_ = s.dispatcher.Dispatch(model.OrderCreated{OrderID: orderID, UserID: userID, TotalPrice: order.TotalPrice})
	return orderID, nil
}

func (s *orderService) GetOrder(orderID uuid.UUID) (*model.Order, error) {
	return s.repo.Find(orderID)
}

func (s *orderService) ListUserOrders(userID uuid.UUID) ([]model.Summary, error) {
	return s.repo.ListByUser(userID)
}

func freezeItems(orderID uuid.UUID, items []cartmodel.Item) []model.Item {
	frozen := make([]model.Item, 0, len(items))
	for _, item := range items {
		frozen = append(frozen, model.Item{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			Image:     item.Image,
			Price:     item.Price,
			Qty:       item.Qty,
		})
	}
	return frozen
}
