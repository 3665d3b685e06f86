package tests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmodel "github.com/entoun8/alshami-store/pkg/cart/domain/model"
	catalogmodel "github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	common "github.com/entoun8/alshami-store/pkg/common/domain"
	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	"github.com/entoun8/alshami-store/pkg/order/domain/model"
	"github.com/entoun8/alshami-store/pkg/order/domain/service"
)

type fixture struct {
	orders     service.OrderService
	repo       *mockOrderRepository
	users      *mockUserFinder
	carts      *mockCartFinder
	products   *mockProductFinder
	dispatcher *mockEventDispatcher
}

func setup(t *testing.T) *fixture {
	f := &fixture{
		repo:       nil,
		users:      &mockUserFinder{store: make(map[uuid.UUID]*identitymodel.UserProfile)},
		carts:      &mockCartFinder{store: make(map[uuid.UUID]*cartmodel.Cart)},
		products:   &mockProductFinder{store: make(map[uuid.UUID]*catalogmodel.Product)},
		dispatcher: &mockEventDispatcher{},
	}
	f.repo = &mockOrderRepository{
		store:    make(map[uuid.UUID]*model.Order),
		products: f.products,
		carts:    f.carts,
	}
	f.orders = service.NewOrderService(f.repo, f.users, f.carts, f.products, f.dispatcher)
	return f
}

func (f *fixture) seedUser(withAddress bool, paymentMethod string) *identitymodel.UserProfile {
	user := &identitymodel.UserProfile{
		ID:            uuid.New(),
		Email:         "amal@example.com",
		FullName:      "Amal Haddad",
		Role:          identitymodel.RoleUser,
		PaymentMethod: paymentMethod,
	}
	if withAddress {
		user.Address = &identitymodel.ShippingAddress{
			FullName:      "Amal Haddad",
			StreetAddress: "12 Wattle Street",
			City:          "Sydney",
			PostalCode:    "2000",
			Country:       "Australia",
		}
	}
	f.users.store[user.ID] = user
	return user
}

func (f *fixture) seedProduct(stock int, price string) *catalogmodel.Product {
	product := &catalogmodel.Product{
		ID:    uuid.New(),
		Slug:  "sumac",
		Name:  "Sumac",
		Price: price,
		Image: "/images/sumac.jpg",
		Stock: stock,
	}
	f.products.store[product.ID] = product
	return product
}

func (f *fixture) seedCart(userID uuid.UUID, lines ...cartmodel.Item) *cartmodel.Cart {
	items := "0.00"
	if len(lines) > 0 {
		items = "57.00"
	}
	cart := &cartmodel.Cart{
		ID:     uuid.New(),
		UserID: &userID,
		Items:  lines,
		Totals: cartmodel.Totals{Items: items, Shipping: "10.00", Tax: "8.55", Grand: "75.55"},
	}
	f.carts.store[cart.ID] = cart
	return cart
}

func cartLine(product *catalogmodel.Product, qty int) cartmodel.Item {
	return cartmodel.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		Image:     product.Image,
		Price:     product.Price,
		Qty:       qty,
	}
}

func TestPlaceOrder(t *testing.T) {
	t.Run("Success freezes the cart into an order", func(t *testing.T) {
		f := setup(t)
		user := f.seedUser(true, "Stripe")
		product := f.seedProduct(5, "28.50")
		f.seedCart(user.ID, cartLine(product, 2))

		orderID, err := f.orders.PlaceOrder(user.ID)

		require.NoError(t, err)
		order, err := f.repo.Find(orderID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, order.UserID)
		assert.Equal(t, "Stripe", order.PaymentMethod)
		assert.Equal(t, "57.00", order.ItemsPrice)
		assert.Equal(t, "75.55", order.TotalPrice)
		assert.False(t, order.IsPaid)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 2, order.Items[0].Qty)

		// Stock was decremented and the cart is gone.
		assert.Equal(t, 3, f.products.store[product.ID].Stock)
		_, err = f.carts.FindByUser(user.ID)
		assert.ErrorIs(t, err, cartmodel.ErrCartNotFound)

		require.Len(t, f.dispatcher.events, 1)
		_, ok := f.dispatcher.events[0].(model.OrderCreated)
		assert.True(t, ok)
	})

	t.Run("Fails for an unknown user", func(t *testing.T) {
		f := setup(t)
		_, err := f.orders.PlaceOrder(uuid.New())
		assert.ErrorIs(t, err, identitymodel.ErrUserNotFound)
	})

	t.Run("Fails without a cart", func(t *testing.T) {
		f := setup(t)
		user := f.seedUser(true, "Stripe")

		_, err := f.orders.PlaceOrder(user.ID)
		assert.ErrorIs(t, err, model.ErrCartEmpty)
	})

	t.Run("Fails on an empty cart", func(t *testing.T) {
		f := setup(t)
		user := f.seedUser(true, "Stripe")
		f.seedCart(user.ID)

		_, err := f.orders.PlaceOrder(user.ID)
		assert.ErrorIs(t, err, model.ErrCartEmpty)
	})

	t.Run("Fails without a shipping address", func(t *testing.T) {
		f := setup(t)
		user := f.seedUser(false, "Stripe")
		product := f.seedProduct(5, "28.50")
		f.seedCart(user.ID, cartLine(product, 1))

		_, err := f.orders.PlaceOrder(user.ID)
		assert.ErrorIs(t, err, model.ErrNoShippingAddress)
	})

	t.Run("Fails without a payment method", func(t *testing.T) {
		f := setup(t)
		user := f.seedUser(true, "")
		product := f.seedProduct(5, "28.50")
		f.seedCart(user.ID, cartLine(product, 1))

		_, err := f.orders.PlaceOrder(user.ID)
		assert.ErrorIs(t, err, model.ErrNoPaymentMethod)
	})

	t.Run("Insufficient stock aborts without side effects", func(t *testing.T) {
		f := setup(t)
		user := f.seedUser(true, "Stripe")
		inStock := f.seedProduct(1, "28.50")
		outOfStock := f.seedProduct(0, "14.25")
		cart := f.seedCart(user.ID, cartLine(inStock, 1), cartLine(outOfStock, 1))

		_, err := f.orders.PlaceOrder(user.ID)

		assert.ErrorIs(t, err, model.ErrInsufficientStock)
		assert.Equal(t, 1, f.products.store[inStock.ID].Stock)
		assert.Empty(t, f.repo.store)
		_, cartErr := f.carts.Find(cart.ID)
		assert.NoError(t, cartErr)
		assert.Empty(t, f.dispatcher.events)
	})
}

func TestListUserOrders(t *testing.T) {
	f := setup(t)
	user := f.seedUser(true, "CashOnDelivery")
	product := f.seedProduct(10, "28.50")
	f.seedCart(user.ID, cartLine(product, 2))

	orderID, err := f.orders.PlaceOrder(user.ID)
	require.NoError(t, err)

	summaries, err := f.orders.ListUserOrders(user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, orderID, summaries[0].ID)
	assert.Equal(t, "75.55", summaries[0].TotalPrice)
	assert.Equal(t, 1, summaries[0].ItemCount)
	assert.False(t, summaries[0].IsPaid)
}

// mockOrderRepository mimics the transactional conversion: it applies
// stock decrements and the cart delete only when every line fits.
type mockOrderRepository struct {
	store    map[uuid.UUID]*model.Order
	products *mockProductFinder
	carts    *mockCartFinder
}

func (m *mockOrderRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }
func (m *mockOrderRepository) CreateFromCart(order *model.Order, cartID uuid.UUID) error {
	for _, item := range order.Items {
		product, ok := m.products.store[item.ProductID]
		if !ok || product.Stock < item.Qty {
			return model.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		m.products.store[item.ProductID].Stock -= item.Qty
	}
	delete(m.carts.store, cartID)
	copied := *order
	m.store[order.ID] = &copied
	return nil
}
func (m *mockOrderRepository) Find(id uuid.UUID) (*model.Order, error) {
	if order, ok := m.store[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, model.ErrOrderNotFound
}
func (m *mockOrderRepository) ListByUser(userID uuid.UUID) ([]model.Summary, error) {
	var summaries []model.Summary
	for _, order := range m.store {
		if order.UserID != userID {
			continue
		}
		summaries = append(summaries, model.Summary{
			ID:         order.ID,
			CreatedAt:  order.CreatedAt,
			IsPaid:     order.IsPaid,
			PaidAt:     order.PaidAt,
			TotalPrice: order.TotalPrice,
			ItemCount:  len(order.Items),
		})
	}
	return summaries, nil
}
func (m *mockOrderRepository) MarkPaid(id uuid.UUID, paidAt time.Time) (bool, error) {
	order, ok := m.store[id]
	if !ok {
		return false, model.ErrOrderNotFound
	}
	if order.IsPaid {
		return false, nil
	}
	order.IsPaid = true
	order.PaidAt = &paidAt
	return true, nil
}
func (m *mockOrderRepository) SetPaymentIntent(id uuid.UUID, intentID string) error {
	order, ok := m.store[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	order.PaymentIntentID = intentID
	return nil
}

type mockUserFinder struct {
	store map[uuid.UUID]*identitymodel.UserProfile
}

func (m *mockUserFinder) Find(id uuid.UUID) (*identitymodel.UserProfile, error) {
	if user, ok := m.store[id]; ok {
		return user, nil
	}
	return nil, identitymodel.ErrUserNotFound
}

type mockCartFinder struct {
	store map[uuid.UUID]*cartmodel.Cart
}

func (m *mockCartFinder) Find(id uuid.UUID) (*cartmodel.Cart, error) {
	if cart, ok := m.store[id]; ok {
		return cart, nil
	}
	return nil, cartmodel.ErrCartNotFound
}
func (m *mockCartFinder) FindByUser(userID uuid.UUID) (*cartmodel.Cart, error) {
	for _, cart := range m.store {
		if cart.UserID != nil && *cart.UserID == userID {
			return cart, nil
		}
	}
	return nil, cartmodel.ErrCartNotFound
}

type mockProductFinder struct {
	store map[uuid.UUID]*catalogmodel.Product
}

func (m *mockProductFinder) Find(id uuid.UUID) (*catalogmodel.Product, error) {
	if product, ok := m.store[id]; ok {
		return product, nil
	}
	return nil, catalogmodel.ErrProductNotFound
}

type mockEventDispatcher struct {
	events []common.Event
}

func (m *mockEventDispatcher) Dispatch(event common.Event) error {
	m.events = append(m.events, event)
	return nil
}
func (m *mockEventDispatcher) Reset() {
	m.events = nil
}
