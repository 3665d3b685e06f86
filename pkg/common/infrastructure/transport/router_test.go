package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmodel "github.com/entoun8/alshami-store/pkg/cart/domain/model"
	catalogmodel "github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	ordermodel "github.com/entoun8/alshami-store/pkg/order/domain/model"
	paymentmodel "github.com/entoun8/alshami-store/pkg/payment/domain/model"
)

func newTestRouter(payments *stubPaymentService) http.Handler {
	return Router(&stubCatalogService{}, &stubIdentityService{}, &stubCartService{}, &stubOrderService{}, payments)
}

func TestStripeWebhookStatuses(t *testing.T) {
	t.Run("Acknowledges a handled event", func(t *testing.T) {
		payments := &stubPaymentService{}
		router := newTestRouter(payments)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{"type":"payment_intent.succeeded"}`))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
		assert.Equal(t, "t=1,v1=abc", payments.lastSignature)
		assert.Equal(t, `{"type":"payment_intent.succeeded"}`, string(payments.lastPayload))
	})

	t.Run("Bad signature is a 400", func(t *testing.T) {
		payments := &stubPaymentService{webhookErr: paymentmodel.ErrInvalidSignature}
		router := newTestRouter(payments)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Persistence failure is a 500", func(t *testing.T) {
		payments := &stubPaymentService{webhookErr: errors.New("mark order paid: connection reset")}
		router := newTestRouter(payments)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestSessionCookie(t *testing.T) {
	router := newTestRouter(&stubPaymentService{})

	t.Run("Minted on first contact", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sessionCartId", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		_, err := uuid.Parse(cookies[0].Value)
		assert.NoError(t, err)
	})

	t.Run("Existing cookie is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.AddCookie(&http.Cookie{Name: "sessionCartId", Value: uuid.NewString()})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("Never minted for webhook callbacks", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestGetCartWithoutOneIsEmpty(t *testing.T) {
	router := newTestRouter(&stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool     `json:"success"`
		Data    cartView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Empty(t, body.Data.Items)
	assert.Equal(t, "0.00", body.Data.ItemsPrice)
	assert.Equal(t, "0.00", body.Data.TotalPrice)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(&stubPaymentService{})

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/me"},
		{http.MethodPost, "/orders"},
		{http.MethodGet, "/orders"},
		{http.MethodPost, "/admin/products"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

type stubCatalogService struct{}

func (s *stubCatalogService) ListProducts(string) ([]catalogmodel.Product, error) { return nil, nil }
func (s *stubCatalogService) ListCategories() ([]string, error)                   { return nil, nil }
func (s *stubCatalogService) GetByID(uuid.UUID) (*catalogmodel.Product, error) {
	return nil, catalogmodel.ErrProductNotFound
}
func (s *stubCatalogService) GetBySlug(string) (*catalogmodel.Product, error) {
	return nil, catalogmodel.ErrProductNotFound
}
func (s *stubCatalogService) FindUniqueSlug(base string) (string, error) { return base, nil }
func (s *stubCatalogService) CreateProduct(catalogmodel.ProductInput) (*catalogmodel.Product, error) {
	return nil, catalogmodel.ErrProductNotFound
}
func (s *stubCatalogService) UpdateProduct(uuid.UUID, catalogmodel.ProductInput) (*catalogmodel.Product, error) {
	return nil, catalogmodel.ErrProductNotFound
}
func (s *stubCatalogService) DeleteProduct(uuid.UUID) error { return catalogmodel.ErrProductNotFound }
func (s *stubCatalogService) UploadImage(context.Context, string, []byte) (string, error) {
	return "", nil
}

type stubIdentityService struct{}

func (s *stubIdentityService) SignIn(string, string) (*identitymodel.UserProfile, error) {
	return nil, identitymodel.ErrInvalidToken
}
func (s *stubIdentityService) Resolve(string) (*identitymodel.UserProfile, error) {
	return nil, identitymodel.ErrInvalidToken
}
func (s *stubIdentityService) GetProfile(uuid.UUID) (*identitymodel.UserProfile, error) {
	return nil, identitymodel.ErrUserNotFound
}
func (s *stubIdentityService) UpdateAddress(uuid.UUID, identitymodel.ShippingAddress) error {
	return nil
}
func (s *stubIdentityService) SetPaymentMethod(uuid.UUID, string) error { return nil }

type stubCartService struct{}

func (s *stubCartService) AddItem(cartmodel.Owner, cartmodel.ItemInput) (*cartmodel.Cart, error) {
	return nil, cartmodel.ErrCartNotFound
}
func (s *stubCartService) RemoveItem(cartmodel.Owner, uuid.UUID) (*cartmodel.Cart, error) {
	return nil, cartmodel.ErrCartNotFound
}
func (s *stubCartService) GetMyCart(cartmodel.Owner) (*cartmodel.Cart, error) {
	return nil, cartmodel.ErrCartNotFound
}
func (s *stubCartService) Clear(uuid.UUID) error { return nil }
func (s *stubCartService) MergeOnSignIn(string, uuid.UUID) error {
	return nil
}

type stubOrderService struct{}

func (s *stubOrderService) PlaceOrder(uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, ordermodel.ErrCartEmpty
}
func (s *stubOrderService) GetOrder(uuid.UUID) (*ordermodel.Order, error) {
	return nil, ordermodel.ErrOrderNotFound
}
func (s *stubOrderService) ListUserOrders(uuid.UUID) ([]ordermodel.Summary, error) {
	return nil, nil
}

type stubPaymentService struct {
	webhookErr    error
	lastPayload   []byte
	lastSignature string
}

func (s *stubPaymentService) CreatePaymentIntent(context.Context, uuid.UUID) (*paymentmodel.Intent, error) {
	return &paymentmodel.Intent{ID: "pi_test", ClientSecret: "cs_test"}, nil
}
func (s *stubPaymentService) HandleWebhook(_ context.Context, payload []byte, signature string) error {
	s.lastPayload = payload
	s.lastSignature = signature
	return s.webhookErr
}
func (s *stubPaymentService) VerifyRedirectReturn(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}
