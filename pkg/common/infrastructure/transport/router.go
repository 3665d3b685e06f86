package transport

import (
	"net/http"

	"github.com/gorilla/mux"

	cartservice "github.com/entoun8/alshami-store/pkg/cart/domain/service"
	catalogservice "github.com/entoun8/alshami-store/pkg/catalog/domain/service"
	identityservice "github.com/entoun8/alshami-store/pkg/identity/domain/service"
	orderservice "github.com/entoun8/alshami-store/pkg/order/domain/service"
	paymentservice "github.com/entoun8/alshami-store/pkg/payment/domain/service"
)

type handler struct {
	catalog  catalogservice.CatalogService
	identity identityservice.IdentityService
	carts    cartservice.CartService
	orders   orderservice.OrderService
	payments paymentservice.PaymentService
}

func Router(
	catalog catalogservice.CatalogService,
	identity identityservice.IdentityService,
	carts cartservice.CartService,
	orders orderservice.OrderService,
	payments paymentservice.PaymentService,
) http.Handler {
	h := &handler{
		catalog:  catalog,
		identity: identity,
		carts:    carts,
		orders:   orders,
		payments: payments,
	}

	r := mux.NewRouter()

	r.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{slug}", h.getProductBySlug).Methods(http.MethodGet)
	r.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)

	r.HandleFunc("/auth/sign-in", h.signIn).Methods(http.MethodPost)
	r.HandleFunc("/me", requireAuth(h.getMe)).Methods(http.MethodGet)
	r.HandleFunc("/me/address", requireAuth(h.updateAddress)).Methods(http.MethodPut)
	r.HandleFunc("/me/payment-method", requireAuth(h.setPaymentMethod)).Methods(http.MethodPut)

	r.HandleFunc("/cart", h.getCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/items", h.addCartItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{productId}", h.removeCartItem).Methods(http.MethodDelete)

	r.HandleFunc("/orders", requireAuth(h.placeOrder)).Methods(http.MethodPost)
	r.HandleFunc("/orders", requireAuth(h.listMyOrders)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", requireAuth(h.getOrder)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/stripe-payment-success", requireAuth(h.verifyPaymentReturn)).Methods(http.MethodGet)

	r.HandleFunc("/webhooks/stripe", h.stripeWebhook).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/products", requireAdmin(h.createProduct)).Methods(http.MethodPost)
	admin.HandleFunc("/products/image", requireAdmin(h.uploadProductImage)).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id}", requireAdmin(h.updateProduct)).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id}", requireAdmin(h.deleteProduct)).Methods(http.MethodDelete)

	var chain http.Handler = r
	chain = authMiddleware(identity)(chain)
	chain = sessionMiddleware(chain)
	return logMiddleware(chain)
}
