package transport

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	ordermodel "github.com/entoun8/alshami-store/pkg/order/domain/model"
)

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := h.orders.PlaceOrder(profileFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success:    true,
		Message:    "Order placed",
		RedirectTo: "/order/" + orderID.String(),
		Data:       map[string]string{"orderId": orderID.String()},
	})
}

func (h *handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.orders.ListUserOrders(profileFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toOrderSummaryViews(summaries))
}

// getOrder returns the order to its owner (or an admin). For an unpaid
// card order the payment intent is created lazily here so the client
// can mount the payment form; an intent failure degrades to an order
// without a client secret.
func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}

	view := toOrderView(order)
	if !order.IsPaid && order.PaymentMethod == "Stripe" {
		intent, err := h.payments.CreatePaymentIntent(r.Context(), order.ID)
		if err != nil {
			log.WithError(err).WithField("orderId", order.ID).Warn("create payment intent for order page")
		} else {
			view.ClientSecret = intent.ClientSecret
		}
	}
	writeData(w, http.StatusOK, view)
}

// verifyPaymentReturn backs the success-page navigation after a card
// payment. It only reads provider state; the webhook owns the paid
// transition.
func (h *handler) verifyPaymentReturn(w http.ResponseWriter, r *http.Request) {
	order, ok := h.ownedOrder(w, r)
	if !ok {
		return
	}
	orderPage := "/order/" + order.ID.String()

	if order.IsPaid {
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Order is already paid", RedirectTo: orderPage})
		return
	}

	intentID := r.URL.Query().Get("payment_intent")
	if intentID == "" {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Missing payment intent", RedirectTo: orderPage})
		return
	}

	verified, err := h.payments.VerifyRedirectReturn(r.Context(), order.ID, intentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !verified {
		writeJSON(w, http.StatusOK, envelope{Success: false, Message: "Payment not confirmed", RedirectTo: orderPage})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Thanks for your purchase", RedirectTo: orderPage})
}

func (h *handler) ownedOrder(w http.ResponseWriter, r *http.Request) (*ordermodel.Order, bool) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, ordermodel.ErrOrderNotFound)
		return nil, false
	}

	order, err := h.orders.GetOrder(orderID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	profile := profileFrom(r)
	if order.UserID != profile.ID && !profile.IsAdmin() {
		// Hide the order's existence from non-owners.
		writeError(w, ordermodel.ErrOrderNotFound)
		return nil, false
	}
	return order, true
}
