package transport

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	cartmodel "github.com/entoun8/alshami-store/pkg/cart/domain/model"
	catalogmodel "github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	catalogservice "github.com/entoun8/alshami-store/pkg/catalog/domain/service"
	common "github.com/entoun8/alshami-store/pkg/common/domain"
	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
	ordermodel "github.com/entoun8/alshami-store/pkg/order/domain/model"
	paymentmodel "github.com/entoun8/alshami-store/pkg/payment/domain/model"
)

type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	RedirectTo string      `json:"redirectTo,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("encode response")
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// writeError maps domain errors onto HTTP statuses. Checkout
// precondition failures carry the page the client should send the
// buyer to.
func writeError(w http.ResponseWriter, err error) {
	var validation *common.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: validation.Error()})
		return
	}

	switch {
	case errors.Is(err, catalogmodel.ErrProductNotFound),
		errors.Is(err, cartmodel.ErrCartNotFound),
		errors.Is(err, cartmodel.ErrItemNotFound),
		errors.Is(err, identitymodel.ErrUserNotFound),
		errors.Is(err, ordermodel.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: err.Error()})

	case errors.Is(err, identitymodel.ErrInvalidToken),
		errors.Is(err, cartmodel.ErrNoSession):
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: err.Error()})

	case errors.Is(err, catalogmodel.ErrSlugTaken),
		errors.Is(err, catalogmodel.ErrOptimisticLock),
		errors.Is(err, cartmodel.ErrOptimisticLock),
		errors.Is(err, cartmodel.ErrStockExceeded),
		errors.Is(err, ordermodel.ErrInsufficientStock),
		errors.Is(err, paymentmodel.ErrAlreadyPaid):
		writeJSON(w, http.StatusConflict, envelope{Success: false, Message: err.Error()})

	case errors.Is(err, ordermodel.ErrCartEmpty):
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error(), RedirectTo: "/cart"})
	case errors.Is(err, ordermodel.ErrNoShippingAddress):
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error(), RedirectTo: "/shipping-address"})
	case errors.Is(err, ordermodel.ErrNoPaymentMethod):
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error(), RedirectTo: "/payment-method"})

	case errors.Is(err, identitymodel.ErrUnknownPaymentMethod),
		errors.Is(err, paymentmodel.ErrUnsupportedMethod),
		errors.Is(err, catalogservice.ErrUnsupportedType):
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error()})

	case errors.Is(err, catalogservice.ErrImageTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Success: false, Message: err.Error()})

	default:
		log.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Internal server error"})
	}
}
