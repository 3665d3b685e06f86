package transport

import (
	"encoding/json"
	"net/http"

	identitymodel "github.com/entoun8/alshami-store/pkg/identity/domain/model"
)

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, identitymodel.ErrInvalidToken)
		return
	}

	profile, err := h.identity.SignIn(token, sessionCartIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toProfileView(profile))
}

// getMe re-reads the profile so the response reflects address and
// payment-method updates made since the token was resolved.
func (h *handler) getMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.identity.GetProfile(profileFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toProfileView(profile))
}

func (h *handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	var address identitymodel.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	if err := h.identity.UpdateAddress(profileFrom(r).ID, address); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Shipping address updated")
}

func (h *handler) setPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	if err := h.identity.SetPaymentMethod(profileFrom(r).ID, req.PaymentMethod); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Payment method updated")
}
