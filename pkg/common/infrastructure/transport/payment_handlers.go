package transport

import (
	"io"
	"net/http"

	"github.com/pkg/errors"

	paymentmodel "github.com/entoun8/alshami-store/pkg/payment/domain/model"
)

const maxWebhookBytes = 1 << 20

// stripeWebhook hands the raw payload to the orchestrator. The body
// must reach signature verification byte for byte, so nothing here
// re-reads or re-encodes it.
func (h *handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Unreadable payload"})
		return
	}

	err = h.payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, paymentmodel.ErrInvalidSignature) {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Signature verification failed"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
