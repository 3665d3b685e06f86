package transport

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	cartmodel "github.com/entoun8/alshami-store/pkg/cart/domain/model"
)

func (h *handler) cartOwner(r *http.Request) cartmodel.Owner {
	owner := cartmodel.Owner{SessionCartID: sessionCartIDFrom(r)}
	if profile := profileFrom(r); profile != nil {
		owner.UserID = &profile.ID
	}
	return owner
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetMyCart(h.cartOwner(r))
	if errors.Is(err, cartmodel.ErrCartNotFound) {
		writeData(w, http.StatusOK, emptyCartView())
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toCartView(cart))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Qty       int    `json:"qty"`
}

func (h *handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid product id"})
		return
	}

	cart, err := h.carts.AddItem(h.cartOwner(r), cartmodel.ItemInput{
		ProductID: productID,
		Name:      req.Name,
		Slug:      req.Slug,
		Image:     req.Image,
		Price:     req.Price,
		Qty:       req.Qty,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toCartView(cart))
}

func (h *handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid product id"})
		return
	}

	cart, err := h.carts.RemoveItem(h.cartOwner(r), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toCartView(cart))
}
