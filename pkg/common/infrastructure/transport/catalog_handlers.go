package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	catalogmodel "github.com/entoun8/alshami-store/pkg/catalog/domain/model"
	catalogservice "github.com/entoun8/alshami-store/pkg/catalog/domain/service"
)

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, toProductView(&products[i]))
	}
	writeData(w, http.StatusOK, views)
}

func (h *handler) getProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetBySlug(mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toProductView(product))
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories()
	if err != nil {
		writeError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeData(w, http.StatusOK, categories)
}

type productRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
	Price       string `json:"price"`
	Image       string `json:"image"`
}

func (req productRequest) toInput() catalogmodel.ProductInput {
	return catalogmodel.ProductInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Category:    req.Category,
		Brand:       req.Brand,
		Description: req.Description,
		Stock:       req.Stock,
		Price:       req.Price,
		Image:       req.Image,
	}
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	product, err := h.catalog.CreateProduct(req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toProductView(product))
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, catalogmodel.ErrProductNotFound)
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	product, err := h.catalog.UpdateProduct(id, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toProductView(product))
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, catalogmodel.ErrProductNotFound)
		return
	}
	if err := h.catalog.DeleteProduct(id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted")
}

// uploadProductImage sniffs the payload type rather than trusting the
// client header.
func (h *handler) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, catalogservice.MaxImageBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, catalogservice.ErrImageTooLarge)
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Image payload is empty"})
		return
	}

	url, err := h.catalog.UploadImage(r.Context(), http.DetectContentType(data), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]string{"url": url})
}
