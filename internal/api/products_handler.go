package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tnguyen/storefront/internal/api/shared"
	"github.com/tnguyen/storefront/internal/service"
)

// ProductsHandler maps the /products routes onto the product resource
// service, including the bulk and soft-delete variants.
type ProductsHandler struct {
	products *service.ProductService
	logger   *slog.Logger
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(products *service.ProductService, logger *slog.Logger) *ProductsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProductsHandler")
	}
	return &ProductsHandler{
		products: products,
		logger:   logger.With(slog.String("component", "products_handler")),
	}
}

// RegisterRoutes mounts the product routes on the given router.
func (h *ProductsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/bulk", h.CreateBulk)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/bulk", h.UpdateBulk)
	r.Put("/{id}", h.Update)
	r.Delete("/bulk", h.DeleteBulk)
	r.Delete("/{id}/soft", h.SoftDelete)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/restore", h.Restore)
}

// Create handles POST /products requests.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateProductInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	product, err := h.products.Create(r.Context(), input)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, product)
}

// CreateBulk handles POST /products/bulk requests. The batch inserts
// atomically; a single invalid item rejects the whole request.
func (h *ProductsHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var inputs []service.CreateProductInput
	if !decodeAndValidateSlice(w, r, &inputs) {
		return
	}

	products, err := h.products.CreateMany(r.Context(), inputs)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, products)
}

// List handles GET /products requests. When page or limit query
// parameters are present the response is a paginated envelope,
// otherwise the full active collection is returned.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("page") != "" || q.Get("limit") != "" {
		h.paginate(w, r)
		return
	}

	products, err := h.products.FindAll(r.Context(), nil)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, products)
}

func (h *ProductsHandler) paginate(w http.ResponseWriter, r *http.Request) {
	opts, ok := parsePageOptions(w, r)
	if !ok {
		return
	}

	page, err := h.products.Paginate(r.Context(), opts, nil)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Get handles GET /products/{id} requests.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	product, err := h.products.FindOne(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, product)
}

// Update handles PUT /products/{id} requests.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	var input service.UpdateProductInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	product, err := h.products.Update(r.Context(), id, input)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, product)
}

// BulkUpdateRequest is the body for PUT /products/bulk: one patch
// applied to every listed id.
type BulkUpdateRequest struct {
	IDs  []int64                    `json:"ids" validate:"required,min=1"`
	Data service.UpdateProductInput `json:"data"`
}

// UpdateBulk handles PUT /products/bulk requests. All listed ids must
// exist; any missing id fails the whole batch with 404.
func (h *ProductsHandler) UpdateBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	products, err := h.products.UpdateMany(r.Context(), req.IDs, req.Data)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, products)
}

// Delete handles DELETE /products/{id} requests. A hard delete
// responds with a bare boolean body.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.products.Delete(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deleted)
}

// DeleteBulk handles DELETE /products/bulk requests. The body is the
// id list; all ids must exist for the batch to go through.
func (h *ProductsHandler) DeleteBulk(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	if ok := decodeIDList(w, r, &ids); !ok {
		return
	}

	deleted, err := h.products.DeleteMany(r.Context(), ids)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deleted)
}

// SoftDelete handles DELETE /products/{id}/soft requests, marking the
// row deleted without removing it.
func (h *ProductsHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	affected, err := h.products.SoftDelete(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]bool{"affected": affected})
}

// Restore handles POST /products/{id}/restore requests, clearing the
// soft-delete marker.
func (h *ProductsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	affected, err := h.products.Restore(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]bool{"affected": affected})
}
