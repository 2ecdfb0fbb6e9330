package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tnguyen/storefront/internal/api/shared"
	"github.com/tnguyen/storefront/internal/service"
)

// UsersHandler maps the /users routes onto the user resource service.
type UsersHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(users *service.UserService, logger *slog.Logger) *UsersHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UsersHandler")
	}
	return &UsersHandler{
		users:  users,
		logger: logger.With(slog.String("component", "users_handler")),
	}
}

// RegisterRoutes mounts the user routes on the given router.
// The literal /paginate route must be registered alongside /{id}; chi
// prefers static segments, so both coexist.
func (h *UsersHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/paginate", h.Paginate)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// Create handles POST /users requests.
// Fails with 409 when the email is already taken by an active user.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	user, err := h.users.Create(r.Context(), input)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, user)
}

// List handles GET /users requests.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindAll(r.Context(), nil)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, users)
}

// Get handles GET /users/{id} requests.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	user, err := h.users.FindOne(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Update handles PUT /users/{id} requests.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	var input service.UpdateUserInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	user, err := h.users.Update(r.Context(), id, input)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// Delete handles DELETE /users/{id} requests. A successful hard delete
// responds 204 with no body.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	if _, err := h.users.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Paginate handles GET /users/paginate requests.
func (h *UsersHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	opts, ok := parsePageOptions(w, r)
	if !ok {
		return
	}

	page, err := h.users.Paginate(r.Context(), opts, nil)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}
