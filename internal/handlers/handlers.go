package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"todos/internal/store"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store  store.Store
	logger zerolog.Logger
}

// New creates a new Handlers instance.
func New(s store.Store, logger zerolog.Logger) *Handlers {
	return &Handlers{
		store:  s,
		logger: logger.With().Str("component", "handlers").Logger(),
	}
}

// Routes returns the item API router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/items", h.ListItems)
	r.Post("/api/items", h.CreateItem)
	r.Get("/api/items/{id}", h.GetItem)
	r.Put("/api/items/{id}", h.UpdateItem)
	r.Delete("/api/items/{id}", h.DeleteItem)
	r.Get("/healthz", h.Health)

	return r
}

// parseID extracts and parses an integer ID from URL parameters.
func parseID(r *http.Request, param string) (int64, error) {
	idStr := chi.URLParam(r, param)
	return strconv.ParseInt(idStr, 10, 64)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"error": message})
}

// respondStoreError maps store errors to HTTP statuses: validation
// failures are the caller's fault, missing ids are 404, anything else
// is logged and hidden behind a 500.
func (h *Handlers) respondStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Reason)
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "item not found")
	default:
		h.logger.Error().Err(err).Msg("store operation failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
