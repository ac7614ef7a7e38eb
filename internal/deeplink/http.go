// AngelaMos | 2026
// http.go

package deeplink

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/soundridge/identity-gateway/internal/core"
)

type OpenURLRequest struct {
	URL string `json:"url" validate:"required,max=4096"`
}

// HTTPHandler bridges client-reported open-with-URL events into the
// deep-link pipeline.
type HTTPHandler struct {
	handler   *Handler
	validator *validator.Validate
}

func NewHTTPHandler(handler *Handler) *HTTPHandler {
	return &HTTPHandler{
		handler:   handler,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Post("/deep-link", h.OpenURL)
}

func (h *HTTPHandler) OpenURL(w http.ResponseWriter, r *http.Request) {
	var req OpenURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	core.OK(w, h.handler.HandleURL(r.Context(), req.URL))
}
