// AngelaMos | 2026
// handler.go

package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/soundridge/identity-gateway/internal/core"
	"github.com/soundridge/identity-gateway/internal/provider"
	"github.com/soundridge/identity-gateway/internal/resolver"
)

type Handler struct {
	store     *Store
	validator *validator.Validate
}

func NewHandler(store *Store) *Handler {
	return &Handler{
		store:     store,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.GetSnapshot)
		r.Post("/sign-in", h.SignIn)
		r.Post("/sign-up", h.SignUp)
		r.Post("/sign-out", h.SignOut)
		r.Post("/establish", h.Establish)
		r.Post("/recover", h.Recover)
		r.Post("/refresh-data", h.RefreshData)
		r.Get("/oauth/{provider}", h.OAuthURL)
	})
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	core.OK(w, ToSnapshotResponse(h.store.Snapshot()))
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.store.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(
				w,
				core.UnauthorizedError("invalid email or password"),
			)
			return
		}
		if errors.Is(err, provider.ErrUnavailable) {
			core.JSONError(w, core.NewAppError(
				core.ErrUnavailable,
				"sign-in is temporarily unavailable",
				http.StatusServiceUnavailable,
				"PROVIDER_UNAVAILABLE",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toUserResponse(user))
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.store.SignUp(
		r.Context(),
		req.Email,
		req.Password,
		req.DisplayName,
	)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidCredentials) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, toUserResponse(user))
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	core.NoContent(w)
}

func (h *Handler) Establish(w http.ResponseWriter, r *http.Request) {
	var req EstablishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.store.Establish(
		r.Context(),
		req.AccessToken,
		req.RefreshToken,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(
				w,
				core.UnauthorizedError("failed to complete sign-in"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toUserResponse(user))
}

func (h *Handler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.store.ResetPasswordForEmail(r.Context(), req.Email); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RefreshData(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RefreshUserData(r.Context()); err != nil {
		if errors.Is(err, resolver.ErrAccountBanned) {
			core.Forbidden(w, "account suspended")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToSnapshotResponse(h.store.Snapshot()))
}

func (h *Handler) OAuthURL(w http.ResponseWriter, r *http.Request) {
	oauthProvider := chi.URLParam(r, "provider")
	if oauthProvider == "" {
		core.BadRequest(w, "provider required")
		return
	}

	redirectTo := r.URL.Query().Get("redirect_to")
	core.OK(w, OAuthURLResponse{
		URL: h.store.OAuthURL(oauthProvider, redirectTo),
	})
}
