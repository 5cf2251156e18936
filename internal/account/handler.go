// AngelaMos | 2026
// handler.go

package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	account, credential, err := h.service.Register(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("account"))
			return
		}
		if errors.Is(err, core.ErrTimeout) || errors.Is(err, core.ErrStoreUnavailable) {
			core.StoreFailure(w, err)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToRegisterResponse(account, credential))
}
