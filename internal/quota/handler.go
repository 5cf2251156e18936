// AngelaMos | 2026
// handler.go

package quota

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/a32fred/Qr-Code-Generation/internal/account"
	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/middleware"
)

type AccountResolver interface {
	Resolve(ctx context.Context, credential string) (*account.Account, error)
}

type Handler struct {
	service  *Service
	accounts AccountResolver
}

func NewHandler(service *Service, accounts AccountResolver) *Handler {
	return &Handler{service: service, accounts: accounts}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/usage", h.Usage)
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.Resolve(r.Context(), middleware.GetAPIKey(r.Context()))
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			core.Unauthorized(w, "invalid API key")
			return
		}
		core.StoreFailure(w, err)
		return
	}

	report, err := h.service.Report(r.Context(), acct)
	if err != nil {
		core.StoreFailure(w, err)
		return
	}

	core.OK(w, report)
}
