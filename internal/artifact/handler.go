// AngelaMos | 2026
// handler.go

package artifact

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

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
	r.Get("/qr/{id}", h.View)
	r.Get("/analytics/{id}", h.Analytics)
}

// View counts a scan and then redirects to the payload when it is a web
// address, otherwise returns the payload as data.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Scan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	if IsRedirectTarget(payload) {
		http.Redirect(w, r, payload, http.StatusFound)
		return
	}

	core.OK(w, payload)
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Analytics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "QR code")
		return
	}
	core.StoreFailure(w, err)
}

func IsRedirectTarget(payload string) bool {
	lower := strings.ToLower(payload)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}

	u, err := url.Parse(payload)
	return err == nil && u.Host != ""
}
