// AngelaMos | 2026
// handler.go

package billing

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/middleware"
)

// Handler acknowledges payment provider webhooks. Events are logged and
// otherwise ignored until plan changes are wired up.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook/stripe", h.Stripe)
}

type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type ackResponse struct {
	Received bool `json:"received"`
}

func (h *Handler) Stripe(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		core.BadRequest(w, "invalid JSON body")
		return
	}

	var evt event
	//nolint:errcheck // non-object payloads are acknowledged without metadata
	_ = json.Unmarshal(raw, &evt)

	h.logger.InfoContext(r.Context(), "billing webhook received",
		"event_id", evt.ID,
		"event_type", evt.Type,
		"bytes", len(raw),
		"request_id", middleware.GetRequestID(r.Context()),
	)

	core.JSON(w, http.StatusOK, ackResponse{Received: true})
}
