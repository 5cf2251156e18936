// AngelaMos | 2026
// handler.go

package issuance

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("nonul", noNUL)

	return &Handler{
		service:   service,
		validator: v,
	}
}

// noNUL rejects strings Postgres TEXT cannot store.
func noNUL(fl validator.FieldLevel) bool {
	return !strings.ContainsRune(fl.Field().String(), 0)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate", h.Generate)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Issue(
		r.Context(),
		middleware.GetAPIKey(r.Context()),
		req.ToRequest(),
	)
	if err != nil {
		writeIssueError(w, err)
		return
	}

	core.OK(w, ToGenerateResponse(result))
}

func writeIssueError(w http.ResponseWriter, err error) {
	var appErr *core.AppError

	switch {
	case errors.As(err, &appErr):
		core.JSONError(w, appErr)
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "invalid API key")
	case errors.Is(err, core.ErrInvalidInput):
		core.JSONError(w, core.NewAppError(
			err, "size is outside the supported range", http.StatusBadRequest, "VALIDATION_ERROR",
		))
	case errors.Is(err, core.ErrRenderFailed):
		core.JSONError(w, core.NewAppError(
			err, "failed to generate QR code", http.StatusInternalServerError, "RENDER_FAILED",
		))
	case errors.Is(err, core.ErrPersistFailed):
		core.JSONError(w, core.NewAppError(
			err, "failed to save QR code", http.StatusInternalServerError, "PERSIST_FAILED",
		))
	default:
		core.StoreFailure(w, err)
	}
}
