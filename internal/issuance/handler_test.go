// AngelaMos | 2026
// handler_test.go

package issuance

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/middleware"
	"github.com/a32fred/Qr-Code-Generation/internal/plan"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    GenerateResponse `json:"data"`
	Error   *core.ErrorBody  `json:"error"`
}

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAPIKey)
		NewHandler(f.svc).RegisterRoutes(r)
	})
	return r
}

func postGenerate(t *testing.T, h http.Handler, key, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(middleware.APIKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestGenerateHandlerSuccess(t *testing.T) {
	f := newFixture(plan.Pro)

	rec, env := postGenerate(t, newTestRouter(f), testCredential,
		`{"data":"https://example.com","size":512,"color":"#FF0000","bg_color":"#00FF00"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	img, err := base64.StdEncoding.DecodeString(env.Data.QRCode)
	require.NoError(t, err)
	assert.Equal(t, "png:https://example.com", string(img))
	assert.Equal(t, "https://qr.example.com/qr/"+env.Data.ID, env.Data.QRURL)
	assert.Equal(t, "https://qr.example.com/analytics/"+env.Data.ID, env.Data.Analytics)
}

func TestGenerateHandlerStatuses(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		body     string
		setup    func(*fixture)
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing key",
			body:     `{"data":"x"}`,
			wantCode: http.StatusUnauthorized,
			wantErr:  "UNAUTHORIZED",
		},
		{
			name:     "unknown key",
			key:      "qr_nobody",
			body:     `{"data":"x"}`,
			wantCode: http.StatusUnauthorized,
			wantErr:  "UNAUTHORIZED",
		},
		{
			name:     "malformed body",
			key:      testCredential,
			body:     `{"data":`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "missing data",
			key:      testCredential,
			body:     `{"size":256}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "nul in data",
			key:      testCredential,
			body:     `{"data":"a\u0000b"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "logo not base64",
			key:      testCredential,
			body:     `{"data":"x","logo":"!!!"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name: "quota exceeded",
			key:  testCredential,
			body: `{"data":"x"}`,
			setup: func(f *fixture) {
				f.usage.counts["acct-1"] = 100
			},
			wantCode: http.StatusTooManyRequests,
			wantErr:  "QUOTA_EXCEEDED",
		},
		{
			name: "render failure",
			key:  testCredential,
			body: `{"data":"x"}`,
			setup: func(f *fixture) {
				f.renderer.err = fmt.Errorf("%w: too long", core.ErrRenderFailed)
			},
			wantCode: http.StatusInternalServerError,
			wantErr:  "RENDER_FAILED",
		},
		{
			name: "size out of range",
			key:  testCredential,
			body: `{"data":"x","size":9000}`,
			setup: func(f *fixture) {
				f.renderer.err = fmt.Errorf("%w: size", core.ErrInvalidInput)
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name: "persist failure",
			key:  testCredential,
			body: `{"data":"x"}`,
			setup: func(f *fixture) {
				f.artifacts.err = fmt.Errorf("insert: %w", core.ErrStoreUnavailable)
			},
			wantCode: http.StatusInternalServerError,
			wantErr:  "PERSIST_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(plan.Free)
			if tt.setup != nil {
				tt.setup(f)
			}

			rec, env := postGenerate(t, newTestRouter(f), tt.key, tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
		})
	}
}

func TestGenerateHandlerQuotaDetails(t *testing.T) {
	f := newFixture(plan.Free)
	f.usage.counts["acct-1"] = 101

	rec, env := postGenerate(t, newTestRouter(f), testCredential, `{"data":"x"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.InDelta(t, 101, env.Error.Details["usage"], 0)
	assert.InDelta(t, 100, env.Error.Details["limit"], 0)
	assert.Equal(t, "https://qr.example.com/upgrade", env.Error.Details["upgrade_url"])
}

func TestGenerateHandlerRejectsNULBeforeRendering(t *testing.T) {
	f := newFixture(plan.Free)

	rec, env := postGenerate(t, newTestRouter(f), testCredential, `{"data":"https://a.example/\u0000"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "data must not contain NUL characters", env.Error.Message)
	assert.Zero(t, f.renderer.calls.Load())
	assert.Empty(t, f.artifacts.artifacts)
}
