// AngelaMos | 2026
// index.go

package server

import (
	"net/http"

	"github.com/a32fred/Qr-Code-Generation/internal/config"
	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/plan"
)

type IndexResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Pricing   map[string]string `json:"pricing"`
}

func IndexHandler(app config.AppConfig) http.HandlerFunc {
	resp := IndexResponse{
		Service: app.Name,
		Version: app.Version,
		Endpoints: map[string]string{
			"register":  "POST /api/register",
			"generate":  "POST /api/generate",
			"usage":     "GET /api/usage",
			"view":      "GET /qr/{id}",
			"analytics": "GET /analytics/{id}",
		},
		Pricing: plan.PricingTable(),
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		core.OK(w, resp)
	}
}
