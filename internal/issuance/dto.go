// AngelaMos | 2026
// dto.go

package issuance

import (
	"encoding/base64"

	"github.com/a32fred/Qr-Code-Generation/internal/render"
)

type GenerateRequest struct {
	Data    string `json:"data"               validate:"required,nonul"`
	Size    int    `json:"size,omitempty"     validate:"omitempty,gt=0"`
	Format  string `json:"format,omitempty"   validate:"omitempty,max=16"`
	Color   string `json:"color,omitempty"    validate:"omitempty,max=16"`
	BgColor string `json:"bg_color,omitempty" validate:"omitempty,max=16"`
	Logo    string `json:"logo,omitempty"     validate:"omitempty,base64"`
}

type Request struct {
	Payload string
	Options render.Options
}

// ToRequest assumes the request passed validation, so the logo decodes.
func (g GenerateRequest) ToRequest() Request {
	var logo []byte
	if g.Logo != "" {
		logo, _ = base64.StdEncoding.DecodeString(g.Logo) //nolint:errcheck // validated
	}

	format := g.Format
	if format == "" {
		format = render.FormatPNG
	}

	return Request{
		Payload: g.Data,
		Options: render.Options{
			Size:       g.Size,
			Foreground: g.Color,
			Background: g.BgColor,
			Logo:       logo,
			Format:     format,
		},
	}
}

type Result struct {
	ID           string
	Image        []byte
	ViewURL      string
	AnalyticsURL string
	Usage        int64
	Limit        int64
}

type GenerateResponse struct {
	ID        string `json:"id"`
	QRCode    string `json:"qr_code"`
	QRURL     string `json:"qr_url"`
	Analytics string `json:"analytics"`
	Usage     int64  `json:"usage"`
	Limit     int64  `json:"limit"`
}

func ToGenerateResponse(r *Result) GenerateResponse {
	return GenerateResponse{
		ID:        r.ID,
		QRCode:    base64.StdEncoding.EncodeToString(r.Image),
		QRURL:     r.ViewURL,
		Analytics: r.AnalyticsURL,
		Usage:     r.Usage,
		Limit:     r.Limit,
	}
}
