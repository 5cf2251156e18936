// AngelaMos | 2026
// renderer.go

package render

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/sync/semaphore"

	"github.com/a32fred/Qr-Code-Generation/internal/config"
	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/plan"
)

const (
	DefaultForeground = "#000000"
	DefaultBackground = "#FFFFFF"
	FormatPNG         = "png"
)

type Options struct {
	Size       int
	Foreground string
	Background string
	Logo       []byte
	Format     string
}

type Renderer struct {
	cfg     config.RenderConfig
	slots   *semaphore.Weighted
	metrics *core.Metrics
}

func New(cfg config.RenderConfig, metrics *core.Metrics) *Renderer {
	return &Renderer{
		cfg:     cfg,
		slots:   semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		metrics: metrics,
	}
}

// Render encodes payload and returns PNG bytes. Colors are applied only for
// tiers that can customize; everyone else gets black on white.
func (r *Renderer) Render(
	ctx context.Context,
	payload string,
	opts Options,
	tier plan.Tier,
) ([]byte, error) {
	size, err := r.size(opts.Size)
	if err != nil {
		return nil, err
	}

	if err := r.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: wait for render slot: %w", core.ErrRenderFailed, err)
	}
	defer r.slots.Release(1)

	start := time.Now()
	defer func() {
		if r.metrics != nil {
			r.metrics.RenderDuration.Observe(time.Since(start).Seconds())
		}
	}()

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %w", core.ErrRenderFailed, err)
	}

	// The encoder rasterizes into a two entry palette (dark, light), so
	// swapping the entries recolors every module pixel without blending.
	if tier.CanCustomize() {
		qr.ForegroundColor = ParseHexColor(withDefault(opts.Foreground, DefaultForeground))
		qr.BackgroundColor = ParseHexColor(withDefault(opts.Background, DefaultBackground))
	}

	// TODO(render): opts.Logo is accepted but not composited onto the image yet.
	// TODO(render): opts.Format is accepted but output is always PNG.

	out, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("%w: rasterize: %w", core.ErrRenderFailed, err)
	}

	return out, nil
}

func (r *Renderer) size(requested int) (int, error) {
	if requested == 0 {
		return r.cfg.DefaultSize, nil
	}
	if requested < r.cfg.MinSize || requested > r.cfg.MaxSize {
		return 0, fmt.Errorf(
			"%w: size must be between %d and %d",
			core.ErrInvalidInput,
			r.cfg.MinSize,
			r.cfg.MaxSize,
		)
	}
	return requested, nil
}

// ParseHexColor accepts RRGGBB with an optional leading '#'. Anything else is
// opaque black.
func ParseHexColor(s string) color.Color {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{A: 0xff}
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{A: 0xff}
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
