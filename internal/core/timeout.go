// AngelaMos | 2026
// timeout.go

package core

import (
	"context"
	"time"
)

// WithTimeout bounds a single external call. A non-positive duration leaves
// the parent deadline in charge.
func WithTimeout(
	ctx context.Context,
	d time.Duration,
) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
