// AngelaMos | 2026
// counter.go

package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/a32fred/Qr-Code-Generation/internal/config"
	"github.com/a32fred/Qr-Code-Generation/internal/core"
)

const windowLayout = "2006-01"

// incrementScript bumps the window counter and attaches the TTL only when the
// key has none, so the expiry is anchored to the window's first write.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// Counter is the per-account monthly usage counter. Windows are UTC calendar
// months; all atomicity is delegated to redis.
type Counter struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

func NewCounter(
	client *redis.Client,
	cfg config.QuotaConfig,
	timeout time.Duration,
) *Counter {
	return &Counter{
		client:  client,
		prefix:  cfg.KeyPrefix,
		ttl:     cfg.WindowTTL,
		timeout: timeout,
		now:     time.Now,
	}
}

func Window(t time.Time) string {
	return t.UTC().Format(windowLayout)
}

// NextReset is the first instant of the calendar month after t, in UTC.
func NextReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

func (c *Counter) key(accountID string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, accountID, Window(c.now()))
}

// Current reads the current window. found is false when nothing has been
// issued this month.
func (c *Counter) Current(
	ctx context.Context,
	accountID string,
) (count int64, found bool, err error) {
	callCtx, cancel := core.WithTimeout(ctx, c.timeout)
	defer cancel()

	count, err = c.client.Get(callCtx, c.key(accountID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, core.StoreError("read usage", err)
	}

	return count, true, nil
}

func (c *Counter) CurrentUsage(ctx context.Context, accountID string) (int64, error) {
	count, _, err := c.Current(ctx, accountID)
	return count, err
}

// Increment atomically adds one to the current window and returns the new
// value. The window is chosen from the wall clock at call time.
func (c *Counter) Increment(ctx context.Context, accountID string) (int64, error) {
	callCtx, cancel := core.WithTimeout(ctx, c.timeout)
	defer cancel()

	count, err := incrementScript.Run(
		callCtx,
		c.client,
		[]string{c.key(accountID)},
		c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, core.StoreError("increment usage", err)
	}

	return count, nil
}
