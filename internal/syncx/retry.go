package syncx

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/remote"
	"github.com/sethvargo/go-retry"
)

// withRetry runs fn, retrying transient remote failures with linear
// backoff (attempt n sleeps n*RetryBase) up to MaxRetries extra attempts.
// Permanent and not-configured failures return on the first attempt.
func (e *Engine) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * e.opts.RetryBase, false
	})

	return retry.Do(ctx, retry.WithMaxRetries(uint64(e.opts.MaxRetries), b), func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if remote.IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
