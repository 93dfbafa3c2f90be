package skrape

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 30 * time.Second
)

// callWithRetry repeats op while it fails with a temporary error, up to
// c.maxRetries extra attempts. A Retry-After hint from the server replaces
// the computed backoff for that wait. The error of the last attempt is
// returned when retries run out or ctx is done.
func (c *Client) callWithRetry(ctx context.Context, op operation, out any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.Reset()

	for attempt := 0; ; attempt++ {
		err := c.send(ctx, op, out)
		if err == nil {
			return nil
		}

		var apiErr *Error
		if attempt >= c.maxRetries || !errors.As(err, &apiErr) || !apiErr.Temporary() || ctx.Err() != nil {
			return err
		}

		wait := b.NextBackOff()
		if d, ok := apiErr.RetryAfterDuration(); ok {
			wait = d
		}
		if wait == backoff.Stop {
			return err
		}

		c.logger.Warn().
			Err(err).
			Str("operation", op.id).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("retrying skrape request")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
