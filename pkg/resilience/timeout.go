package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn under a context that expires after timeout. fn is
// expected to honour its context; the wrapper only adds the deadline and
// names the operation in the returned error.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := fn(timeoutCtx); err != nil {
		if ctx.Err() == nil && timeoutCtx.Err() != nil {
			return fmt.Errorf("%s: timed out after %v: %w", name, timeout, err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
