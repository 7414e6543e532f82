package mongo

import (
	"context"
	"time"
)

// WithTimeout bounds ctx by timeout, keeping any earlier deadline. The driver
// finds an active session through ctx.Value, so operations inside a
// transaction stay bound to it and get the same per-operation limit.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}
