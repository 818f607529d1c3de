// Package ctxutil provides context helper functions.
package ctxutil

import "context"

// Canceled reports whether ctx is already done, returning its error
// (context.Canceled or context.DeadlineExceeded) if so and nil otherwise.
// Blocking operations call this at entry before doing any work.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
