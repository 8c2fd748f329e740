// internal/browser/session/context_utils.go
package session

import (
	"context"
)

// CombineContext derives a context from primary that is also cancelled when
// secondary is done. Values come from primary only; for chromedp that is the
// tab context carrying the target, while secondary carries the caller's deadline.
// context.Cause on the result reports secondary's error when secondary ended first.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(primary)
	stop := context.AfterFunc(secondary, func() {
		cancel(secondary.Err())
	})
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
