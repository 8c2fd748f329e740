// internal/browser/session/context_utils_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineContext(t *testing.T) {
	type ctxKey string
	const key ctxKey = "target"

	t.Run("InheritsValuesFromPrimary", func(t *testing.T) {
		primary := context.WithValue(context.Background(), key, "tab-1")
		secondary := context.WithValue(context.Background(), key, "ignored")

		combined, cancel := CombineContext(primary, secondary)
		defer cancel()

		assert.Equal(t, "tab-1", combined.Value(key))
		assert.NoError(t, combined.Err())
	})

	t.Run("CancelledByPrimary", func(t *testing.T) {
		primary, cancelPrimary := context.WithCancel(context.Background())
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		cancelPrimary()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})

	t.Run("SecondaryDeadlineIsTheCause", func(t *testing.T) {
		secondary, cancelSecondary := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancelSecondary()

		combined, cancel := CombineContext(context.Background(), secondary)
		defer cancel()

		select {
		case <-combined.Done():
		case <-time.After(time.Second):
			t.Fatal("combined context outlived the secondary deadline")
		}
		assert.ErrorIs(t, combined.Err(), context.Canceled)
		assert.ErrorIs(t, context.Cause(combined), context.DeadlineExceeded)
	})

	t.Run("AlreadyDoneSecondary", func(t *testing.T) {
		secondary, cancelSecondary := context.WithCancel(context.Background())
		cancelSecondary()

		combined, cancel := CombineContext(context.Background(), secondary)
		defer cancel()

		require.Eventually(t, func() bool { return combined.Err() != nil }, time.Second, time.Millisecond)
	})

	t.Run("ExplicitCancellation", func(t *testing.T) {
		combined, cancel := CombineContext(context.Background(), context.Background())
		cancel()
		assert.ErrorIs(t, combined.Err(), context.Canceled)
	})
}
