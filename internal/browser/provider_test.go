// internal/browser/provider_test.go
package browser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/saucecheck/internal/browser"
	"github.com/xkilldash9x/saucecheck/internal/browser/browsertest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingLauncher hands out fresh fake drivers and remembers them.
type countingLauncher struct {
	launched []*browsertest.FakeDriver
	err      error
}

func (l *countingLauncher) Launch(context.Context) (browser.Driver, error) {
	if l.err != nil {
		return nil, l.err
	}
	d := browsertest.NewFakeDriver()
	l.launched = append(l.launched, d)
	return d, nil
}

func TestProvider_SessionIsLazyAndReused(t *testing.T) {
	launcher := &countingLauncher{}
	p := browser.NewProvider(launcher, zaptest.NewLogger(t))

	assert.Empty(t, launcher.launched, "no browser should start before the first Session call")

	first, err := p.Session(t.Context())
	require.NoError(t, err)
	second, err := p.Session(t.Context())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, first.ID(), second.ID())
	assert.Len(t, launcher.launched, 1)
	assert.Equal(t, 1, p.Launches())
}

func TestProvider_CloseThenSessionCreatesNewSession(t *testing.T) {
	launcher := &countingLauncher{}
	p := browser.NewProvider(launcher, zaptest.NewLogger(t))

	first, err := p.Session(t.Context())
	require.NoError(t, err)
	firstID := first.ID()

	require.NoError(t, p.Close(t.Context()))
	assert.Equal(t, 1, launcher.launched[0].Closes())
	assert.Empty(t, first.ID(), "a closed session reports no identifier")

	second, err := p.Session(t.Context())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.NotEqual(t, firstID, second.ID())
	assert.Len(t, launcher.launched, 2)
}

func TestProvider_CloseIsIdempotent(t *testing.T) {
	launcher := &countingLauncher{}
	p := browser.NewProvider(launcher, zaptest.NewLogger(t))

	assert.NoError(t, p.Close(t.Context()), "closing an empty provider is a no-op")

	_, err := p.Session(t.Context())
	require.NoError(t, err)
	require.NoError(t, p.Close(t.Context()))
	require.NoError(t, p.Close(t.Context()))

	assert.Equal(t, 1, launcher.launched[0].Closes())
}

func TestProvider_DeadSessionIsRecreated(t *testing.T) {
	launcher := &countingLauncher{}
	p := browser.NewProvider(launcher, zaptest.NewLogger(t))

	first, err := p.Session(t.Context())
	require.NoError(t, err)
	launcher.launched[0].Kill()

	second, err := p.Session(t.Context())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.NotEmpty(t, second.ID())
	assert.Equal(t, 1, launcher.launched[0].Closes(), "the dead session is closed before relaunching")
	assert.Equal(t, 2, p.Launches())
}

func TestProvider_LaunchFailureIsSessionUnavailable(t *testing.T) {
	cause := errors.New("chrome not found")
	p := browser.NewProvider(&countingLauncher{err: cause}, zaptest.NewLogger(t))

	d, err := p.Session(t.Context())
	require.Error(t, err)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, browser.ErrSessionUnavailable)
	assert.ErrorIs(t, err, cause)

	var unavailable *browser.SessionUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 0, p.Launches())
}

func TestProvider_LaunchFailureIsNotDoubleWrapped(t *testing.T) {
	orig := &browser.SessionUnavailableError{Err: errors.New("allocator failed")}
	p := browser.NewProvider(browser.LauncherFunc(func(context.Context) (browser.Driver, error) {
		return nil, orig
	}), zaptest.NewLogger(t))

	_, err := p.Session(t.Context())
	assert.Same(t, orig, err)
}

func TestProvider_RejectsSessionWithoutIdentifier(t *testing.T) {
	dead := browsertest.NewFakeDriver()
	dead.Kill()
	p := browser.NewProvider(browser.LauncherFunc(func(context.Context) (browser.Driver, error) {
		return dead, nil
	}), zaptest.NewLogger(t))

	_, err := p.Session(t.Context())
	assert.ErrorIs(t, err, browser.ErrSessionUnavailable)
	assert.Equal(t, 1, dead.Closes())
}
