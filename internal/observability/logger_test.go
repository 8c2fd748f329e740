// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/saucecheck/internal/config"
)

// syncBuffer is a goroutine safe bytes.Buffer usable as a zapcore.WriteSyncer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newBufferedLogger(t *testing.T, cfg config.LoggerConfig) (*zap.Logger, *syncBuffer) {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	buf := &syncBuffer{}
	return Initialize(cfg, zapcore.AddSync(buf)), buf
}

func TestInitialize(t *testing.T) {
	t.Run("console output is colorized and named", func(t *testing.T) {
		logger, buf := newBufferedLogger(t, config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "saucecheck",
			Colors:      config.ColorConfig{Info: "blue"},
		})
		logger.Named("interact").Info("Clicking element.")
		logger.Warn("Fixed delay used.")

		output := buf.String()
		assert.Contains(t, output, "Clicking element.")
		assert.Contains(t, output, "[saucecheck.interact]")
		assert.Contains(t, output, colorBlue+"INFO")
		assert.Contains(t, output, colorYellow+"WARN", "unset colors fall back to defaults")
		assert.Contains(t, output, colorReset)
	})

	t.Run("color none disables escapes", func(t *testing.T) {
		logger, buf := newBufferedLogger(t, config.LoggerConfig{
			Level:  "info",
			Format: "console",
			Colors: config.ColorConfig{Info: "none"},
		})
		logger.Info("plain")
		assert.NotContains(t, buf.String(), colorReset)
	})

	t.Run("json output", func(t *testing.T) {
		logger, buf := newBufferedLogger(t, config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		})
		logger.Warn("Scenario failed.", zap.String("scenario", "login"))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "Scenario failed.", entry["msg"])
		assert.Equal(t, "login", entry["scenario"])
	})

	t.Run("level filters debug", func(t *testing.T) {
		logger, buf := newBufferedLogger(t, config.LoggerConfig{Level: "warn", Format: "json"})
		logger.Debug("hidden")
		logger.Info("hidden too")
		assert.Empty(t, buf.String())
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		logger, buf := newBufferedLogger(t, config.LoggerConfig{Level: "loud", Format: "json"})
		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("file output is rotated json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "saucecheck.log")
		logger, _ := newBufferedLogger(t, config.LoggerConfig{
			Level:   "debug",
			Format:  "console",
			LogFile: path,
			MaxSize: 1,
		})
		logger.Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"msg":"This should go to the file."`)
	})

	t.Run("only the first call configures", func(t *testing.T) {
		first, buf := newBufferedLogger(t, config.LoggerConfig{Level: "info", ServiceName: "First", Format: "json"})
		second := Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, zapcore.AddSync(&syncBuffer{}))

		assert.Same(t, first, second)
		second.Info("test")
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("fallback before initialization", func(t *testing.T) {
		ResetForTest()
		require.NotNil(t, GetLogger())
	})

	t.Run("global after initialization", func(t *testing.T) {
		logger, buf := newBufferedLogger(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "svc"})
		assert.Same(t, logger, GetLogger())

		Component("pages").Info("named")
		assert.Contains(t, buf.String(), `"logger":"svc.pages"`)
	})
}
