package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := New(Config{Level: "warn", File: path, Service: "storefront-core"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("stock low", zap.Int("stock", 4))
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "stock low", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "storefront-core", entry["service.name"])
	assert.EqualValues(t, 4, entry["stock"])
}

func TestNew_Level(t *testing.T) {
	logger, err := New(Config{})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Config{Level: "loud"})
	require.ErrorContains(t, err, "log level[loud]")
}
