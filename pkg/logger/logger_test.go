package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-lookup/internal/config"
	"go.uber.org/zap"
)

func TestNewRespectsLevel(t *testing.T) {
	log, err := New(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestNewWritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(config.LoggingConfig{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.Info("search completed", zap.String("city", "London"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"city":"London"`)
}
