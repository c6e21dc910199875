package logging

import (
	"os"
	"path/filepath"
	"testing"

	"yoyaku/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	logger, closer, err := New(config.LoggingConfig{}, config.AppConfig{Name: "yoyaku"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Nil(t, closer, "stdout output has nothing to close")
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLevelParsing(t *testing.T) {
	logger, _, err := New(config.LoggingConfig{Level: "DEBUG"}, config.AppConfig{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	// Unknown levels fall back to info instead of failing startup.
	logger, _, err = New(config.LoggingConfig{Level: "loud"}, config.AppConfig{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	// An empty level parses as NoLevel, which would silence the logger
	// entirely; it must mean info, not "no level".
	logger, _, err = New(config.LoggingConfig{Level: ""}, config.AppConfig{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	assert.NotEqual(t, zerolog.NoLevel, logger.GetLevel())
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, closer, err := New(config.LoggingConfig{Output: "file", FilePath: path}, config.AppConfig{Name: "yoyaku"})
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info().Msg("started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
	assert.Contains(t, string(data), `"app":"yoyaku"`)
}

func TestNewFileOutputRequiresPath(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, config.AppConfig{})
	assert.Error(t, err)
}
