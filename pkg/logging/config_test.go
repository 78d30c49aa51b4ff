package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credentialengine/obpublisher/pkg/logging"
)

func TestNewLoggerFromNilConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	logger := logging.NewLoggerFromConfig(nil)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLoggerFromConfigWritesFile(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	path := filepath.Join(t.TempDir(), "publisher.log")
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"component": "publisher"},
	})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("visible")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "visible")
	assert.Contains(t, string(content), `"component":"publisher"`)
	assert.NotContains(t, string(content), "hidden")
}

func TestNewLoggerFromConfigDiscard(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	logger := logging.NewLoggerFromConfig(&logging.Config{Level: "debug", Format: "auto", Output: "discard"})
	logger.Debug().Msg("nowhere")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
