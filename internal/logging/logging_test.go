package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabgroups/tabgroups/internal/domain"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tabgroups.log")

	logger, closer, err := New(domain.LoggingConfig{Level: "info", Format: "logfmt", Output: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("preference changed", "key", "mode")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "msg=\"preference changed\"")
	assert.Contains(t, string(data), "key=mode")
}

func TestNewJSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabgroups.log")

	logger, closer, err := New(domain.LoggingConfig{Level: "DEBUG", Format: "json", Output: path})
	require.NoError(t, err)
	logger.Debug("saved preference", "key", "color")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "saved preference", entry["msg"])
	assert.Equal(t, "color", entry["key"])
	assert.Equal(t, "tabgroups", entry["prefix"])
}

func TestNewSpecialOutputs(t *testing.T) {
	for _, output := range []string{"", "stderr", "stdout", "discard", " Discard "} {
		logger, closer, err := New(domain.LoggingConfig{Level: "warn", Format: "text", Output: output})
		require.NoError(t, err, output)
		assert.NotNil(t, logger)
		assert.NoError(t, closer.Close())
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(domain.LoggingConfig{Level: "verbose", Format: "text", Output: "discard"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	var _ domain.Logger = logger
}
