package logger

import (
	"os"
	"path/filepath"
	"testing"

	"mission-desk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_BeforeInitialize(t *testing.T) {
	assert.NotNil(t, Get())
}

func TestInitialize_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.log")
	require.NoError(t, Initialize(config.LoggerConfig{Level: "debug", Env: "production", File: path}))

	Get().Info("hello from test")
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestInitialize_RejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Initialize(config.LoggerConfig{Level: "loud"}))
}
