package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetLevelBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() { SetLevel("debug") })
	assert.Equal(t, zapcore.DebugLevel, globalLevel.Level())
	SetLevel("info")
}

func TestInitAndSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cloud-dist.log")
	require.NoError(t, Init(Config{Level: "warn", OutputPath: path}))
	defer Sync()

	assert.Equal(t, zapcore.WarnLevel, globalLevel.Level())

	SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, globalLevel.Level())

	// Unknown level names leave the level alone.
	SetLevel("chatty")
	assert.Equal(t, zapcore.DebugLevel, globalLevel.Level())
}

func TestInitWithoutPathIsNop(t *testing.T) {
	require.NoError(t, Init(Config{}))
	assert.NotNil(t, L())
	Info("dropped")
}
