package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	prod, err := New(false)
	require.NoError(t, err)
	require.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	require.True(t, prod.Core().Enabled(zapcore.InfoLevel))

	dev, err := New(true)
	require.NoError(t, err)
	require.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}

func TestNamed(t *testing.T) {
	t.Parallel()

	require.NotNil(t, Named(nil, "socket"))

	core, logs := observer.New(zapcore.InfoLevel)
	Named(zap.New(core), "socket").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "socket", entries[0].LoggerName)
}
