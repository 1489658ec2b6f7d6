package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/boardsum/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "boardsum.log")
	var out bytes.Buffer

	logger, closeFn := newLogger(config.LogConfig{Level: "info", Path: path}, &out)
	logger.Info("hello", "card", "C1")
	logger.Debug("hidden")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello card=C1")
	assert.NotContains(t, string(data), "hidden")
	assert.Empty(t, out.String())
}

func TestCappedLog_KeepsNewestWholeLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := openCappedLog(path, 100, 45)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := l.Write([]byte(strings.Repeat(string(rune('a'+i)), 19) + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), 100)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	for _, line := range lines {
		assert.Len(t, line, 19, "partial line kept: %q", line)
	}
	assert.Equal(t, strings.Repeat("j", 19), lines[len(lines)-1])
}

func TestCappedLog_ShrinksOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("old line\n", 20)), 0o644))

	l, err := openCappedLog(path, 50, 30)
	require.NoError(t, err)
	defer l.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(30))
}
