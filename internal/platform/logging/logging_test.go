package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, level string) (*Logger, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	console := &bytes.Buffer{}
	logger, err := New(Config{Level: level, Dir: dir, Filename: "test.log", Console: console})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger, console, dir
}

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Dir: dir, Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "server.log"))
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestLogger_WritesFileAndConsole(t *testing.T) {
	logger, console, dir := newTestLogger(t, "info")

	logger.InfoTag("TTS", "saved %s", "commentary_1.mp3")

	content, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[TTS] saved commentary_1.mp3")
	assert.Contains(t, console.String(), "[TTS] saved commentary_1.mp3")
}

func TestLogger_StructuredFields(t *testing.T) {
	logger, _, dir := newTestLogger(t, "info")

	logger.WarnFields("provider failed", map[string]interface{}{"provider": "elevenlabs", "team_id": "134860"})

	content, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"provider":"elevenlabs"`)
	assert.Contains(t, string(content), `"team_id":"134860"`)
}

func TestLogger_FieldsRespectLevel(t *testing.T) {
	logger, console, _ := newTestLogger(t, "warn")

	logger.InfoFields("dropped", map[string]interface{}{"team_id": "1"})
	logger.WarnFields("kept", map[string]interface{}{"team_id": "2"})

	assert.NotContains(t, console.String(), "dropped")
	assert.Contains(t, console.String(), "kept")

	var nilLogger *Logger
	assert.NotPanics(t, func() { nilLogger.WarnFields("x", nil) })
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, console, _ := newTestLogger(t, "warn")

	logger.Info("hidden")
	logger.Debug("also hidden")
	logger.Error("visible")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "visible")
}

func TestFormatLog(t *testing.T) {
	assert.Equal(t, "[HTTP] started", FormatLog("HTTP", "started"))
	assert.Equal(t, "started", FormatLog("", "started"))
	assert.Equal(t, "[LLM] x", FormatLog("TTS", "[LLM] x"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("DEBUG").String())
	assert.Equal(t, "WARN", ParseLevel("warning").String())
	assert.Equal(t, "INFO", ParseLevel("nonsense").String())
}

func TestCleanOldLogs(t *testing.T) {
	logger, _, dir := newTestLogger(t, "info")

	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	old := filepath.Join(dir, "test-2026-10-01.log")
	recent := filepath.Join(dir, "test-2026-10-15.log")
	unrelated := filepath.Join(dir, "other-2026-01-01.log")
	for _, p := range []string{old, recent, unrelated} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	logger.cleanOldLogs(now)

	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, unrelated)
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.InfoTag("TTS", "nothing")
		logger.Error("nothing")
	})
}
