package testing

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/logging"
)

// SetupTestConfig returns the default configuration rooted in temp directories.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Log.Level = "DEBUG"
	cfg.Log.Dir = t.TempDir()
	cfg.Log.File = "test.log"
	cfg.Audio.Dir = t.TempDir()
	cfg.Web.StaticDir = t.TempDir()

	return cfg
}

// SetupTestLogger builds a logger that writes to a temp file only.
func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.New(logging.Config{
		Level:    "DEBUG",
		Dir:      t.TempDir(),
		Filename: "test.log",
		Console:  io.Discard,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	return logger
}

// WriteAudioFile creates dir/name with the given modification age.
func WriteAudioFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
	return path
}

// SilentMP3 returns frames of MPEG-1 Layer III silence at 128 kbps / 44.1 kHz.
// Each frame holds 1152 samples.
func SilentMP3(frames int) []byte {
	const frameSize = 417 // 144 * 128000 / 44100
	out := make([]byte, 0, frames*frameSize)
	for i := 0; i < frames; i++ {
		frame := make([]byte, frameSize)
		frame[0], frame[1], frame[2], frame[3] = 0xFF, 0xFB, 0x90, 0x44
		out = append(out, frame...)
	}
	return out
}
