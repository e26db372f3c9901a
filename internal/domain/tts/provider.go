package tts

import (
	"context"
	stderrors "errors"
)

// ErrVoiceUnavailable means the provider has no voice for the persona and
// language pair. The chain moves on without counting it as an upstream error.
var ErrVoiceUnavailable = stderrors.New("voice unavailable for commentator and language")

// Provider turns text into MP3 bytes.
type Provider interface {
	Name() string
	Attempt(ctx context.Context, text, commentator, language string) ([]byte, error)
}
