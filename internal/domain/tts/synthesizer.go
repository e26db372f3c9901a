package tts

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"commentary-server-go/internal/domain/eventbus"
	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/errors"
	"commentary-server-go/internal/platform/logging"
	"commentary-server-go/internal/platform/observability"
)

// Result describes a written audio asset.
type Result struct {
	Path     string
	Provider string
	Size     int
	Duration time.Duration
}

// Synthesizer walks an ordered provider chain and stores the first
// successful payload as commentary_<epoch-ms>.mp3.
type Synthesizer struct {
	dir       string
	providers []Provider
	bus       *eventbus.Bus
	logger    *logging.Logger
	recorder  *observability.Recorder
	now       func() time.Time
}

// NewSynthesizer builds a chain over providers in order. bus and recorder may be nil.
func NewSynthesizer(dir string, providers []Provider, bus *eventbus.Bus, logger *logging.Logger, recorder *observability.Recorder) *Synthesizer {
	return &Synthesizer{
		dir:       dir,
		providers: providers,
		bus:       bus,
		logger:    logger,
		recorder:  recorder,
		now:       time.Now,
	}
}

// DefaultProviders returns premium, neural cloud then generic free, skipping
// the credentialed providers that are not configured.
func DefaultProviders(cfg config.TTSConfig) []Provider {
	providers := make([]Provider, 0, 3)
	if cfg.ElevenLabs.Enabled() {
		providers = append(providers, NewElevenLabs(cfg.ElevenLabs))
	}
	if cfg.Azure.Enabled() {
		providers = append(providers, NewAzure(cfg.Azure))
	}
	return append(providers, NewEdge(cfg.Edge))
}

// ProviderNames lists the chain in order.
func (s *Synthesizer) ProviderNames() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	return names
}

// Synthesize returns the first asset any provider produced. The error is
// non-nil only when the last provider failed too.
func (s *Synthesizer) Synthesize(ctx context.Context, text, commentator, language string) (*Result, error) {
	const op = "tts.synthesize"

	if len(s.providers) == 0 {
		return nil, errors.New(errors.KindSynthesis, op, "no voice providers configured")
	}

	var lastErr error
	for _, provider := range s.providers {
		result, err := s.attempt(ctx, provider, text, commentator, language)
		if err == nil {
			s.bus.Publish(eventbus.EventAudioSynthesized, eventbus.AudioEventData{
				Path:        result.Path,
				Provider:    result.Provider,
				Commentator: commentator,
				Language:    language,
				Size:        result.Size,
				Duration:    result.Duration,
			})
			return result, nil
		}

		lastErr = err
		if stderrors.Is(err, ErrVoiceUnavailable) {
			s.logger.DebugTag("TTS", "%s has no voice for %s/%s", provider.Name(), commentator, language)
		} else {
			s.logger.WarnTag("TTS", "%s failed for %s/%s: %v", provider.Name(), commentator, language, err)
		}
		s.recorder.RecordMetric(ctx, "tts.failures", 1, map[string]string{"provider": provider.Name()})

		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
	}

	s.logger.ErrorTag("TTS", "all voice providers failed for %s/%s: %v", commentator, language, lastErr)
	s.bus.Publish(eventbus.EventSynthesisFailed, eventbus.FailureEventData{
		Commentator: commentator,
		Language:    language,
		Error:       lastErr.Error(),
	})
	return nil, errors.SynthesisFailed(op, lastErr)
}

func (s *Synthesizer) attempt(ctx context.Context, provider Provider, text, commentator, language string) (result *Result, err error) {
	ctx, end := s.recorder.StartSpan(ctx, "tts", provider.Name())
	defer func() { end(err) }()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", provider.Name(), r)
		}
	}()

	start := time.Now()
	audio, err := provider.Attempt(ctx, text, commentator, language)
	if err != nil {
		return nil, err
	}

	path, err := s.write(audio)
	if err != nil {
		return nil, err
	}

	result = &Result{Path: path, Provider: provider.Name(), Size: len(audio)}
	if d, perr := ProbeDuration(audio); perr != nil {
		s.logger.WarnTag("TTS", "could not probe duration of %s: %v", filepath.Base(path), perr)
	} else {
		result.Duration = d
	}

	s.logger.InfoTag("TTS", "%s synthesized %s for %s/%s (%d bytes, %s audio, took %s)",
		provider.Name(), filepath.Base(path), commentator, language, result.Size,
		result.Duration.Round(time.Millisecond), time.Since(start).Round(time.Millisecond))
	s.recorder.RecordMetric(ctx, "tts.bytes", float64(result.Size), map[string]string{"provider": provider.Name()})
	return result, nil
}

func (s *Synthesizer) write(audio []byte) (string, error) {
	const op = "tts.write"

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(errors.KindSynthesis, op, "create audio directory", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("commentary_%d.mp3", s.now().UnixMilli()))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", errors.Wrap(errors.KindSynthesis, op, "write audio file", err)
	}
	return path, nil
}

// ProbeDuration decodes the MP3 frame headers to compute playback length.
func ProbeDuration(audio []byte) (time.Duration, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(audio))
	if err != nil {
		return 0, err
	}
	rate := dec.SampleRate()
	length := dec.Length()
	if rate <= 0 || length < 0 {
		return 0, fmt.Errorf("unknown stream length")
	}
	// 16-bit stereo PCM: 4 bytes per sample.
	samples := length / 4
	return time.Duration(samples) * time.Second / time.Duration(rate), nil
}
