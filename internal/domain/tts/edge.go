package tts

import (
	"context"
	"fmt"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/errors"
)

// EdgeOptions carries the prosody settings forwarded to the Edge service.
type EdgeOptions struct {
	Voice  string
	Rate   string
	Volume string
	Pitch  string
}

// EdgeSynthesizeFunc performs one Edge TTS round trip.
type EdgeSynthesizeFunc func(ctx context.Context, text string, opts EdgeOptions) ([]byte, error)

// Edge is the free provider. It needs no credentials and selects a voice by
// language only.
type Edge struct {
	cfg        config.EdgeConfig
	synthesize EdgeSynthesizeFunc
}

func NewEdge(cfg config.EdgeConfig) *Edge {
	return &Edge{cfg: cfg, synthesize: edgeSynthesize}
}

// WithSynthesizer replaces the network round trip.
func (p *Edge) WithSynthesizer(fn EdgeSynthesizeFunc) *Edge {
	p.synthesize = fn
	return p
}

func (p *Edge) Name() string { return "edge" }

// VoiceFor resolves the (language code, accent voice) pair, falling back to
// the configured default for unrecognised languages.
func (p *Edge) VoiceFor(language string) config.GenericVoice {
	if v, ok := p.cfg.Voices[language]; ok && v.Accent != "" {
		return v
	}
	return p.cfg.Default
}

func (p *Edge) Attempt(ctx context.Context, text, _ string, language string) ([]byte, error) {
	const op = "tts.edge"

	voice := p.VoiceFor(language)
	if voice.Accent == "" {
		return nil, ErrVoiceUnavailable
	}

	audio, err := p.synthesize(ctx, text, EdgeOptions{
		Voice:  voice.Accent,
		Rate:   p.cfg.Rate,
		Volume: p.cfg.Volume,
		Pitch:  p.cfg.Pitch,
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindUpstream, op, fmt.Sprintf("voice %s (%s)", voice.Accent, voice.Lang), err)
	}
	if len(audio) == 0 {
		return nil, errors.New(errors.KindUpstream, op, "empty audio payload")
	}
	return audio, nil
}

func edgeSynthesize(ctx context.Context, text string, opts EdgeOptions) ([]byte, error) {
	setters := []edge_tts.CommunicateOption{edge_tts.SetVoice(opts.Voice)}
	if opts.Rate != "" {
		setters = append(setters, edge_tts.SetRate(opts.Rate))
	}
	if opts.Volume != "" {
		setters = append(setters, edge_tts.SetVolume(opts.Volume))
	}
	if opts.Pitch != "" {
		setters = append(setters, edge_tts.SetPitch(opts.Pitch))
	}

	conn, err := edge_tts.NewCommunicate(text, setters...)
	if err != nil {
		return nil, err
	}

	type result struct {
		audio []byte
		err   error
	}
	done := make(chan result, 1)
	go func() {
		audio, err := conn.Stream()
		done <- result{audio: audio, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.audio, r.err
	}
}
