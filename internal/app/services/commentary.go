package services

import (
	"context"
	"path/filepath"
	"time"

	"commentary-server-go/internal/domain/tts"
	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/logging"
	"commentary-server-go/internal/platform/observability"
)

// TextGenerator produces commentary text or a validation error.
type TextGenerator interface {
	Generate(ctx context.Context, teamID, commentator, language string) (string, error)
}

// VoiceSynthesizer stores text as an audio asset.
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text, commentator, language string) (*tts.Result, error)
	ProviderNames() []string
}

// CommentaryRequest is one commentary run. Fields are validated by the generator.
type CommentaryRequest struct {
	TeamID      string
	Commentator string
	Language    string
}

// CommentaryResult is what the HTTP layer returns.
type CommentaryResult struct {
	Text     string        `json:"text"`
	Audio    string        `json:"audio"`
	TeamName string        `json:"team_name"`
	Provider string        `json:"-"`
	Duration time.Duration `json:"-"`
}

// CommentaryService runs generate then synthesize for a team.
type CommentaryService struct {
	generator   TextGenerator
	synthesizer VoiceSynthesizer
	commentary  config.CommentaryConfig
	audioPrefix string
	logger      *logging.Logger
	recorder    *observability.Recorder
}

// CommentaryConfig wires the service.
type CommentaryConfig struct {
	Generator   TextGenerator
	Synthesizer VoiceSynthesizer
	Commentary  config.CommentaryConfig
	// AudioPrefix is the URL prefix under which assets are served.
	AudioPrefix string
	Logger      *logging.Logger
	Recorder    *observability.Recorder
}

func NewCommentaryService(cfg *CommentaryConfig) *CommentaryService {
	prefix := cfg.AudioPrefix
	if prefix == "" {
		prefix = "/static/"
	}
	return &CommentaryService{
		generator:   cfg.Generator,
		synthesizer: cfg.Synthesizer,
		commentary:  cfg.Commentary,
		audioPrefix: prefix,
		logger:      cfg.Logger,
		recorder:    cfg.Recorder,
	}
}

// Defaults returns the commentator and language used when a request omits them.
func (s *CommentaryService) Defaults() (commentator, language string) {
	return s.commentary.DefaultCommentator, s.commentary.DefaultLanguage
}

// Create runs the pipeline. Validation errors come from the generator and
// synthesis errors from the voice chain; both are returned unchanged.
func (s *CommentaryService) Create(ctx context.Context, req CommentaryRequest) (result *CommentaryResult, err error) {
	ctx, end := s.recorder.StartSpan(ctx, "commentary", "create")
	defer func() { end(err) }()

	start := time.Now()

	text, err := s.generator.Generate(ctx, req.TeamID, req.Commentator, req.Language)
	if err != nil {
		return nil, err
	}
	generated := time.Since(start)

	audio, err := s.synthesizer.Synthesize(ctx, text, req.Commentator, req.Language)
	if err != nil {
		return nil, err
	}

	s.logger.InfoTag("TIMING", "team %s: text %s, total %s via %s",
		req.TeamID, generated.Round(time.Millisecond), time.Since(start).Round(time.Millisecond), audio.Provider)
	s.recorder.RecordMetric(ctx, "commentary.total.ms", float64(time.Since(start).Milliseconds()), map[string]string{
		"commentator": req.Commentator,
		"language":    req.Language,
	})

	return &CommentaryResult{
		Text:     text,
		Audio:    s.audioPrefix + filepath.Base(audio.Path),
		TeamName: s.commentary.TeamName(req.TeamID),
		Provider: audio.Provider,
		Duration: audio.Duration,
	}, nil
}

// Options lists the personas, languages and known teams for the UI.
func (s *CommentaryService) Options() map[string]interface{} {
	return map[string]interface{}{
		"commentators":        s.commentary.PersonaNames(),
		"languages":           s.commentary.Languages,
		"teams":               s.commentary.Teams,
		"default_commentator": s.commentary.DefaultCommentator,
		"default_language":    s.commentary.DefaultLanguage,
	}
}

// Providers lists the voice chain in order.
func (s *CommentaryService) Providers() []string {
	return s.synthesizer.ProviderNames()
}
