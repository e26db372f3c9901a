package tts

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/errors"
)

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

// ElevenLabs is the premium provider with one voice per persona and language.
type ElevenLabs struct {
	cfg    config.ElevenLabsConfig
	client *resty.Client
}

func NewElevenLabs(cfg config.ElevenLabsConfig) *ElevenLabs {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(60*time.Second).
		SetJSONMarshaler(sonic.Marshal).
		SetHeader("xi-api-key", cfg.APIKey)

	return &ElevenLabs{cfg: cfg, client: client}
}

func (p *ElevenLabs) Name() string { return "elevenlabs" }

func (p *ElevenLabs) Attempt(ctx context.Context, text, commentator, language string) ([]byte, error) {
	const op = "tts.elevenlabs"

	voice := p.cfg.Voices.Lookup(commentator, language)
	if voice == "" {
		return nil, ErrVoiceUnavailable
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "audio/mpeg").
		SetHeader("Content-Type", "application/json").
		SetBody(elevenLabsRequest{
			Text:    text,
			ModelID: p.cfg.ModelID,
			VoiceSettings: elevenLabsVoiceSettings{
				Stability:       p.cfg.Stability,
				SimilarityBoost: p.cfg.SimilarityBoost,
			},
		}).
		Post("/text-to-speech/" + url.PathEscape(voice))
	if err != nil {
		return nil, errors.Wrap(errors.KindUpstream, op, "request failed", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.UpstreamStatus(op, resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		return nil, errors.New(errors.KindUpstream, op, "empty audio payload")
	}
	return resp.Body(), nil
}
