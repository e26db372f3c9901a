package tts

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/errors"
)

// Azure calls the Speech Services REST endpoint with SSML.
type Azure struct {
	cfg      config.AzureConfig
	endpoint string
	client   *resty.Client
}

func NewAzure(cfg config.AzureConfig) *Azure {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", cfg.Region)
	}
	format := cfg.OutputFormat
	if format == "" {
		format = "audio-24khz-48kbitrate-mono-mp3"
	}

	client := resty.New().
		SetTimeout(60*time.Second).
		SetHeader("Ocp-Apim-Subscription-Key", cfg.Key).
		SetHeader("X-Microsoft-OutputFormat", format).
		SetHeader("User-Agent", "commentary-server-go")

	return &Azure{cfg: cfg, endpoint: endpoint, client: client}
}

func (p *Azure) Name() string { return "azure" }

func (p *Azure) Attempt(ctx context.Context, text, commentator, language string) ([]byte, error) {
	const op = "tts.azure"

	voice := p.cfg.Voices.Lookup(commentator, language)
	if voice == "" {
		return nil, ErrVoiceUnavailable
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/ssml+xml").
		SetBody(BuildSSML(text, voice)).
		Post(p.endpoint)
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

// BuildSSML wraps text in a single voice element. The locale is taken from
// the voice name prefix, e.g. "hi-IN" for "hi-IN-SwaraNeural".
func BuildSSML(text, voice string) string {
	locale := "en-US"
	if parts := strings.SplitN(voice, "-", 3); len(parts) == 3 {
		locale = parts[0] + "-" + parts[1]
	}

	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))

	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s"><voice name="%s">%s</voice></speak>`,
		locale, voice, escaped.String(),
	)
}
