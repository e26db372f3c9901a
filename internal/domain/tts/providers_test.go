package tts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/errors"
)

func TestElevenLabs_Attempt(t *testing.T) {
	var gotPath, gotKey, gotAccept string
	var body elevenLabsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotAccept = r.Header.Get("Accept")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-fake-mp3"))
	}))
	defer server.Close()

	cfg := config.DefaultConfig().TTS.ElevenLabs
	cfg.APIKey = "xi-secret"
	cfg.BaseURL = server.URL + "/v1"
	p := NewElevenLabs(cfg)

	audio, err := p.Attempt(context.Background(), "What a shot!", "Harsha Bhogle", "Hindi")
	require.NoError(t, err)

	assert.Equal(t, []byte("ID3-fake-mp3"), audio)
	assert.Equal(t, "/v1/text-to-speech/voice_id_harsha_hindi", gotPath)
	assert.Equal(t, "xi-secret", gotKey)
	assert.Equal(t, "audio/mpeg", gotAccept)
	assert.Equal(t, "What a shot!", body.Text)
	assert.Equal(t, "eleven_monolingual_v1", body.ModelID)
	assert.Equal(t, 0.5, body.VoiceSettings.Stability)
	assert.Equal(t, 0.5, body.VoiceSettings.SimilarityBoost)
}

func TestElevenLabs_Non200IsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().TTS.ElevenLabs
	cfg.APIKey = "bad"
	cfg.BaseURL = server.URL
	_, err := NewElevenLabs(cfg).Attempt(context.Background(), "x", "Tony Romo", "English")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUpstream))
}

func TestElevenLabs_MissingVoice(t *testing.T) {
	cfg := config.DefaultConfig().TTS.ElevenLabs
	cfg.APIKey = "k"
	_, err := NewElevenLabs(cfg).Attempt(context.Background(), "x", "Nobody", "English")
	assert.ErrorIs(t, err, ErrVoiceUnavailable)
}

func TestAzure_Attempt(t *testing.T) {
	var gotKey, gotFormat, gotType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotFormat = r.Header.Get("X-Microsoft-OutputFormat")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte("azure-mp3"))
	}))
	defer server.Close()

	cfg := config.DefaultConfig().TTS.Azure
	cfg.Key = "az-key"
	cfg.Region = "eastus"
	cfg.Endpoint = server.URL + "/cognitiveservices/v1"

	audio, err := NewAzure(cfg).Attempt(context.Background(), "Goal & glory <3", "Ravi Shastri", "Hindi")
	require.NoError(t, err)

	assert.Equal(t, []byte("azure-mp3"), audio)
	assert.Equal(t, "az-key", gotKey)
	assert.Equal(t, "audio-24khz-48kbitrate-mono-mp3", gotFormat)
	assert.True(t, strings.HasPrefix(gotType, "application/ssml+xml"))
	assert.Contains(t, gotBody, `<voice name="hi-IN-SwaraNeural">`)
	assert.Contains(t, gotBody, `xml:lang="hi-IN"`)
	assert.Contains(t, gotBody, "Goal &amp; glory &lt;3")
}

func TestAzure_DefaultEndpoint(t *testing.T) {
	p := NewAzure(config.AzureConfig{Key: "k", Region: "westeurope"})
	assert.Equal(t, "https://westeurope.tts.speech.microsoft.com/cognitiveservices/v1", p.endpoint)
}

func TestAzure_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := config.DefaultConfig().TTS.Azure
	cfg.Key = "k"
	cfg.Endpoint = server.URL
	_, err := NewAzure(cfg).Attempt(context.Background(), "x", "Tony Romo", "Spanish")
	require.Error(t, err)

	_, err = NewAzure(cfg).Attempt(context.Background(), "x", "Tony Romo", "French")
	assert.ErrorIs(t, err, ErrVoiceUnavailable)
}

func TestBuildSSML(t *testing.T) {
	assert.Equal(t,
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="en-IN"><voice name="en-IN-PrabhatNeural">Hi</voice></speak>`,
		BuildSSML("Hi", "en-IN-PrabhatNeural"))
	assert.Contains(t, BuildSSML("Hi", "odd"), `xml:lang="en-US"`)
}

func TestEdge_VoiceSelection(t *testing.T) {
	var got EdgeOptions
	p := NewEdge(config.DefaultConfig().TTS.Edge).WithSynthesizer(func(_ context.Context, text string, opts EdgeOptions) ([]byte, error) {
		got = opts
		return []byte("edge-mp3"), nil
	})

	audio, err := p.Attempt(context.Background(), "Hola", "Tony Romo", "Spanish")
	require.NoError(t, err)
	assert.Equal(t, []byte("edge-mp3"), audio)
	assert.Equal(t, "es-ES-AlvaroNeural", got.Voice)
	assert.Equal(t, "+0%", got.Rate)
	assert.Equal(t, "+0Hz", got.Pitch)

	assert.Equal(t, config.GenericVoice{Lang: "hi", Accent: "hi-IN-MadhurNeural"}, p.VoiceFor("Hindi"))
	assert.Equal(t, config.GenericVoice{Lang: "en", Accent: "en-US-GuyNeural"}, p.VoiceFor("Klingon"))
}

func TestEdge_Failures(t *testing.T) {
	p := NewEdge(config.DefaultConfig().TTS.Edge).WithSynthesizer(func(context.Context, string, EdgeOptions) ([]byte, error) {
		return nil, io.ErrUnexpectedEOF
	})
	_, err := p.Attempt(context.Background(), "x", "Tony Romo", "English")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	empty := NewEdge(config.DefaultConfig().TTS.Edge).WithSynthesizer(func(context.Context, string, EdgeOptions) ([]byte, error) {
		return nil, nil
	})
	_, err = empty.Attempt(context.Background(), "x", "Tony Romo", "English")
	assert.Error(t, err)

	_, err = NewEdge(config.EdgeConfig{}).Attempt(context.Background(), "x", "Tony Romo", "English")
	assert.ErrorIs(t, err, ErrVoiceUnavailable)
}

func TestDefaultProviders(t *testing.T) {
	cfg := config.DefaultConfig().TTS
	s := NewSynthesizer(t.TempDir(), DefaultProviders(cfg), nil, nil, nil)
	assert.Equal(t, []string{"edge"}, s.ProviderNames())

	cfg.ElevenLabs.APIKey = "a"
	cfg.Azure.Key = "b"
	s = NewSynthesizer(t.TempDir(), DefaultProviders(cfg), nil, nil, nil)
	assert.Equal(t, []string{"elevenlabs", "azure", "edge"}, s.ProviderNames())
}
