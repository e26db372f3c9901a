package commentary

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commentary-server-go/internal/app/services"
	domaincommentary "commentary-server-go/internal/domain/commentary"
	"commentary-server-go/internal/domain/eventbus"
	"commentary-server-go/internal/domain/retention"
	"commentary-server-go/internal/domain/tts"
	testutil "commentary-server-go/internal/platform/testing"
	httptransport "commentary-server-go/internal/transport/http"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct{ games []string }

func (s stubFetcher) Fetch(context.Context, string) []string { return s.games }

type stubCompleter struct{ err error }

func (stubCompleter) Name() string { return "stub" }

func (s stubCompleter) Complete(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "The Celtics are unstoppable!", nil
}

type stubVoice struct {
	err   error
	calls int
}

func (s *stubVoice) Name() string { return "stub-voice" }

func (s *stubVoice) Attempt(context.Context, string, string, string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3-bytes"), nil
}

type harness struct {
	engine   *gin.Engine
	audioDir string
	voice    *stubVoice
}

func newHarness(t *testing.T, games []string, completerErr, voiceErr error) *harness {
	t.Helper()

	cfg := testutil.SetupTestConfig(t)
	logger := testutil.SetupTestLogger(t)
	bus := eventbus.New()

	manager := retention.NewManager(cfg.Audio, logger)
	require.NoError(t, manager.Subscribe(bus))

	voice := &stubVoice{err: voiceErr}
	generator := domaincommentary.NewGenerator(cfg.Commentary, stubFetcher{games: games}, stubCompleter{err: completerErr}, bus, logger)
	synthesizer := tts.NewSynthesizer(cfg.Audio.Dir, []tts.Provider{voice}, bus, logger, nil)
	pipeline := services.NewCommentaryService(&services.CommentaryConfig{
		Generator:   generator,
		Synthesizer: synthesizer,
		Commentary:  cfg.Commentary,
		Logger:      logger,
	})

	router, err := httptransport.Build(httptransport.Options{Config: cfg, Logger: logger})
	require.NoError(t, err)

	svc, err := NewService(pipeline, manager, logger)
	require.NoError(t, err)
	require.NoError(t, svc.Register(context.Background(), router.Root))

	return &harness{engine: router.Engine, audioDir: cfg.Audio.Dir, voice: voice}
}

func (h *harness) post(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/commentary", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

var celticsGames = []string{"Boston Celtics vs Miami Heat on 2024-05-01 - Score: 110:98"}

func TestCommentary_Success(t *testing.T) {
	h := newHarness(t, celticsGames, nil, nil)

	rec, out := h.post(t, `{"team_id":"134860","commentator":"Ravi Shastri","language":"English"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The Celtics are unstoppable!", out["text"])
	assert.Equal(t, "Boston Celtics", out["team_name"])
	audio, _ := out["audio"].(string)
	assert.Regexp(t, `^/static/commentary_\d+\.mp3$`, audio)

	_, err := os.Stat(filepath.Join(h.audioDir, strings.TrimPrefix(audio, "/static/")))
	assert.NoError(t, err)

	// The returned path is immediately fetchable.
	get := httptest.NewRecorder()
	h.engine.ServeHTTP(get, httptest.NewRequest(http.MethodGet, audio, nil))
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "audio/mpeg", get.Header().Get("Content-Type"))
	assert.Equal(t, "mp3-bytes", get.Body.String())
}

func TestCommentary_DefaultsAndNumericTeamID(t *testing.T) {
	h := newHarness(t, celticsGames, nil, nil)

	rec, out := h.post(t, `{"team_id":133602}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Liverpool", out["team_name"])
}

func TestCommentary_UnknownTeamName(t *testing.T) {
	h := newHarness(t, celticsGames, nil, nil)

	rec, out := h.post(t, `{"team_id":"555"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unknown Team", out["team_name"])
}

func TestCommentary_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed", `{"team_id":`, "Invalid JSON data"},
		{"empty body", ``, "Invalid JSON data"},
		{"empty object", `{}`, "Invalid JSON data"},
		{"not an object", `[1,2]`, "Invalid JSON data"},
		{"empty team id", `{"team_id":""}`, "Team ID is required"},
		{"null team id", `{"team_id":null,"language":"Hindi"}`, "Team ID is required"},
		{"missing team id", `{"commentator":"Tony Romo"}`, "Team ID is required"},
		{"empty array team id", `{"team_id":[]}`, "Team ID is required"},
		{"empty object team id", `{"team_id":{}}`, "Team ID is required"},
		{"zero team id", `{"team_id":0}`, "Team ID is required"},
		{"false team id", `{"team_id":false}`, "Team ID is required"},
		{"non numeric team", `{"team_id":"abc"}`, "Invalid team ID"},
		{"unknown commentator", `{"team_id":"134860","commentator":"Unknown Guy"}`, "Invalid commentator"},
		{"empty commentator", `{"team_id":"134860","commentator":""}`, "Invalid commentator"},
		{"unknown language", `{"team_id":"134860","language":"French"}`, "Invalid language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, celticsGames, nil, nil)
			rec, out := h.post(t, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, out["error"])
			assert.Zero(t, h.voice.calls)
		})
	}
}

func TestCommentary_NoGames(t *testing.T) {
	h := newHarness(t, nil, nil, nil)

	rec, out := h.post(t, `{"team_id":"134860"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No recent games found for this team.", out["text"])
}

func TestCommentary_LLMFailureUsesFallback(t *testing.T) {
	h := newHarness(t, celticsGames, stderrors.New("groq down"), nil)

	rec, out := h.post(t, `{"team_id":"134860"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, celticsGames[0]+". What a thrilling match!", out["text"])
}

func TestCommentary_SynthesisFailure(t *testing.T) {
	h := newHarness(t, celticsGames, nil, stderrors.New("voice offline"))

	rec, out := h.post(t, `{"team_id":"134860"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate audio file", out["error"])
}

func TestCommentary_RetentionRunsBeforeResponse(t *testing.T) {
	h := newHarness(t, celticsGames, nil, nil)
	for i := 0; i < 12; i++ {
		testutil.WriteAudioFile(t, h.audioDir, "old_"+string(rune('a'+i))+".mp3", 0)
	}

	rec, _ := h.post(t, `{"team_id":"134860"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	matches, err := filepath.Glob(filepath.Join(h.audioDir, "*.mp3"))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 10)
}

func TestStatic_NotFound(t *testing.T) {
	h := newHarness(t, celticsGames, nil, nil)

	for _, path := range []string{"/static/missing.mp3", "/static/../../etc/passwd", "/static/"} {
		rec := httptest.NewRecorder()
		h.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"error":"Resource not found"}`, rec.Body.String(), path)
	}
}

func TestOptionsAndHealth(t *testing.T) {
	h := newHarness(t, celticsGames, nil, nil)
	testutil.WriteAudioFile(t, h.audioDir, "commentary_1.mp3", 0)

	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Harsha Bhogle")
	assert.Contains(t, rec.Body.String(), "Spanish")

	rec = httptest.NewRecorder()
	h.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.AudioFiles)
	assert.Equal(t, []string{"stub-voice"}, health.Providers)
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	assert.Error(t, err)
}
