package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformconfig "commentary-server-go/internal/platform/config"
	platformerrors "commentary-server-go/internal/platform/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLoader(t *testing.T) (*platformconfig.Loader, string) {
	t.Helper()
	root := t.TempDir()
	audioDir := filepath.Join(root, "static")

	yaml := "log:\n  log_dir: " + filepath.Join(root, "logs") + "\n  log_level: DEBUG\nweb:\n  static_dir: " + filepath.Join(root, "web") + "\n"
	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	env := map[string]string{"STATIC_FOLDER": audioDir}
	loader := platformconfig.NewLoader().
		WithDotEnv(false).
		WithPath(path).
		WithLookup(func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		})
	return loader, audioDir
}

func TestInitGraphOrder(t *testing.T) {
	want := []string{
		"config:load",
		"logging:init-provider",
		"observability:setup-hooks",
		"events:init-bus",
		"commentary:init-pipeline",
	}
	steps := InitGraph()
	require.Len(t, steps, len(want))
	for i, step := range steps {
		assert.Equal(t, want[i], step.ID)
	}
}

func TestExecuteInitGraph(t *testing.T) {
	loader, audioDir := testLoader(t)
	state := &appState{loader: loader}

	require.NoError(t, executeInitSteps(context.Background(), InitGraph(), state))
	defer state.logger.Close()

	assert.NotNil(t, state.config)
	assert.NotNil(t, state.recorder)
	assert.True(t, state.recorder.Enabled())
	assert.NotNil(t, state.observabilityShutdown)
	assert.NotNil(t, state.bus)
	assert.NotNil(t, state.commentary)
	assert.Equal(t, []string{"edge"}, state.commentary.Providers())

	info, err := os.Stat(audioDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBuildHandlerServesRoutes(t *testing.T) {
	loader, _ := testLoader(t)
	state := &appState{loader: loader}
	require.NoError(t, executeInitSteps(context.Background(), InitGraph(), state))
	defer state.logger.Close()

	handler, err := buildHandler(context.Background(), state)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tony Romo")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/commentary", strings.NewReader(`{"team_id":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Team ID is required"}`, rec.Body.String())
}

func TestExecuteInitSteps_MissingDependency(t *testing.T) {
	steps := []initStep{{
		ID:        "b",
		DependsOn: []string{"a"},
		Execute:   func(context.Context, *appState) error { return nil },
	}}
	err := executeInitSteps(context.Background(), steps, &appState{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindBootstrap))
}

func TestExecuteInitSteps_ConfigFailure(t *testing.T) {
	loader := platformconfig.NewLoader().
		WithDotEnv(false).
		WithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	err := executeInitSteps(context.Background(), InitGraph(), &appState{loader: loader})
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindConfig))
}

func TestExecuteInitSteps_NilState(t *testing.T) {
	assert.Error(t, executeInitSteps(context.Background(), InitGraph(), nil))
}
