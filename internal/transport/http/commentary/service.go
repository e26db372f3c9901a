package commentary

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/disk"

	"commentary-server-go/internal/app/services"
	"commentary-server-go/internal/domain/retention"
	"commentary-server-go/internal/platform/errors"
	"commentary-server-go/internal/platform/logging"
	httptransport "commentary-server-go/internal/transport/http"
)

// Pipeline is the application service behind POST /commentary.
type Pipeline interface {
	Create(ctx context.Context, req services.CommentaryRequest) (*services.CommentaryResult, error)
	Defaults() (commentator, language string)
	Options() map[string]interface{}
	Providers() []string
}

// AssetStore exposes the audio directory.
type AssetStore interface {
	Dir() string
	Stats() retention.Stats
}

// Service is the HTTP surface of the commentary pipeline.
type Service struct {
	pipeline Pipeline
	assets   AssetStore
	logger   *logging.Logger
}

func NewService(pipeline Pipeline, assets AssetStore, logger *logging.Logger) (*Service, error) {
	if pipeline == nil {
		return nil, errors.New(errors.KindConfig, "commentary.http.new", "pipeline is required")
	}
	if assets == nil {
		return nil, errors.New(errors.KindConfig, "commentary.http.new", "asset store is required")
	}
	return &Service{pipeline: pipeline, assets: assets, logger: logger}, nil
}

// Register mounts the commentary routes on the root group.
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.POST("/commentary", s.handleCommentary)
	router.GET("/static/*filepath", s.handleAsset)
	router.HEAD("/static/*filepath", s.handleAsset)
	router.GET("/api/options", s.handleOptions)
	router.GET("/api/health", s.handleHealth)

	s.logger.InfoTag("HTTP", "commentary routes registered")
	return nil
}

func (s *Service) handleCommentary(c *gin.Context) {
	var body map[string]interface{}
	if err := sonic.ConfigDefault.NewDecoder(c.Request.Body).Decode(&body); err != nil || len(body) == 0 {
		httptransport.RespondError(c, http.StatusBadRequest, "Invalid JSON data")
		return
	}

	teamID := field(body["team_id"])
	if !present(body["team_id"]) {
		httptransport.RespondError(c, http.StatusBadRequest, "Team ID is required")
		return
	}

	commentator, language := s.pipeline.Defaults()
	if v, ok := body["commentator"]; ok && v != nil {
		commentator = field(v)
	}
	if v, ok := body["language"]; ok && v != nil {
		language = field(v)
	}

	s.logger.InfoTag("HTTP", "generating commentary for team %s with %s in %s", teamID, commentator, language)

	result, err := s.pipeline.Create(c.Request.Context(), services.CommentaryRequest{
		TeamID:      teamID,
		Commentator: commentator,
		Language:    language,
	})
	if err != nil {
		s.respondFailure(c, teamID, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, result)
}

func (s *Service) respondFailure(c *gin.Context, teamID string, err error) {
	_ = c.Error(err)

	status, message := errors.HTTPStatus(err)
	switch {
	case errors.IsKind(err, errors.KindValidation):
		s.logger.WarnTag("HTTP", "validation error for team %s: %v", teamID, err)
	case errors.IsKind(err, errors.KindSynthesis):
		s.logger.ErrorTag("HTTP", "audio generation failed for team %s: %v", teamID, err)
	default:
		s.logger.ErrorTag("HTTP", "error generating commentary for team %s: %v", teamID, err)
	}
	httptransport.RespondError(c, status, message)
}

func (s *Service) handleAsset(c *gin.Context) {
	name := filepath.Base(c.Param("filepath"))
	if name == "." || name == "/" || name == ".." || strings.HasPrefix(name, ".") {
		httptransport.RespondError(c, http.StatusNotFound, "Resource not found")
		return
	}

	path := filepath.Join(s.assets.Dir(), name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		httptransport.RespondError(c, http.StatusNotFound, "Resource not found")
		return
	}

	if strings.EqualFold(filepath.Ext(name), ".mp3") {
		c.Header("Content-Type", "audio/mpeg")
	}
	c.File(path)
}

func (s *Service) handleOptions(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, s.pipeline.Options())
}

func (s *Service) handleHealth(c *gin.Context) {
	stats := s.assets.Stats()
	resp := HealthResponse{
		Status:     "ok",
		AudioFiles: stats.Files,
		AudioBytes: stats.Bytes,
		Providers:  s.pipeline.Providers(),
	}

	probe := s.assets.Dir()
	if _, err := os.Stat(probe); err != nil {
		probe = "."
	}
	if usage, err := disk.UsageWithContext(c.Request.Context(), probe); err == nil {
		resp.DiskFreeBytes = usage.Free
	} else {
		s.logger.WarnTag("HTTP", "disk usage for %s unavailable: %v", probe, err)
	}

	httptransport.RespondSuccess(c, http.StatusOK, resp)
}
