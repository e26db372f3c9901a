package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"commentary-server-go/internal/app/services"
	"commentary-server-go/internal/domain/commentary"
	"commentary-server-go/internal/domain/eventbus"
	"commentary-server-go/internal/domain/llm"
	"commentary-server-go/internal/domain/results"
	"commentary-server-go/internal/domain/retention"
	"commentary-server-go/internal/domain/tts"
	platformconfig "commentary-server-go/internal/platform/config"
	platformerrors "commentary-server-go/internal/platform/errors"
	platformlogging "commentary-server-go/internal/platform/logging"
	platformobservability "commentary-server-go/internal/platform/observability"
	httptransport "commentary-server-go/internal/transport/http"
	httpcommentary "commentary-server-go/internal/transport/http/commentary"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	loader                *platformconfig.Loader
	config                *platformconfig.Config
	logger                *platformlogging.Logger
	slogger               *slog.Logger
	recorder              *platformobservability.Recorder
	observabilityShutdown platformobservability.ShutdownFunc
	bus                   *eventbus.Bus
	retention             *retention.Manager
	commentary            *services.CommentaryService
}

// Run loads configuration, wires the pipeline and serves HTTP until ctx is
// cancelled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil || state.commentary == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger/pipeline not initialised",
		)
	}
	defer logger.Close()

	logBootstrapGraph(steps, logger)

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("BOOT", "observability did not shut down cleanly: %v", err)
			}
		}()
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	return waitForShutdown(signalCtx, groupCtx, cancel, logger, group)
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "init graph")
	for _, step := range steps {
		if len(step.DependsOn) == 0 {
			logger.InfoTag("BOOT", "  %s: %s", step.ID, step.Title)
			continue
		}
		logger.InfoTag("BOOT", "  %s: %s (after %s)", step.ID, step.Title, strings.Join(step.DependsOn, ", "))
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph lists the startup steps in dependency order.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "events:init-bus",
			Title:     "Initialise event bus",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEventBusStep,
		},
		{
			ID:        "commentary:init-pipeline",
			Title:     "Initialise commentary pipeline",
			DependsOn: []string{"observability:setup-hooks", "events:init-bus"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initPipelineStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	loader := state.loader
	if loader == nil {
		loader = platformconfig.NewLoader()
	}

	config, err := loader.Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = config
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}

	state.logger = logger
	state.slogger = logger.Slog()
	logger.InfoTag("BOOT", "logging ready [%s]", state.config.Log.Level)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}

	recorder, shutdown, err := platformobservability.Setup(ctx, cfg, state.slogger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.recorder = recorder
	state.observabilityShutdown = shutdown
	return nil
}

func initEventBusStep(_ context.Context, state *appState) error {
	bus := eventbus.New()
	logger := state.logger

	err := bus.SubscribeAsync(eventbus.EventCommentaryFallback, func(d eventbus.FallbackEventData) {
		logger.WarnTag("LLM", "team %s served fallback commentary (%d games) after %s failed", d.TeamID, d.Games, d.Provider)
	}, false)
	if err != nil {
		return err
	}
	err = bus.SubscribeAsync(eventbus.EventSynthesisFailed, func(d eventbus.FailureEventData) {
		logger.ErrorTag("TTS", "no audio for %s/%s: %s", d.Commentator, d.Language, d.Error)
	}, false)
	if err != nil {
		return err
	}

	state.bus = bus
	return nil
}

func initPipelineStep(_ context.Context, state *appState) error {
	const op = "commentary:init-pipeline"

	if state.config == nil || state.logger == nil || state.bus == nil {
		return platformerrors.New(platformerrors.KindBootstrap, op, "config/logger/bus not initialised")
	}
	cfg := state.config
	logger := state.logger

	if err := os.MkdirAll(cfg.Audio.Dir, 0o755); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, op, "failed to create audio directory", err)
	}

	manager := retention.NewManager(cfg.Audio, logger)
	if err := manager.Subscribe(state.bus); err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, op, "failed to subscribe retention", err)
	}
	manager.Reclaim()

	var completer commentary.Completer
	if provider, err := llm.NewProvider(cfg.LLM, logger, state.recorder); err != nil {
		logger.WarnTag("LLM", "completion provider disabled, fallback commentary only: %v", err)
	} else {
		completer = provider
		logger.InfoTag("LLM", "%s ready with model %s", provider.Name(), cfg.LLM.ModelName)
	}

	fetcher := results.NewFetcher(cfg.Results, logger)
	generator := commentary.NewGenerator(cfg.Commentary, fetcher, completer, state.bus, logger)
	synthesizer := tts.NewSynthesizer(cfg.Audio.Dir, tts.DefaultProviders(cfg.TTS), state.bus, logger, state.recorder)
	logger.InfoTag("TTS", "voice chain: %s", strings.Join(synthesizer.ProviderNames(), " -> "))

	state.retention = manager
	state.commentary = services.NewCommentaryService(&services.CommentaryConfig{
		Generator:   generator,
		Synthesizer: synthesizer,
		Commentary:  cfg.Commentary,
		Logger:      logger,
		Recorder:    state.recorder,
	})
	return nil
}

func buildHandler(ctx context.Context, state *appState) (http.Handler, error) {
	router, err := httptransport.Build(httptransport.Options{
		Config:   state.config,
		Logger:   state.logger,
		Recorder: state.recorder,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:build-router", "failed to build router", err)
	}

	svc, err := httpcommentary.NewService(state.commentary, state.retention, state.logger)
	if err != nil {
		return nil, err
	}
	if err := svc.Register(ctx, router.Root); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:register", "failed to register routes", err)
	}
	return router.Engine, nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	handler, err := buildHandler(groupCtx, state)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(config.Server.IP, strconv.Itoa(config.Server.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on http://%s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down gracefully")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	groupCtx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	select {
	case <-ctx.Done():
		logger.InfoTag("BOOT", "shutting down: %v", context.Cause(ctx))
	case <-groupCtx.Done():
		logger.WarnTag("BOOT", "a service stopped, shutting down: %v", context.Cause(groupCtx))
	}

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("BOOT", "shutdown timed out")
		return errors.New("shutdown timed out")
	}
	return nil
}
