package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/errors"
	"commentary-server-go/internal/platform/logging"
	"commentary-server-go/internal/platform/observability"
)

// Provider completes prompts against an OpenAI compatible chat endpoint
// (Groq by default).
type Provider struct {
	name        string
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *logging.Logger
	recorder    *observability.Recorder
}

// ValidateConfig checks the fields required to reach the backend.
func ValidateConfig(cfg config.LLMConfig) error {
	const op = "llm.validate"
	if cfg.APIKey == "" {
		return errors.New(errors.KindConfig, op, "missing API key")
	}
	if cfg.ModelName == "" {
		return errors.New(errors.KindConfig, op, "missing model name")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return errors.New(errors.KindConfig, op, fmt.Sprintf("invalid temperature: %f", cfg.Temperature))
	}
	if cfg.MaxTokens < 0 {
		return errors.New(errors.KindConfig, op, fmt.Sprintf("invalid max tokens: %d", cfg.MaxTokens))
	}
	return nil
}

// NewProvider builds a provider. recorder may be nil.
func NewProvider(cfg config.LLMConfig, logger *logging.Logger, recorder *observability.Recorder) (*Provider, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	name := cfg.Provider
	if name == "" {
		name = "openai"
	}

	return &Provider{
		name:        name,
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger,
		recorder:    recorder,
	}, nil
}

func (p *Provider) Name() string { return p.name }

// Complete sends prompt as the single user message and returns the first
// choice's content.
func (p *Provider) Complete(ctx context.Context, prompt string) (text string, err error) {
	const op = "llm.complete"

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ctx, end := p.recorder.StartSpan(ctx, "llm", p.name)
	defer func() { end(err) }()

	start := time.Now()
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.temperature,
	}
	if p.maxTokens > 0 {
		req.MaxTokens = p.maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(errors.KindGeneration, op, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.KindGeneration, op, "no choices returned")
	}

	elapsed := time.Since(start)
	p.recorder.RecordMetric(ctx, "llm.completion.ms", float64(elapsed.Milliseconds()), map[string]string{"provider": p.name})
	p.logger.DebugTag("TIMING", "%s completion took %s (%d tokens)", p.name, elapsed, resp.Usage.TotalTokens)

	return resp.Choices[0].Message.Content, nil
}
