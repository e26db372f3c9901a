package commentary

import (
	"context"
	"fmt"
	"strings"

	"commentary-server-go/internal/domain/eventbus"
	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/errors"
	"commentary-server-go/internal/platform/logging"
)

const (
	// NoGamesMessage is returned verbatim when the team has no recent results.
	NoGamesMessage = "No recent games found for this team."
	// FallbackExclamation is appended to each summary when the LLM is unavailable.
	FallbackExclamation = ". What a thrilling match!"
)

// ResultsFetcher returns at most a handful of human readable game summaries,
// most recent first. Upstream failures surface as an empty slice.
type ResultsFetcher interface {
	Fetch(ctx context.Context, teamID string) []string
}

// Completer turns a single user prompt into text.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator produces commentary text for a team.
type Generator struct {
	validator *Validator
	personas  config.CommentaryConfig
	fetcher   ResultsFetcher
	completer Completer
	bus       *eventbus.Bus
	logger    *logging.Logger
}

// NewGenerator wires the generator. bus may be nil.
func NewGenerator(cfg config.CommentaryConfig, fetcher ResultsFetcher, completer Completer, bus *eventbus.Bus, logger *logging.Logger) *Generator {
	return &Generator{
		validator: NewValidator(cfg),
		personas:  cfg,
		fetcher:   fetcher,
		completer: completer,
		bus:       bus,
		logger:    logger,
	}
}

// Validator exposes the input checks used by Generate.
func (g *Generator) Validator() *Validator {
	return g.validator
}

// Generate validates the inputs, fetches recent results and asks the
// completer for commentary. A completer failure degrades to templated text;
// only validation errors are returned.
func (g *Generator) Generate(ctx context.Context, teamID, commentator, language string) (string, error) {
	const op = "commentary.generate"

	if !g.validator.ValidateTeamID(teamID) {
		return "", errors.Validation(op, "Invalid team ID")
	}
	if !g.validator.ValidateCommentator(commentator) {
		return "", errors.Validation(op, "Invalid commentator")
	}
	if !g.validator.ValidateLanguage(language) {
		return "", errors.Validation(op, "Invalid language")
	}

	games := g.fetcher.Fetch(ctx, teamID)
	if len(games) == 0 {
		return NoGamesMessage, nil
	}

	prompt := BuildPrompt(commentator, g.personas.Descriptor(commentator), games, language)

	g.logger.InfoTag("LLM", "generating commentary for team %s with %s in %s", teamID, commentator, language)
	text, err := g.complete(ctx, prompt)
	if err != nil {
		provider := "none"
		if g.completer != nil {
			provider = g.completer.Name()
		}
		g.logger.ErrorTag("LLM", "completion via %s failed for team %s, using fallback: %v", provider, teamID, err)
		g.bus.Publish(eventbus.EventCommentaryFallback, eventbus.FallbackEventData{
			TeamID:   teamID,
			Provider: provider,
			Games:    len(games),
			Error:    err.Error(),
		})
		return FallbackCommentary(games), nil
	}

	g.logger.InfoTag("LLM", "commentary generated for team %s (%d chars)", teamID, len(text))
	return text, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (text string, err error) {
	if g.completer == nil {
		return "", fmt.Errorf("no completion provider configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("completion provider panicked: %v", r)
		}
	}()

	text, err = g.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("completion provider returned empty text")
	}
	return text, nil
}

// BuildPrompt renders the single user message sent to the completer.
func BuildPrompt(commentator, descriptor string, games []string, language string) string {
	var b strings.Builder
	b.WriteString("\n")
	if descriptor != "" {
		fmt.Fprintf(&b, "You are %s, %s.\n", commentator, descriptor)
	} else {
		fmt.Fprintf(&b, "You are %s.\n", commentator)
	}
	b.WriteString("Here are the recent games:\n")
	b.WriteString(strings.Join(games, "\n"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Please generate a unique, lively, and engaging commentary for each game in %s.\n", language)
	fmt.Fprintf(&b, "Avoid starting with \"You are %s\".\n", commentator)
	b.WriteString("End each game commentary naturally, make it exciting.\n")
	return b.String()
}

// FallbackCommentary suffixes every summary with FallbackExclamation, one per line.
func FallbackCommentary(games []string) string {
	lines := make([]string, len(games))
	for i, game := range games {
		lines[i] = game + FallbackExclamation
	}
	return strings.Join(lines, "\n")
}
