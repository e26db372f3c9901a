package results

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"commentary-server-go/internal/platform/config"
	"commentary-server-go/internal/platform/errors"
	"commentary-server-go/internal/platform/logging"
)

// eventKeys are the fields every event must carry to be summarised.
var eventKeys = []string{"strEvent", "dateEvent", "intHomeScore", "intAwayScore"}

type eventsResponse struct {
	Results []interface{} `json:"results"`
}

// Fetcher reads recent events for a team from a TheSportsDB compatible API.
type Fetcher struct {
	client   *resty.Client
	baseURL  string
	apiKey   string
	maxGames int
	logger   *logging.Logger
}

// NewFetcher builds a fetcher with the configured timeout.
func NewFetcher(cfg config.ResultsConfig, logger *logging.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	maxGames := cfg.MaxGames
	if maxGames <= 0 {
		maxGames = 5
	}

	return &Fetcher{
		client:   client,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		maxGames: maxGames,
		logger:   logger,
	}
}

// Fetch returns up to maxGames summaries, most recent first. Any upstream or
// decoding failure is logged and yields an empty slice.
func (f *Fetcher) Fetch(ctx context.Context, teamID string) []string {
	summaries, err := f.fetch(ctx, teamID)
	if err != nil {
		f.logger.ErrorTag("RESULTS", "fetching scores for team %s failed: %v", teamID, err)
		return []string{}
	}
	if len(summaries) == 0 {
		f.logger.WarnTag("RESULTS", "no events found for team %s", teamID)
		return []string{}
	}
	f.logger.InfoTag("RESULTS", "fetched %d games for team %s", len(summaries), teamID)
	return summaries
}

func (f *Fetcher) fetch(ctx context.Context, teamID string) ([]string, error) {
	const op = "results.fetch"

	endpoint := fmt.Sprintf("%s/%s/eventslast.php", f.baseURL, url.PathEscape(f.apiKey))
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("id", teamID).
		Get(endpoint)
	if err != nil {
		return nil, errors.Wrap(errors.KindUpstream, op, "request failed", err)
	}
	if resp.IsError() {
		return nil, errors.UpstreamStatus(op, resp.StatusCode())
	}

	var payload eventsResponse
	if err := sonic.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, errors.Wrap(errors.KindUpstream, op, "decode response", err)
	}

	return f.summarise(teamID, payload.Results), nil
}

func (f *Fetcher) summarise(teamID string, events []interface{}) []string {
	if len(events) > f.maxGames {
		events = events[:f.maxGames]
	}

	summaries := make([]string, 0, len(events))
	for i, raw := range events {
		event, ok := raw.(map[string]interface{})
		if !ok {
			f.logger.WarnTag("RESULTS", "skipping event %d for team %s: not an object", i, teamID)
			continue
		}
		summary, missing := Summarise(event)
		if missing != "" {
			f.logger.WarnTag("RESULTS", "skipping event for team %s: missing key %s", teamID, missing)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Summarise renders "<event> on <date> - Score: <home>:<away>". It returns the
// first absent (or null) key instead when the event is incomplete.
func Summarise(event map[string]interface{}) (summary string, missing string) {
	values := make([]string, len(eventKeys))
	for i, key := range eventKeys {
		raw, ok := event[key]
		if !ok || raw == nil {
			return "", key
		}
		values[i] = formatValue(raw)
	}
	return fmt.Sprintf("%s on %s - Score: %s:%s", values[0], values[1], values[2], values[3]), ""
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
