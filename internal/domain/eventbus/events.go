package eventbus

import "time"

const (
	// EventAudioSynthesized fires after an audio asset has been written.
	EventAudioSynthesized = "audio:synthesized"
	// EventSynthesisFailed fires when every voice provider failed.
	EventSynthesisFailed = "audio:failed"
	// EventCommentaryFallback fires when templated text replaced the LLM output.
	EventCommentaryFallback = "commentary:fallback"
)

// AudioEventData describes a synthesized asset.
type AudioEventData struct {
	Path        string        `json:"path"`
	Provider    string        `json:"provider"`
	Commentator string        `json:"commentator"`
	Language    string        `json:"language"`
	Size        int           `json:"size"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// FailureEventData carries the last provider error.
type FailureEventData struct {
	Commentator string `json:"commentator"`
	Language    string `json:"language"`
	Error       string `json:"error"`
}

// FallbackEventData describes a completion failure that was absorbed.
type FallbackEventData struct {
	TeamID   string `json:"team_id"`
	Provider string `json:"provider"`
	Games    int    `json:"games"`
	Error    string `json:"error"`
}
