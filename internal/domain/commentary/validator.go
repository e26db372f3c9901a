package commentary

import (
	"regexp"

	"commentary-server-go/internal/platform/config"
)

var teamIDPattern = regexp.MustCompile(`^[0-9]+$`)

// ValidateTeamID reports whether teamID is one or more ASCII digits.
func ValidateTeamID(teamID string) bool {
	return teamIDPattern.MatchString(teamID)
}

// Validator checks personas and languages against the configured enumerations.
// Matching is exact and case-sensitive.
type Validator struct {
	personas  map[string]struct{}
	languages map[string]struct{}
}

// NewValidator snapshots the enumerations from cfg.
func NewValidator(cfg config.CommentaryConfig) *Validator {
	v := &Validator{
		personas:  make(map[string]struct{}, len(cfg.Personas)),
		languages: make(map[string]struct{}, len(cfg.Languages)),
	}
	for _, p := range cfg.Personas {
		v.personas[p.Name] = struct{}{}
	}
	for _, l := range cfg.Languages {
		v.languages[l] = struct{}{}
	}
	return v
}

func (v *Validator) ValidateTeamID(teamID string) bool {
	return ValidateTeamID(teamID)
}

func (v *Validator) ValidateCommentator(commentator string) bool {
	_, ok := v.personas[commentator]
	return ok
}

func (v *Validator) ValidateLanguage(language string) bool {
	_, ok := v.languages[language]
	return ok
}
