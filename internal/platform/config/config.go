package config

import "time"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Web        WebConfig        `yaml:"web"`
	Audio      AudioConfig      `yaml:"audio"`
	Results    ResultsConfig    `yaml:"results"`
	LLM        LLMConfig        `yaml:"llm"`
	TTS        TTSConfig        `yaml:"tts"`
	Commentary CommentaryConfig `yaml:"commentary"`
}

type ServerConfig struct {
	IP    string `yaml:"ip"`
	Port  int    `yaml:"port"`
	Debug bool   `yaml:"debug"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// WebConfig points at the static UI served under "/".
type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

// AudioConfig controls where audio assets live and how long they are kept.
type AudioConfig struct {
	Dir              string `yaml:"dir"`
	RetentionSeconds int    `yaml:"retention_seconds"`
	MaxFiles         int    `yaml:"max_files"`
}

// RetentionWindow returns the maximum age of an audio asset.
func (a AudioConfig) RetentionWindow() time.Duration {
	return time.Duration(a.RetentionSeconds) * time.Second
}

type ResultsConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxGames int           `yaml:"max_games"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"url"`
	APIKey      string        `yaml:"api_key"`
	ModelName   string        `yaml:"model_name"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Enabled reports whether a completion backend can be reached.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

type TTSConfig struct {
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Azure      AzureConfig      `yaml:"azure"`
	Edge       EdgeConfig       `yaml:"edge"`
}

// VoiceTable maps persona -> language -> provider voice id.
type VoiceTable map[string]map[string]string

// Lookup returns the voice id for the pair, or "" when absent.
func (t VoiceTable) Lookup(persona, language string) string {
	if t == nil {
		return ""
	}
	return t[persona][language]
}

type ElevenLabsConfig struct {
	APIKey          string     `yaml:"api_key"`
	BaseURL         string     `yaml:"url"`
	ModelID         string     `yaml:"model_id"`
	Stability       float64    `yaml:"stability"`
	SimilarityBoost float64    `yaml:"similarity_boost"`
	Voices          VoiceTable `yaml:"voices"`
}

// Enabled reports whether the credential is configured.
func (c ElevenLabsConfig) Enabled() bool { return c.APIKey != "" }

type AzureConfig struct {
	Key          string     `yaml:"key"`
	Region       string     `yaml:"region"`
	Endpoint     string     `yaml:"endpoint"`
	OutputFormat string     `yaml:"output_format"`
	Voices       VoiceTable `yaml:"voices"`
}

func (c AzureConfig) Enabled() bool { return c.Key != "" }

// GenericVoice is a (language code, regional accent voice) pair.
type GenericVoice struct {
	Lang   string `yaml:"lang"`
	Accent string `yaml:"accent"`
}

type EdgeConfig struct {
	Voices  map[string]GenericVoice `yaml:"voices"`
	Default GenericVoice            `yaml:"default"`
	Rate    string                  `yaml:"rate"`
	Volume  string                  `yaml:"volume"`
	Pitch   string                  `yaml:"pitch"`
}

type Persona struct {
	Name       string `yaml:"name"`
	Descriptor string `yaml:"descriptor"`
}

type CommentaryConfig struct {
	DefaultCommentator string            `yaml:"default_commentator"`
	DefaultLanguage    string            `yaml:"default_language"`
	Personas           []Persona         `yaml:"personas"`
	Languages          []string          `yaml:"languages"`
	Teams              map[string]string `yaml:"teams"`
}

// Descriptor returns the personality line for name, or "" if unknown.
func (c CommentaryConfig) Descriptor(name string) string {
	for _, p := range c.Personas {
		if p.Name == name {
			return p.Descriptor
		}
	}
	return ""
}

// PersonaNames lists the configured personas in order.
func (c CommentaryConfig) PersonaNames() []string {
	names := make([]string, 0, len(c.Personas))
	for _, p := range c.Personas {
		names = append(names, p.Name)
	}
	return names
}

// TeamName resolves the display name for a team id.
func (c CommentaryConfig) TeamName(teamID string) string {
	if name, ok := c.Teams[teamID]; ok {
		return name
	}
	return "Unknown Team"
}
