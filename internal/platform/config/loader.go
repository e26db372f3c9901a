package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are probed in order when no explicit path is given.
var DefaultPaths = []string{".config.yaml", "config.yaml"}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Loader layers a YAML file and environment variables over DefaultConfig.
type Loader struct {
	useDotEnv bool
	path      string
	lookup    LookupFunc
}

// NewLoader creates a loader that reads .env, the first existing default
// path and the process environment.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		lookup:    os.LookupEnv,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath pins the YAML file to read.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithLookup overrides environment lookup (useful for tests).
func (l *Loader) WithLookup(fn LookupFunc) *Loader {
	if fn != nil {
		l.lookup = fn
	}
	return l
}

// Load builds the effective configuration.
func (l *Loader) Load() (*Config, error) {
	if l.useDotEnv {
		// a missing .env is normal outside development
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path := l.resolvePath()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := l.validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) resolvePath() string {
	if l.path != "" {
		return l.path
	}
	if p, ok := l.lookup("CONFIG_PATH"); ok && p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (l *Loader) applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := l.lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("SPORTS_API_KEY", &cfg.Results.APIKey)
	str("SPORTS_API_BASE_URL", &cfg.Results.BaseURL)
	str("GROQ_API_KEY", &cfg.LLM.APIKey)
	str("GROQ_MODEL", &cfg.LLM.ModelName)
	str("LLM_BASE_URL", &cfg.LLM.BaseURL)
	str("ELEVENLABS_API_KEY", &cfg.TTS.ElevenLabs.APIKey)
	str("AZURE_SPEECH_KEY", &cfg.TTS.Azure.Key)
	str("AZURE_SPEECH_REGION", &cfg.TTS.Azure.Region)
	str("STATIC_FOLDER", &cfg.Audio.Dir)
	str("LOG_LEVEL", &cfg.Log.Level)

	if v, ok := l.lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := l.lookup("FLASK_DEBUG"); ok && v != "" {
		cfg.Server.Debug = strings.EqualFold(v, "true")
	}
	return nil
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Audio.Dir == "" {
		return fmt.Errorf("audio dir is required")
	}
	if cfg.Audio.RetentionSeconds <= 0 {
		return fmt.Errorf("audio retention_seconds must be positive, got %d", cfg.Audio.RetentionSeconds)
	}
	if cfg.Audio.MaxFiles <= 0 {
		return fmt.Errorf("audio max_files must be positive, got %d", cfg.Audio.MaxFiles)
	}
	if len(cfg.Commentary.Personas) == 0 {
		return fmt.Errorf("at least one persona is required")
	}
	if len(cfg.Commentary.Languages) == 0 {
		return fmt.Errorf("at least one language is required")
	}
	if cfg.Results.MaxGames <= 0 {
		return fmt.Errorf("results max_games must be positive, got %d", cfg.Results.MaxGames)
	}
	return nil
}
