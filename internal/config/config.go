// Package config provides the configuration structure for the speech backend.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Defaults applied when the loaded TOML leaves a field unset.
const (
	DefaultHost                 = "0.0.0.0"
	DefaultPort                 = 8000
	DefaultVoice                = "af_heart"
	DefaultModelRepo            = "hexgrad/Kokoro-82M"
	DefaultModelFile            = "kokoro-v1_0.pth"
	DefaultHubBaseURL           = "https://huggingface.co"
	DefaultEspeakDataPath       = "/usr/share/espeak-ng-data"
	DefaultEngineTimeoutSeconds = 120
	DefaultRetryMaxAttempts     = 3
	DefaultRetryInitialSeconds  = 1
	DefaultRetryMultiplier      = 2.0
)

// HTTPConfig holds the listen address for the API server.
type HTTPConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir    string `toml:"base_logs_dir"`
	StaticAudioDir string `toml:"static_audio_dir"`
	VoicesDir      string `toml:"voices_dir"`
	ModelsDir      string `toml:"models_dir"`
}

// TTSConfig holds the configuration for the synthesis pipeline and its
// external dependencies.
type TTSConfig struct {
	EngineURL      string `toml:"engine_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	DefaultVoice   string `toml:"default_voice"`
	EspeakDataPath string `toml:"espeak_data_path"`
	ModelRepo      string `toml:"model_repo"`
	ModelFile      string `toml:"model_file"`
	HubBaseURL     string `toml:"hub_base_url"`
}

// RetryConfig holds the retry policy applied around per-text generation.
type RetryConfig struct {
	MaxAttempts            uint    `toml:"max_attempts"`
	InitialIntervalSeconds int     `toml:"initial_interval_seconds"`
	Multiplier             float64 `toml:"multiplier"`
}

// NATSConfig holds the optional audio-created event publishing settings.
// Publishing is disabled when URL is empty.
type NATSConfig struct {
	URL                 string `toml:"url"`
	AudioCreatedSubject string `toml:"audio_created_subject"`
}

// Config is the root configuration structure.
type Config struct {
	HTTP  HTTPConfig  `toml:"http"`
	Paths PathsConfig `toml:"paths"`
	TTS   TTSConfig   `toml:"tts"`
	Retry RetryConfig `toml:"retry"`
	NATS  NATSConfig  `toml:"nats"`
}

// Load loads the configuration for the service and fills in defaults for
// fields the TOML file leaves unset.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with the package defaults.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Host == "" {
		c.HTTP.Host = DefaultHost
	}

	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultPort
	}

	if c.TTS.DefaultVoice == "" {
		c.TTS.DefaultVoice = DefaultVoice
	}

	if c.TTS.ModelRepo == "" {
		c.TTS.ModelRepo = DefaultModelRepo
	}

	if c.TTS.ModelFile == "" {
		c.TTS.ModelFile = DefaultModelFile
	}

	if c.TTS.HubBaseURL == "" {
		c.TTS.HubBaseURL = DefaultHubBaseURL
	}

	if c.TTS.EspeakDataPath == "" {
		c.TTS.EspeakDataPath = DefaultEspeakDataPath
	}

	if c.TTS.TimeoutSeconds == 0 {
		c.TTS.TimeoutSeconds = DefaultEngineTimeoutSeconds
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultRetryMaxAttempts
	}

	if c.Retry.InitialIntervalSeconds == 0 {
		c.Retry.InitialIntervalSeconds = DefaultRetryInitialSeconds
	}

	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = DefaultRetryMultiplier
	}
}

// ListenAddr returns the host:port pair for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
