package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/audio"
)

// Config is the complete agent configuration.
type Config struct {
	Agent       AgentConfig       `yaml:"agent"`
	Deepgram    DeepgramConfig    `yaml:"deepgram"`
	AudioSocket AudioSocketConfig `yaml:"audiosocket"`
	Streaming   StreamingConfig   `yaml:"streaming"`
	HTTP        HTTPConfig        `yaml:"http"`
}

// AgentConfig holds the global conversational settings shared by providers.
type AgentConfig struct {
	Model           string `yaml:"model"`            // think model, e.g. gpt-4o-mini
	Prompt          string `yaml:"prompt"`           // system prompt for the think stage
	InitialGreeting string `yaml:"initial_greeting"` // global greeting fallback
	Language        string `yaml:"language"`
}

// DeepgramConfig holds the Voice Agent connection settings.
type DeepgramConfig struct {
	APIKey   string `yaml:"api_key"`
	URL      string `yaml:"url"`
	Model    string `yaml:"model"`     // listen model
	TTSModel string `yaml:"tts_model"` // speak model
	Greeting string `yaml:"greeting"`  // provider-specific greeting override

	InputEncoding    string `yaml:"input_encoding"`
	InputSampleRate  int    `yaml:"input_sample_rate_hz"`
	OutputEncoding   string `yaml:"output_encoding"`
	OutputSampleRate int    `yaml:"output_sample_rate_hz"`
}

// AudioSocketConfig describes the telephony side of the bridge.
type AudioSocketConfig struct {
	Format string `yaml:"format"` // "ulaw" or "slin16"
}

// StreamingConfig describes the playback frames handed to Asterisk.
type StreamingConfig struct {
	Encoding   string `yaml:"encoding"`
	SampleRate int    `yaml:"sample_rate"`
}

// HTTPConfig configures the health/metrics listener.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

const (
	DefaultAgentURL = "wss://agent.deepgram.com/v1/agent/converse"
	DefaultGreeting = "Hello, how can I help you today?"
)

// Load reads the YAML file, applies environment overrides and defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// applyEnv lets deployment environments override the sensitive or
// per-machine values without editing the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("DEEPGRAM_API_KEY"); v != "" {
		c.Deepgram.APIKey = v
	}
	if v := os.Getenv("DEEPGRAM_URL"); v != "" {
		c.Deepgram.URL = v
	}
	if v := os.Getenv("DEEPGRAM_INPUT_ENCODING"); v != "" {
		c.Deepgram.InputEncoding = v
	}
	if v := os.Getenv("DEEPGRAM_INPUT_SAMPLE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Deepgram.InputSampleRate = n
		}
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		c.HTTP.Address = v
	}
}

func (c *Config) applyDefaults() {
	if c.Deepgram.URL == "" {
		c.Deepgram.URL = DefaultAgentURL
	}
	if c.Deepgram.InputEncoding == "" {
		c.Deepgram.InputEncoding = "linear16"
	}
	if c.Deepgram.InputSampleRate == 0 {
		c.Deepgram.InputSampleRate = audio.TelephonyRate
	}
	if c.Deepgram.OutputEncoding == "" {
		c.Deepgram.OutputEncoding = "mulaw"
	}
	if c.Deepgram.OutputSampleRate == 0 {
		c.Deepgram.OutputSampleRate = audio.TelephonyRate
	}
	if c.Agent.Language == "" {
		c.Agent.Language = "en"
	}
	if c.AudioSocket.Format == "" {
		c.AudioSocket.Format = "ulaw"
	}
	if c.Streaming.Encoding == "" {
		c.Streaming.Encoding = c.Deepgram.OutputEncoding
	}
	if c.Streaming.SampleRate == 0 {
		c.Streaming.SampleRate = c.Deepgram.OutputSampleRate
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
}

// Validate checks the fields the bridge cannot run without.
func (c *Config) Validate() error {
	if c.Deepgram.APIKey == "" {
		return fmt.Errorf("deepgram.api_key is required")
	}
	if _, ok := audio.NormalizeEncoding(c.Deepgram.InputEncoding); !ok {
		return fmt.Errorf("deepgram.input_encoding %q is not supported", c.Deepgram.InputEncoding)
	}
	if _, ok := audio.NormalizeEncoding(c.Deepgram.OutputEncoding); !ok {
		return fmt.Errorf("deepgram.output_encoding %q is not supported", c.Deepgram.OutputEncoding)
	}
	if c.Deepgram.InputSampleRate <= 0 {
		return fmt.Errorf("deepgram.input_sample_rate_hz must be positive, got %d", c.Deepgram.InputSampleRate)
	}
	if c.Deepgram.OutputSampleRate <= 0 {
		return fmt.Errorf("deepgram.output_sample_rate_hz must be positive, got %d", c.Deepgram.OutputSampleRate)
	}
	if _, ok := audio.NormalizeEncoding(c.AudioSocket.Format); !ok {
		return fmt.Errorf("audiosocket.format %q is not supported", c.AudioSocket.Format)
	}
	return nil
}

// Greeting resolves the greeting precedence: provider override, then the
// global greeting, then a fixed default. Whitespace-only values do not count.
func (c *Config) Greeting() string {
	if g := strings.TrimSpace(c.Deepgram.Greeting); g != "" {
		return g
	}
	if g := strings.TrimSpace(c.Agent.InitialGreeting); g != "" {
		return g
	}
	return DefaultGreeting
}
