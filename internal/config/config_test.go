package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr bool
		verify  func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults applied",
			body: "deepgram:\n  api_key: key\n",
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Deepgram.URL != DefaultAgentURL {
					t.Fatalf("url = %q", cfg.Deepgram.URL)
				}
				if cfg.Deepgram.InputEncoding != "linear16" || cfg.Deepgram.InputSampleRate != 8000 {
					t.Fatalf("input defaults = %q/%d", cfg.Deepgram.InputEncoding, cfg.Deepgram.InputSampleRate)
				}
				if cfg.Deepgram.OutputEncoding != "mulaw" || cfg.Deepgram.OutputSampleRate != 8000 {
					t.Fatalf("output defaults = %q/%d", cfg.Deepgram.OutputEncoding, cfg.Deepgram.OutputSampleRate)
				}
				if cfg.Streaming.Encoding != "mulaw" || cfg.Streaming.SampleRate != 8000 {
					t.Fatalf("streaming defaults = %q/%d", cfg.Streaming.Encoding, cfg.Streaming.SampleRate)
				}
				if cfg.AudioSocket.Format != "ulaw" {
					t.Fatalf("audiosocket format = %q", cfg.AudioSocket.Format)
				}
			},
		},
		{
			name: "env overrides file",
			body: "deepgram:\n  api_key: from-file\n  input_sample_rate_hz: 8000\n",
			env: map[string]string{
				"DEEPGRAM_API_KEY":           "from-env",
				"DEEPGRAM_INPUT_SAMPLE_RATE": "16000",
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Deepgram.APIKey != "from-env" {
					t.Fatalf("api key = %q", cfg.Deepgram.APIKey)
				}
				if cfg.Deepgram.InputSampleRate != 16000 {
					t.Fatalf("sample rate = %d", cfg.Deepgram.InputSampleRate)
				}
			},
		},
		{
			name:    "missing api key",
			body:    "deepgram:\n  model: nova-2\n",
			wantErr: true,
		},
		{
			name:    "unknown input encoding",
			body:    "deepgram:\n  api_key: key\n  input_encoding: opus\n",
			wantErr: true,
		},
		{
			name:    "unknown audiosocket format",
			body:    "deepgram:\n  api_key: key\naudiosocket:\n  format: gsm\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(writeConfig(t, tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestGreetingPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		global   string
		want     string
	}{
		{name: "provider override wins", provider: "Hi from provider", global: "Hi global", want: "Hi from provider"},
		{name: "global fallback", provider: "", global: "Hi global", want: "Hi global"},
		{name: "fixed default", provider: "", global: "", want: DefaultGreeting},
		{name: "whitespace ignored", provider: "   ", global: "\t", want: DefaultGreeting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Deepgram.Greeting = tt.provider
			cfg.Agent.InitialGreeting = tt.global
			if got := cfg.Greeting(); got != tt.want {
				t.Fatalf("Greeting() = %q, want %q", got, tt.want)
			}
		})
	}
}
