package deepgram

import "github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/config"

// SettingsMessage is the one-time V1 configuration message. It must be the
// first frame sent after the connection opens.
type SettingsMessage struct {
	Type  string        `json:"type"`
	Audio AudioSettings `json:"audio"`
	Agent AgentSettings `json:"agent"`
}

type AudioSettings struct {
	Input  AudioFormat  `json:"input"`
	Output OutputFormat `json:"output"`
}

type AudioFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type OutputFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
	Container  string `json:"container"`
}

type AgentSettings struct {
	Greeting string      `json:"greeting"`
	Language string      `json:"language"`
	Listen   ListenStage `json:"listen"`
	Think    ThinkStage  `json:"think"`
	Speak    SpeakStage  `json:"speak"`
}

type ListenStage struct {
	Provider ProviderSpec `json:"provider"`
}

type ThinkStage struct {
	Provider ProviderSpec `json:"provider"`
	Prompt   string       `json:"prompt,omitempty"`
}

type SpeakStage struct {
	Provider ProviderSpec `json:"provider"`
}

type ProviderSpec struct {
	Type        string `json:"type"`
	Model       string `json:"model,omitempty"`
	SmartFormat bool   `json:"smart_format,omitempty"`
}

// keepAliveMessage keeps an idle connection from timing out.
type keepAliveMessage struct {
	Type string `json:"type"`
}

// injectMessage makes the agent speak an out-of-band utterance.
type injectMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// newSettings builds the Settings message from the validated configuration.
// The greeting follows the provider-override / global / default precedence.
func newSettings(cfg *config.Config) *SettingsMessage {
	return &SettingsMessage{
		Type: "Settings",
		Audio: AudioSettings{
			Input: AudioFormat{
				Encoding:   cfg.Deepgram.InputEncoding,
				SampleRate: cfg.Deepgram.InputSampleRate,
			},
			Output: OutputFormat{
				Encoding:   cfg.Deepgram.OutputEncoding,
				SampleRate: cfg.Deepgram.OutputSampleRate,
				Container:  "none",
			},
		},
		Agent: AgentSettings{
			Greeting: cfg.Greeting(),
			Language: cfg.Agent.Language,
			Listen: ListenStage{
				Provider: ProviderSpec{Type: "deepgram", Model: cfg.Deepgram.Model, SmartFormat: true},
			},
			Think: ThinkStage{
				Provider: ProviderSpec{Type: "open_ai", Model: cfg.Agent.Model},
				Prompt:   cfg.Agent.Prompt,
			},
			Speak: SpeakStage{
				Provider: ProviderSpec{Type: "deepgram", Model: cfg.Deepgram.TTSModel},
			},
		},
	}
}
