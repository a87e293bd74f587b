package provider

import (
	"context"
	"encoding/json"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/audio"
)

// Event is one item emitted by a provider session: either a decoded control
// message passed through from the service, or an audio burst chunk, or the
// synthesized burst terminator.
type Event interface {
	EventType() string
}

// AgentAudioEvent carries one binary chunk of agent speech.
type AgentAudioEvent struct {
	CallID     string
	Data       []byte
	Encoding   audio.Encoding
	SampleRate int
}

func (AgentAudioEvent) EventType() string { return "AgentAudio" }

// AgentAudioDoneEvent terminates an audio burst. Consumers always see one of
// these after the last chunk of a burst, even when the connection dies first.
type AgentAudioDoneEvent struct {
	CallID string
}

func (AgentAudioDoneEvent) EventType() string { return "AgentAudioDone" }

// ControlEvent is a generic passthrough of an upstream JSON control message
// (settings ack, conversation text, errors, ...). Raw keeps the full payload.
type ControlEvent struct {
	Type string
	Raw  json.RawMessage
}

func (e ControlEvent) EventType() string { return e.Type }

// EventSink receives session events one at a time, in emission order.
// Sink errors are logged by the caller and never stop a session.
type EventSink func(ctx context.Context, ev Event) error

// Marshal serializes an event into the wire shape consumed downstream.
// This is the only place event structs meet their JSON representation.
func Marshal(ev Event) ([]byte, error) {
	switch e := ev.(type) {
	case AgentAudioEvent:
		return json.Marshal(struct {
			Type           string `json:"type"`
			Data           []byte `json:"data"`
			StreamingChunk bool   `json:"streaming_chunk"`
			CallID         string `json:"call_id"`
			Encoding       string `json:"encoding"`
			SampleRate     int    `json:"sample_rate"`
		}{
			Type:           e.EventType(),
			Data:           e.Data,
			StreamingChunk: true,
			CallID:         e.CallID,
			Encoding:       string(e.Encoding),
			SampleRate:     e.SampleRate,
		})
	case AgentAudioDoneEvent:
		return json.Marshal(struct {
			Type          string `json:"type"`
			StreamingDone bool   `json:"streaming_done"`
			CallID        string `json:"call_id"`
		}{
			Type:          e.EventType(),
			StreamingDone: true,
			CallID:        e.CallID,
		})
	case ControlEvent:
		return []byte(e.Raw), nil
	default:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{Type: ev.EventType()})
	}
}
