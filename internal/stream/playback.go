package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/audio"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/provider"
)

// Playback turns the provider's event stream into audible output. Each
// agent utterance becomes one Burst on the queue; AgentAudioDone seals the
// burst so the next one starts cleanly.
type Playback struct {
	encoding   audio.Encoding
	sampleRate int

	queue *Queue

	mu      sync.Mutex
	current *Burst
}

// NewPlayback prepares a playback pipeline for agent audio in the given
// format. Call Start to open the audio device.
func NewPlayback(encoding string, sampleRate int) (*Playback, error) {
	enc, ok := audio.NormalizeEncoding(encoding)
	if !ok {
		return nil, fmt.Errorf("stream: unsupported playback encoding %q", encoding)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("stream: invalid playback sample rate %d", sampleRate)
	}
	return &Playback{
		encoding:   enc,
		sampleRate: sampleRate,
		queue:      NewQueue(),
	}, nil
}

// Start opens the output device and begins draining the queue.
func (p *Playback) Start() error {
	sr := beep.SampleRate(p.sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("stream: init speaker: %w", err)
	}
	speaker.Play(p.queue)
	return nil
}

// Sink returns the event sink to hand to the provider.
func (p *Playback) Sink() provider.EventSink {
	return p.handle
}

func (p *Playback) handle(_ context.Context, ev provider.Event) error {
	switch e := ev.(type) {
	case provider.AgentAudioEvent:
		p.append(e)
	case provider.AgentAudioDoneEvent:
		p.seal()
	case provider.ControlEvent:
		logrus.Debugf("stream: agent event %s", e.Type)
	}
	return nil
}

func (p *Playback) append(e provider.AgentAudioEvent) {
	pcm := e.Data
	if e.Encoding == audio.EncodingULaw {
		pcm = audio.ULawToPCM16(e.Data)
	}
	p.mu.Lock()
	if p.current == nil {
		p.current = NewBurst()
		p.queue.Push(p.current)
	}
	b := p.current
	p.mu.Unlock()
	b.Append(pcm)
}

func (p *Playback) seal() {
	p.mu.Lock()
	b := p.current
	p.current = nil
	p.mu.Unlock()
	if b != nil {
		b.Close()
	}
}

// Interrupt discards the utterance being played, for barge-in.
func (p *Playback) Interrupt() {
	speaker.Lock()
	p.queue.CancelCurrent()
	speaker.Unlock()
	p.seal()
}
