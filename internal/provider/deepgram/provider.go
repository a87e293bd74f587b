package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/audio"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/config"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/metrics"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/provider"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/ws"
)

const (
	// lowSignalRMS marks the energy below which a frame is suspicious:
	// a valid voice frame decoded with the wrong codec lands near zero.
	lowSignalRMS = 100

	defaultKeepAliveInterval = 10 * time.Second
)

// State is the session lifecycle phase.
type State int32

const (
	StateNew State = iota
	StateConnecting
	StateConfigured
	StateStreaming
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateConnecting:
		return "CONNECTING"
	case StateConfigured:
		return "CONFIGURED"
	case StateStreaming:
		return "STREAMING"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Provider bridges one phone call to the Deepgram Voice Agent over a
// persistent websocket. Three concurrent paths touch a live session: the
// connection's read loop (inbound demux), the keep-alive ticker, and the
// externally driven send/inject path. The shared flags below are advisory
// and follow a one-writer-per-field discipline; they are not locks.
type Provider struct {
	cfg  *config.Config
	sink provider.EventSink
	m    *metrics.Metrics

	client *ws.Client

	callID    string
	requestID string

	// negotiated formats; output side is fixed once the Settings message
	// is sent and never mutates for the session's lifetime
	inputEncoding  audio.Encoding
	inputRate      int
	outputEncoding audio.Encoding
	outputRate     int

	keepAliveInterval time.Duration
	keepAliveCancel   context.CancelFunc

	state atomic.Int32

	// audioFlowing: set by the send path, read-then-cleared by the
	// heartbeat once per tick. closing/closed progress monotonically.
	// started flips once the session reaches STREAMING, so teardown
	// bookkeeping skips sessions that never got that far.
	audioFlowing atomic.Bool
	closing      atomic.Bool
	closed       atomic.Bool
	started      atomic.Bool

	// burst state is owned by the read loop; the mutex only serializes
	// the final burst flush on shutdown against an in-flight frame.
	burstMu          sync.Mutex
	burstInProgress  bool
	firstChunkLogged bool

	closeLogOnce sync.Once
	stopOnce     sync.Once

	resampler *audio.Resampler
	resample  func(pcm []byte, fromRate, toRate int) ([]byte, error)
}

// New creates a provider wired to the given event sink. The connection is
// only established by StartSession.
func New(cfg *config.Config, sink provider.EventSink) *Provider {
	p := &Provider{
		cfg:               cfg,
		sink:              sink,
		m:                 metrics.Default(),
		keepAliveInterval: defaultKeepAliveInterval,
	}
	p.inputEncoding, _ = audio.NormalizeEncoding(cfg.Deepgram.InputEncoding)
	p.inputRate = cfg.Deepgram.InputSampleRate
	p.outputEncoding, _ = audio.NormalizeEncoding(cfg.Deepgram.OutputEncoding)
	p.outputRate = cfg.Deepgram.OutputSampleRate
	p.resample = p.statefulResample
	p.state.Store(int32(StateNew))
	return p
}

// StartSession opens the websocket, sends the Settings handshake and starts
// the keep-alive loop. On any failure the partially started pieces are torn
// down before the error is returned.
func (p *Provider) StartSession(ctx context.Context, callID string) error {
	if p.closing.Load() || p.closed.Load() {
		return fmt.Errorf("deepgram: session already stopped")
	}

	p.setState(StateConnecting)
	p.callID = callID
	p.requestID = uuid.New().String()

	header := http.Header{}
	header.Set("Authorization", "Token "+p.cfg.Deepgram.APIKey)

	logrus.WithField("url", p.cfg.Deepgram.URL).Info("deepgram: connecting to voice agent")
	client, err := ws.Dial(ctx, p.cfg.Deepgram.URL, header, p)
	if err != nil {
		p.cancelKeepAlive()
		p.setState(StateNew)
		return fmt.Errorf("deepgram: connect: %w", err)
	}
	p.client = client

	if err := p.configure(client); err != nil {
		p.cancelKeepAlive()
		client.Close()
		p.client = nil
		p.setState(StateNew)
		return fmt.Errorf("deepgram: configure: %w", err)
	}
	p.setState(StateConfigured)

	kaCtx, cancel := context.WithCancel(context.Background())
	p.keepAliveCancel = cancel
	go p.keepAliveLoop(kaCtx, client)

	p.setState(StateStreaming)
	p.started.Store(true)
	p.m.SessionsStarted.Inc()
	logrus.WithFields(logrus.Fields{
		"call_id":    callID,
		"request_id": p.requestID,
	}).Info("deepgram: session started")
	return nil
}

// configure sends the one-time Settings message and pins the output format
// for the rest of the session.
func (p *Provider) configure(client *ws.Client) error {
	settings := newSettings(p.cfg)

	p.outputEncoding, _ = audio.NormalizeEncoding(settings.Audio.Output.Encoding)
	p.outputRate = settings.Audio.Output.SampleRate

	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	if err := client.SendText(data); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"input_encoding":     settings.Audio.Input.Encoding,
		"input_sample_rate":  settings.Audio.Input.SampleRate,
		"output_encoding":    settings.Audio.Output.Encoding,
		"output_sample_rate": settings.Audio.Output.SampleRate,
	}).Info("deepgram: agent configured")
	return nil
}

// StopSession is the idempotent teardown: it cancels the keep-alive loop,
// closes the connection if open, and flips the closed flag exactly once.
// Concurrent or repeated calls produce no duplicate effects.
func (p *Provider) StopSession() {
	if p.closing.Load() || p.closed.Load() {
		return
	}
	p.stopOnce.Do(func() {
		p.closing.Store(true)
		p.setState(StateClosing)

		p.cancelKeepAlive()
		if p.client != nil {
			p.client.Close()
		}

		p.closed.Store(true)
		p.setState(StateClosed)
		logrus.Info("deepgram: disconnected from voice agent")
	})
}

func (p *Provider) cancelKeepAlive() {
	if p.keepAliveCancel != nil {
		p.keepAliveCancel()
		p.keepAliveCancel = nil
	}
}

// Speak injects an out-of-band agent utterance. Without an active
// connection this is a silent no-op; a closed connection is expected
// during teardown and only logged at debug level.
func (p *Provider) Speak(text string) {
	if text == "" || p.client == nil {
		return
	}
	data, err := json.Marshal(injectMessage{Type: "InjectAgentMessage", Message: text})
	if err != nil {
		logrus.Errorf("deepgram: marshal inject message: %v", err)
		return
	}
	if err := p.client.SendText(data); err != nil {
		if ws.IsExpectedClose(err) {
			logrus.Debugf("deepgram: inject skipped, connection closed: %v", err)
		} else {
			logrus.Errorf("deepgram: failed to send inject message: %v", err)
		}
	}
}

// Ready reports configuration readiness. A live websocket only exists after
// StartSession during an actual call.
func (p *Provider) Ready() bool {
	return p.cfg.Deepgram.APIKey != "" && p.sink != nil
}

// Info describes the provider and its capabilities.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:            "DeepgramProvider",
		Type:            "cloud",
		SupportedCodecs: []string{"ulaw"},
		Model:           p.cfg.Deepgram.Model,
		TTSModel:        p.cfg.Deepgram.TTSModel,
	}
}

// State returns the current lifecycle phase.
func (p *Provider) State() State {
	return State(p.state.Load())
}

func (p *Provider) setState(s State) {
	old := State(p.state.Swap(int32(s)))
	if old != s {
		logrus.Debugf("deepgram: session state %s -> %s", old, s)
	}
}

// ---- inbound demultiplexer (ws.EventHandler) ----
//
// The websocket read loop delivers frames here strictly in arrival order.
// Text frames are control events and always terminate an open audio burst;
// binary frames are agent audio chunks.

func (p *Provider) OnOpen(_ *ws.Client) {
	logrus.Debug("deepgram: websocket open")
}

func (p *Provider) OnMessage(_ *ws.Client, msgType int, msg []byte) {
	switch msgType {
	case websocket.TextMessage:
		p.handleControl(msg)
	case websocket.BinaryMessage:
		p.handleAudio(msg)
	}
}

func (p *Provider) handleControl(msg []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		// malformed frame: drop it, the loop continues
		p.m.ParseErrors.Inc()
		logrus.WithField("message", string(msg)).Errorf("deepgram: failed to parse control message: %v", err)
		return
	}

	p.endBurst()

	p.m.EventsReceived.Inc()
	p.emit(provider.ControlEvent{Type: head.Type, Raw: append(json.RawMessage(nil), msg...)})
}

func (p *Provider) handleAudio(msg []byte) {
	p.burstMu.Lock()
	first := !p.firstChunkLogged
	p.firstChunkLogged = true
	p.burstInProgress = true
	p.burstMu.Unlock()

	if first {
		// diagnostic once per session, not per chunk
		logrus.WithField("bytes", len(msg)).Info("deepgram: first agent audio chunk")
	}

	p.m.AudioChunks.Inc()
	p.emit(provider.AgentAudioEvent{
		CallID:     p.callID,
		Data:       msg,
		Encoding:   p.outputEncoding,
		SampleRate: p.outputRate,
	})
}

// endBurst emits exactly one AgentAudioDone for an open burst.
func (p *Provider) endBurst() {
	p.burstMu.Lock()
	open := p.burstInProgress
	p.burstInProgress = false
	p.burstMu.Unlock()

	if open {
		p.m.AudioBursts.Inc()
		p.emit(provider.AgentAudioDoneEvent{CallID: p.callID})
	}
}

func (p *Provider) OnError(_ *ws.Client, err error) {
	if p.closing.Load() || p.closed.Load() || ws.IsExpectedClose(err) {
		logrus.Debugf("deepgram: connection closed: %v", err)
		return
	}
	p.closeLogOnce.Do(func() {
		logrus.Warnf("deepgram: voice agent connection closed: %v", err)
	})
}

// OnClose runs exactly once per connection, on the read loop goroutine
// after its final message, whichever side initiated the shutdown. A
// consumer must never observe an unterminated burst. A connection torn
// down before the session reached STREAMING never counted as started, so
// it is not counted as closed either.
func (p *Provider) OnClose(_ *ws.Client) {
	p.endBurst()
	if p.started.Load() {
		p.m.SessionsClosed.Inc()
	}
}

func (p *Provider) emit(ev provider.Event) {
	if p.sink == nil {
		return
	}
	if err := p.sink(context.Background(), ev); err != nil {
		logrus.Warnf("deepgram: event sink rejected %s: %v", ev.EventType(), err)
	}
}

// statefulResample lazily builds the per-session converter and keeps it
// across frames so the rate conversion stays continuous.
func (p *Provider) statefulResample(pcm []byte, fromRate, toRate int) ([]byte, error) {
	if p.resampler == nil || p.resampler.FromRate != fromRate || p.resampler.ToRate != toRate {
		r, err := audio.NewResampler(fromRate, toRate)
		if err != nil {
			return nil, err
		}
		p.resampler = r
	}
	return p.resampler.Process(pcm)
}

var _ provider.Provider = (*Provider)(nil)
var _ ws.EventHandler = (*Provider)(nil)
