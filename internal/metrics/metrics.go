package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the agent bridge.
type Metrics struct {
	// Outbound (caller -> agent) frames
	FramesSent          prometheus.Counter
	FramesDropped       prometheus.Counter
	ConversionFallbacks prometheus.Counter
	LowSignalFrames     prometheus.Counter

	// Inbound (agent -> caller) traffic
	EventsReceived prometheus.Counter
	AudioChunks    prometheus.Counter
	AudioBursts    prometheus.Counter
	ParseErrors    prometheus.Counter

	// Session lifecycle
	SessionsStarted prometheus.Counter
	SessionsClosed  prometheus.Counter
	KeepAlivesSent  prometheus.Counter
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process-wide metrics, registering them on the default
// registry the first time it is called.
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = &Metrics{
			FramesSent: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_frames_sent_total",
				Help: "Caller audio frames forwarded to the voice agent",
			}),
			FramesDropped: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_frames_dropped_total",
				Help: "Caller audio frames dropped for unsupported encodings",
			}),
			ConversionFallbacks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_conversion_fallbacks_total",
				Help: "Frames forwarded unconverted after a codec or resample failure",
			}),
			LowSignalFrames: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_low_signal_frames_total",
				Help: "Frames whose RMS fell below the codec-mismatch threshold",
			}),
			EventsReceived: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_events_received_total",
				Help: "Control events received from the voice agent",
			}),
			AudioChunks: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_audio_chunks_total",
				Help: "Binary agent audio chunks received",
			}),
			AudioBursts: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_audio_bursts_total",
				Help: "Completed agent audio bursts",
			}),
			ParseErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_parse_errors_total",
				Help: "Inbound control messages that failed to parse",
			}),
			SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_sessions_started_total",
				Help: "Voice agent sessions opened",
			}),
			SessionsClosed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_sessions_closed_total",
				Help: "Voice agent sessions torn down",
			}),
			KeepAlivesSent: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ava_provider_keepalives_total",
				Help: "KeepAlive messages sent during idle intervals",
			}),
		}
	})
	return defaultMetrics
}
