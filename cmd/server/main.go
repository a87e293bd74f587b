package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/config"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/provider"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/provider/deepgram"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("server: %v", err)
	}

	for _, w := range deepgram.DescribeAlignment(
		cfg.AudioSocket.Format, cfg.Deepgram,
		cfg.Streaming.Encoding, cfg.Streaming.SampleRate,
	) {
		logrus.Warnf("server: format alignment: %s", w)
	}

	prov := deepgram.New(cfg, logEvents)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler(prov))

	srv := &http.Server{Addr: cfg.HTTP.Address, Handler: mux}

	go func() {
		logrus.Infof("server: listening on %s", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("server: shutting down")
	prov.StopSession()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server: shutdown: %v", err)
	}
}

// logEvents is the default sink when no playback or telephony leg is bound.
func logEvents(_ context.Context, ev provider.Event) error {
	switch e := ev.(type) {
	case provider.ControlEvent:
		logrus.WithField("type", e.Type).Debug("server: agent event")
	case provider.AgentAudioDoneEvent:
		logrus.WithField("call_id", e.CallID).Debug("server: agent finished speaking")
	}
	return nil
}

func healthHandler(prov *deepgram.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := prov.Info()
		status := "ok"
		code := http.StatusOK
		if !prov.Ready() {
			status = "not ready"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{
			"status":   status,
			"provider": info.Name,
			"model":    info.Model,
			"state":    prov.State().String(),
		})
	}
}
