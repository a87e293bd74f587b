package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/audio"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/config"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/provider/deepgram"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/stream"
)

// Simulates one phone call: feeds a raw mu-law recording to the voice agent
// in real-time 20 ms frames and plays the agent's replies on the local
// speaker. Record an input file with e.g.
//
//	sox caller.wav -r 8000 -c 1 -e mu-law caller.ul
func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	audioPath := flag.String("audio", "caller.ul", "raw mu-law 8 kHz caller audio")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	playback, err := stream.NewPlayback(cfg.Streaming.Encoding, cfg.Streaming.SampleRate)
	if err != nil {
		log.Fatalf("create playback: %v", err)
	}
	if err := playback.Start(); err != nil {
		log.Fatalf("start playback: %v", err)
	}

	prov := deepgram.New(cfg, playback.Sink())

	callID := uuid.New().String()
	if err := prov.StartSession(context.Background(), callID); err != nil {
		log.Fatalf("start session: %v", err)
	}
	defer prov.StopSession()

	f, err := os.Open(*audioPath)
	if err != nil {
		log.Fatalf("open caller audio: %v", err)
	}
	defer f.Close()

	// pace the frames like a live trunk would
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	frame := make([]byte, audio.ULawFrameBytes)
	for range ticker.C {
		n, err := io.ReadFull(f, frame)
		if n > 0 {
			prov.SendAudio(frame[:n])
		}
		if err != nil {
			break
		}
	}

	log.Printf("caller audio finished, call %s waiting for the agent", callID)
	<-time.After(10 * time.Second)
}
