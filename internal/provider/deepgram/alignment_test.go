package deepgram

import (
	"strings"
	"testing"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/config"
)

func TestDescribeAlignment(t *testing.T) {
	dg := func(inEnc string, inRate int, outEnc string, outRate int) config.DeepgramConfig {
		return config.DeepgramConfig{
			InputEncoding:    inEnc,
			InputSampleRate:  inRate,
			OutputEncoding:   outEnc,
			OutputSampleRate: outRate,
		}
	}

	tests := []struct {
		name         string
		socketFormat string
		dg           config.DeepgramConfig
		streamEnc    string
		streamRate   int
		wantCount    int
		wantContains string
	}{
		{
			name:         "fully consistent linear path",
			socketFormat: "slin16",
			dg:           dg("linear16", 8000, "mulaw", 8000),
			streamEnc:    "mulaw",
			streamRate:   8000,
			wantCount:    0,
		},
		{
			name:         "fully consistent mulaw path",
			socketFormat: "ulaw",
			dg:           dg("mulaw", 8000, "mulaw", 8000),
			streamEnc:    "mulaw",
			streamRate:   8000,
			wantCount:    0,
		},
		{
			name:         "mulaw agent fed linear telephony frames",
			socketFormat: "slin16",
			dg:           dg("mulaw", 8000, "mulaw", 8000),
			streamEnc:    "mulaw",
			streamRate:   8000,
			wantCount:    1,
			wantContains: "near-silence",
		},
		{
			name:         "mulaw at a non-telephony rate",
			socketFormat: "ulaw",
			dg:           dg("mulaw", 16000, "mulaw", 8000),
			streamEnc:    "mulaw",
			streamRate:   8000,
			wantCount:    1,
			wantContains: "8000 Hz",
		},
		{
			name:         "linear agent fed mulaw telephony frames",
			socketFormat: "ulaw",
			dg:           dg("linear16", 8000, "mulaw", 8000),
			streamEnc:    "mulaw",
			streamRate:   8000,
			wantCount:    1,
			wantContains: "transcoded",
		},
		{
			name:         "streaming leg encoding mismatch",
			socketFormat: "ulaw",
			dg:           dg("mulaw", 8000, "mulaw", 8000),
			streamEnc:    "linear16",
			streamRate:   8000,
			wantCount:    1,
			wantContains: "misinterpret",
		},
		{
			name:         "streaming leg rate mismatch",
			socketFormat: "ulaw",
			dg:           dg("mulaw", 8000, "mulaw", 16000),
			streamEnc:    "mulaw",
			streamRate:   8000,
			wantCount:    1,
			wantContains: "playback speed",
		},
		{
			name:         "multiple mismatches stack",
			socketFormat: "slin16",
			dg:           dg("mulaw", 16000, "mulaw", 8000),
			streamEnc:    "linear16",
			streamRate:   16000,
			wantCount:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescribeAlignment(tt.socketFormat, tt.dg, tt.streamEnc, tt.streamRate)
			if len(got) != tt.wantCount {
				t.Fatalf("got %d warnings, want %d: %v", len(got), tt.wantCount, got)
			}
			if tt.wantContains != "" && !strings.Contains(strings.Join(got, "\n"), tt.wantContains) {
				t.Fatalf("warnings %v do not mention %q", got, tt.wantContains)
			}
		})
	}
}
