package audio

// Encoding identifies an audio wire encoding.
type Encoding string

const (
	EncodingULaw     Encoding = "ulaw"
	EncodingLinear16 Encoding = "linear16"
)

// Direction marks which way a frame travels relative to the agent service.
type Direction int

const (
	DirectionOutbound Direction = iota // caller -> agent
	DirectionInbound                   // agent -> caller
)

// Telephony frame contract: AudioSocket delivers audio in fixed 20 ms frames.
const (
	TelephonyRate      = 8000
	ULawFrameBytes     = 160 // 20 ms of mono μ-law at 8 kHz
	Linear16FrameBytes = 320 // 20 ms of mono 16-bit PCM at 8 kHz
)

// Frame is one chunk of raw audio plus the format it claims to be in.
type Frame struct {
	Payload    []byte
	Encoding   Encoding
	SampleRate int
	Direction  Direction
}

// NormalizeEncoding maps the encoding aliases that show up in provider
// configs onto the canonical tags. The second return reports whether the
// name was recognized at all.
func NormalizeEncoding(name string) (Encoding, bool) {
	switch name {
	case "ulaw", "mulaw", "g711_ulaw", "mu-law":
		return EncodingULaw, true
	case "linear16", "slin16", "pcm16":
		return EncodingLinear16, true
	default:
		return "", false
	}
}
