package provider

import "context"

// Provider is a conversational voice service bound to one phone call at a
// time. Implementations own the connection lifecycle; per-frame failures are
// absorbed and logged rather than surfaced, so only StartSession can fail.
type Provider interface {
	// StartSession opens the connection for callID and performs the
	// configuration handshake. On failure there are no lingering side
	// effects and the error is returned.
	StartSession(ctx context.Context, callID string) error

	// StopSession tears the session down. Idempotent and safe to call
	// concurrently; never fails.
	StopSession()

	// SendAudio forwards one 20 ms telephony frame upstream, converting it
	// to the negotiated input format. Frame-local failures fall back to
	// forwarding the original bytes and are logged, never returned.
	SendAudio(chunk []byte)

	// Speak injects an out-of-band agent utterance. No-ops without an
	// active connection.
	Speak(text string)

	// Ready reports configuration readiness: the provider can accept a
	// StartSession call. It does not imply a live connection.
	Ready() bool

	// Info describes the provider and its capabilities.
	Info() Info
}

// Info is static provider metadata.
type Info struct {
	Name            string
	Type            string
	SupportedCodecs []string
	Model           string
	TTSModel        string
}
