package deepgram

import (
	"github.com/sirupsen/logrus"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/audio"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/ws"
)

// SendAudio forwards one caller frame to the agent in the negotiated input
// format. The frame's own format follows from its size: one 20 ms telephony
// frame is 160 bytes of mu-law or 320 bytes of linear PCM. Conversion only
// happens when source and target disagree: a mu-law frame on a mu-law
// session ships byte-for-byte unless a rate change forces a
// decode/resample/re-encode round trip.
//
// On conversion failure the already-valid payload is forwarded unconverted;
// a degraded frame beats a hole in the stream.
func (p *Provider) SendAudio(chunk []byte) {
	if p.client == nil || len(chunk) == 0 {
		return
	}

	srcEnc := p.sourceEncoding(len(chunk))

	var payload []byte
	var pcm []byte

	switch p.inputEncoding {
	case audio.EncodingULaw:
		if srcEnc == audio.EncodingLinear16 {
			pcm = chunk
			payload = audio.PCM16ToULaw(chunk)
		} else {
			pcm = audio.ULawToPCM16(chunk)
			payload = chunk
		}
		if p.inputRate != audio.TelephonyRate {
			resampled, err := p.resample(pcm, audio.TelephonyRate, p.inputRate)
			if err != nil {
				p.m.ConversionFallbacks.Inc()
				logrus.Warnf("deepgram: resample to %d Hz failed, forwarding unconverted frame: %v", p.inputRate, err)
			} else {
				pcm = resampled
				payload = audio.PCM16ToULaw(resampled)
			}
		} else {
			p.resampler = nil
		}

	case audio.EncodingLinear16:
		if srcEnc == audio.EncodingULaw {
			payload = audio.ULawToPCM16(chunk)
		} else {
			payload = chunk
		}
		pcm = payload
		if p.inputRate != audio.TelephonyRate {
			resampled, err := p.resample(payload, audio.TelephonyRate, p.inputRate)
			if err != nil {
				p.m.ConversionFallbacks.Inc()
				logrus.Warnf("deepgram: resample to %d Hz failed, forwarding unconverted frame: %v", p.inputRate, err)
			} else {
				pcm = resampled
				payload = resampled
			}
		} else {
			p.resampler = nil
		}

	default:
		p.m.FramesDropped.Inc()
		logrus.WithField("encoding", p.cfg.Deepgram.InputEncoding).Warn("deepgram: unsupported input encoding, dropping frame")
		return
	}

	if rms := audio.RMS(pcm); rms < lowSignalRMS {
		p.m.LowSignalFrames.Inc()
		logrus.WithFields(logrus.Fields{
			"rms":      rms,
			"encoding": p.inputEncoding,
		}).Warn("deepgram: low signal energy, possible codec mismatch")
	}

	p.audioFlowing.Store(true)

	if err := p.client.SendBinary(payload); err != nil {
		if ws.IsExpectedClose(err) {
			logrus.Debugf("deepgram: audio frame skipped, connection closed: %v", err)
		} else {
			logrus.Errorf("deepgram: failed to send audio frame: %v", err)
		}
		return
	}
	p.m.FramesSent.Inc()
}

// sourceEncoding infers a frame's format from the 20 ms framing contract.
// Off-contract sizes fall back to the configured telephony format.
func (p *Provider) sourceEncoding(size int) audio.Encoding {
	switch size {
	case audio.ULawFrameBytes:
		return audio.EncodingULaw
	case audio.Linear16FrameBytes:
		return audio.EncodingLinear16
	default:
		logrus.Debugf("deepgram: unusual audio chunk size %d bytes", size)
		enc, ok := audio.NormalizeEncoding(p.cfg.AudioSocket.Format)
		if !ok {
			return audio.EncodingULaw
		}
		return enc
	}
}
