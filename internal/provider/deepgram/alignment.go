package deepgram

import (
	"fmt"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/audio"
	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/config"
)

// DescribeAlignment cross-checks the telephony leg, the agent formats and
// the streaming leg, and returns one human-readable warning per mismatch.
// An empty result means the configuration is fully consistent. Pure and
// side-effect free, so it can run at startup before any call exists.
func DescribeAlignment(audiosocketFormat string, dg config.DeepgramConfig, streamingEncoding string, streamingRate int) []string {
	var warnings []string

	inEnc, _ := audio.NormalizeEncoding(dg.InputEncoding)
	sockEnc, sockKnown := audio.NormalizeEncoding(audiosocketFormat)
	outEnc, _ := audio.NormalizeEncoding(dg.OutputEncoding)
	streamEnc, _ := audio.NormalizeEncoding(streamingEncoding)

	if inEnc == audio.EncodingULaw && sockKnown && sockEnc == audio.EncodingLinear16 {
		warnings = append(warnings, fmt.Sprintf(
			"agent input is %s but the telephony leg delivers %s; linear frames re-encoded as mu-law lose precision and may decode as near-silence",
			dg.InputEncoding, audiosocketFormat))
	}

	if inEnc == audio.EncodingULaw && dg.InputSampleRate != audio.TelephonyRate {
		warnings = append(warnings, fmt.Sprintf(
			"mu-law transport is defined at %d Hz but input_sample_rate is %d; mu-law frames cannot carry another rate",
			audio.TelephonyRate, dg.InputSampleRate))
	}

	if inEnc == audio.EncodingLinear16 && sockKnown && sockEnc != audio.EncodingLinear16 {
		warnings = append(warnings, fmt.Sprintf(
			"agent input is %s but the telephony leg delivers %s; every caller frame will be transcoded",
			dg.InputEncoding, audiosocketFormat))
	}

	if streamingEncoding != "" && streamEnc != outEnc {
		warnings = append(warnings, fmt.Sprintf(
			"streaming leg advertises %s but the agent produces %s; downstream playback will misinterpret the samples",
			streamingEncoding, dg.OutputEncoding))
	}

	if streamingRate != 0 && streamingRate != dg.OutputSampleRate {
		warnings = append(warnings, fmt.Sprintf(
			"streaming leg advertises %d Hz but the agent produces %d Hz; playback speed will be wrong",
			streamingRate, dg.OutputSampleRate))
	}

	return warnings
}
