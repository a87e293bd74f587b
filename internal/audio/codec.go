package audio

import (
	"encoding/binary"
	"math"

	"github.com/zaf/g711"
)

// ULawToPCM16 expands 8-bit μ-law samples to little-endian 16-bit PCM.
func ULawToPCM16(in []byte) []byte {
	return g711.DecodeUlaw(in)
}

// PCM16ToULaw compresses little-endian 16-bit PCM to 8-bit μ-law.
func PCM16ToULaw(in []byte) []byte {
	return g711.EncodeUlaw(in)
}

// RMS returns the root-mean-square energy of little-endian 16-bit PCM.
// A frame of digital silence yields 0.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(n))
}
