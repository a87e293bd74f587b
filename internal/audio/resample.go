package audio

import (
	"encoding/binary"
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resampler converts mono 16-bit PCM between sample rates. Filter state is
// carried across Process calls so that consecutive 20 ms chunks of one call
// resample continuously, without boundary artifacts.
//
// A Resampler is bound to one (from, to) rate pair and one session; it is not
// safe for concurrent use.
type Resampler struct {
	FromRate int
	ToRate   int

	rs resampling.Resampler
}

// NewResampler creates a stateful converter from one sample rate to another.
func NewResampler(fromRate, toRate int) (*Resampler, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("audio: invalid resample rates %d -> %d", fromRate, toRate)
	}
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("audio: create resampler: %w", err)
	}
	return &Resampler{FromRate: fromRate, ToRate: toRate, rs: rs}, nil
}

// Process resamples one chunk of little-endian 16-bit PCM.
func (r *Resampler) Process(pcm []byte) ([]byte, error) {
	frames := len(pcm) / 2
	if frames == 0 {
		return nil, nil
	}

	input := make([]float64, frames)
	for i := 0; i < frames; i++ {
		input[i] = float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768.0
	}

	output, err := r.rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("audio: resample %d -> %d: %w", r.FromRate, r.ToRate, err)
	}

	out := make([]byte, len(output)*2)
	for i, v := range output {
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*32767)))
	}
	return out, nil
}
