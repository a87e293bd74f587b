package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"
)

var ErrStreamStopped = errors.New("stream stopped")

// Burst is one contiguous agent utterance as a beep.Streamer. Audio chunks
// are appended as they arrive off the wire while the playback side drains
// the buffer, so Stream never blocks: an empty buffer on a live burst
// yields (0, true) and beep polls again.
type Burst struct {
	mu  sync.Mutex
	buf *bytes.Buffer
	eos bool
	err error
}

func NewBurst() *Burst {
	return &Burst{
		buf: bytes.NewBuffer(make([]byte, 0, 8192)),
	}
}

// Append adds little-endian 16-bit mono PCM to the tail of the burst.
// Appends after Close or Cancel are dropped.
func (b *Burst) Append(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.eos || b.err != nil {
		return
	}
	b.buf.Write(pcm)
}

// Close marks the burst complete. Playback drains what is buffered and
// then the burst reports end of stream.
func (b *Burst) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eos = true
	if b.err == nil {
		b.err = io.EOF
	}
	return nil
}

// Cancel drops the burst immediately, discarding unplayed audio.
func (b *Burst) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eos = true
	b.buf.Reset()
	if b.err == nil {
		b.err = ErrStreamStopped
	}
}

func (b *Burst) Stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err == ErrStreamStopped {
		return 0, false
	}

	if b.buf.Len() == 0 {
		if b.eos {
			return 0, false
		}
		return 0, true
	}

	want := len(samples) * 2
	if got := b.buf.Len(); got < want {
		want = got
	}
	chunk := make([]byte, want)
	n, err := b.buf.Read(chunk)
	if err != nil && err != io.EOF {
		b.err = err
		logrus.Errorf("stream: burst buffer read: %v", err)
		return 0, false
	}

	frames := n / 2
	for i := 0; i < frames; i++ {
		v := float64(int16(binary.LittleEndian.Uint16(chunk[i*2:]))) / 32768.0
		samples[i][0] = v
		samples[i][1] = v
	}
	return frames, true
}

func (b *Burst) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == io.EOF {
		return nil
	}
	return b.err
}

// Queue plays bursts back to back. An empty queue keeps the playback line
// open with silence instead of ending it, so the next utterance starts
// without reinitializing the output.
type Queue struct {
	mu      sync.Mutex
	current beep.Streamer
	pending []beep.Streamer
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(s beep.Streamer) {
	q.mu.Lock()
	q.pending = append(q.pending, s)
	q.mu.Unlock()
}

// CancelCurrent drops the burst being played, for barge-in.
func (q *Queue) CancelCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if b, ok := q.current.(*Burst); ok {
		b.Cancel()
	}
}

func (q *Queue) Stream(samples [][2]float64) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.current == nil {
			if len(q.pending) == 0 {
				return 0, true
			}
			q.current = q.pending[0]
			q.pending = q.pending[1:]
		}

		n, ok := q.current.Stream(samples)
		if !ok {
			q.current = nil
			continue
		}
		return n, ok
	}
}

func (q *Queue) Err() error { return nil }
