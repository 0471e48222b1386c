// SPDX-License-Identifier: EPL-2.0

package inject

import (
	"fmt"
	"sync"
	"time"

	"github.com/ik5/audengine/audio"
)

// SilenceSize is the size of the block returned when no data is pending,
// before rounding down to whole frames.
const SilenceSize = 4096

// Injector is an audio.Decoder over pushed PCM. Data returned by GetData
// stays valid until the next GetData.
type Injector struct {
	format audio.Format
	rate   int

	mu      sync.Mutex
	front   []byte
	back    []byte
	silence []byte
	closed  bool
}

var _ audio.Decoder = (*Injector)(nil)

func New(format audio.Format, rate int) (*Injector, error) {
	fs := format.FrameSize()
	if fs == 0 || rate <= 0 {
		return nil, fmt.Errorf("%v at %d Hz: %w", format, rate, ErrFormat)
	}

	silence := make([]byte, SilenceSize-SilenceSize%fs)
	if format.BitDepth() == 8 {
		for i := range silence {
			silence[i] = 0x80
		}
	}
	return &Injector{format: format, rate: rate, silence: silence}, nil
}

// UpdateBuffer queues data for the next GetData. A trailing partial frame
// waits for the rest of its bytes.
func (i *Injector) UpdateBuffer(data []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return
	}
	i.back = append(i.back, data...)
}

// Pending reports the number of queued bytes.
func (i *Injector) Pending() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.back)
}

// Open resets the injector; the path is ignored.
func (i *Injector) Open(string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.front = i.front[:0]
	i.back = i.back[:0]
	i.closed = false
	return nil
}

// GetData swaps the buffers and returns everything pushed since the last
// call, or a block of silence. chunkSize and looped are ignored.
func (i *Injector) GetData(int, bool) audio.PCMChunk {
	i.mu.Lock()
	defer i.mu.Unlock()

	chunk := audio.PCMChunk{Format: i.format, SampleRate: i.rate}
	fs := i.format.FrameSize()
	whole := len(i.back) - len(i.back)%fs

	if i.closed || whole == 0 {
		chunk.Data = i.silence
		chunk.Size = len(i.silence)
		return chunk
	}

	rest := i.back[whole:]
	i.front, i.back = i.back[:whole], append(i.front[:0], rest...)
	chunk.Data = i.front
	chunk.Size = len(i.front)
	return chunk
}

// Seek accepts only the start, which is where a live feed always is.
func (i *Injector) Seek(offset time.Duration) bool {
	return offset == 0
}

func (i *Injector) Format() audio.Format { return i.format }
func (i *Injector) SampleRate() int      { return i.rate }

// Close drops pending data. Later reads return silence.
func (i *Injector) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	i.front = nil
	i.back = nil
	return nil
}
