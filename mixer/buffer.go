// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"time"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/utils"
)

type buffer struct {
	channels int
	rate     int
	samples  []float32
}

func (b *buffer) frames() int {
	if b.channels == 0 {
		return 0
	}
	return len(b.samples) / b.channels
}

func (b *buffer) duration() time.Duration {
	return audio.FramesToDuration(b.frames(), b.rate)
}

func (b *buffer) sample(frame, c, last int) float32 {
	frame = max(0, min(frame, last))
	return b.samples[frame*b.channels+c]
}

// at interpolates the frame at pos. Mono buffers return the same value
// twice.
func (b *buffer) at(pos float64) (l, r float32) {
	i := int(pos)
	alpha := float32(pos - float64(i))
	last := b.frames() - 1

	ch := func(c int) float32 {
		if alpha == 0 {
			return b.sample(i, c, last)
		}
		return utils.CubicInterpolate(
			b.sample(i-1, c, last), b.sample(i, c, last),
			b.sample(i+1, c, last), b.sample(i+2, c, last), alpha)
	}

	l = ch(0)
	if b.channels == 1 {
		return l, l
	}
	return l, ch(1)
}

// GenBuffer creates an empty buffer and returns its id.
func (m *Mixer) GenBuffer() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastBuffer++
	m.buffers[m.lastBuffer] = &buffer{}
	return m.lastBuffer
}

// BufferData replaces the contents of buffer id. Buffers queued on a voice
// cannot be refilled.
func (m *Mixer) BufferData(id int32, format audio.Format, rate int, data []byte) error {
	if format.FrameSize() == 0 || rate <= 0 {
		return fmt.Errorf("%v at %d Hz: %w", format, rate, ErrInvalidFormat)
	}
	if len(data)%format.FrameSize() != 0 {
		return fmt.Errorf("%d bytes of %v: %w", len(data), format, ErrInvalidFormat)
	}

	chunk := audio.PCMChunk{Format: format, SampleRate: rate, Size: len(data), Data: data}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buffers[id]
	if !ok {
		return fmt.Errorf("buffer %d: %w", id, ErrUnknownBuffer)
	}
	if m.queuedAnywhere(id) {
		return fmt.Errorf("buffer %d: %w", id, ErrBufferInUse)
	}

	b.channels = format.Channels()
	b.rate = rate
	b.samples = audio.AppendFloat32(b.samples[:0], chunk)
	return nil
}

// DeleteBuffer releases buffer id. It fails while any voice still queues
// the buffer.
func (m *Mixer) DeleteBuffer(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buffers[id]; !ok {
		return fmt.Errorf("buffer %d: %w", id, ErrUnknownBuffer)
	}
	if m.queuedAnywhere(id) {
		return fmt.Errorf("buffer %d: %w", id, ErrBufferInUse)
	}
	delete(m.buffers, id)
	return nil
}

// BufferDuration reports the playback length of buffer id.
func (m *Mixer) BufferDuration(id int32) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buffers[id]
	if !ok {
		return 0, fmt.Errorf("buffer %d: %w", id, ErrUnknownBuffer)
	}
	return b.duration(), nil
}

func (m *Mixer) queuedAnywhere(id int32) bool {
	for _, v := range m.voices {
		for _, q := range v.queue {
			if q == id {
				return true
			}
		}
	}
	return false
}
