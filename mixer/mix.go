// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"encoding/binary"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/utils"
)

// Mix overwrites dst with the sum of all playing voices. dst holds
// interleaved frames in the mixer's channel layout.
func (m *Mixer) Mix(dst []float32) {
	clear(dst)
	frames := len(dst) / m.channels

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.voices {
		if v.state == audio.StatePlaying {
			m.mixVoice(v, dst, frames)
		}
	}
}

// current returns the buffer under the voice cursor, moving past finished
// buffers. It stops the voice and returns nil once the queue is spent.
func (m *Mixer) current(v *voice) *buffer {
	wraps := 0
	for {
		if v.processed >= len(v.queue) {
			// A second wrap without audio means the queue is silent.
			if v.Looping && len(v.queue) > 0 && wraps == 0 {
				wraps++
				v.processed = 0
				v.cursor = 0
				continue
			}
			v.stop()
			return nil
		}

		b := m.buffers[v.queue[v.processed]]
		if b != nil && v.cursor < float64(b.frames()) {
			return b
		}
		if b != nil {
			v.cursor -= float64(b.frames())
		}
		v.processed++
	}
}

func (m *Mixer) mixVoice(v *voice, dst []float32, frames int) {
	p := m.place(v)
	gain := float32(v.Gain * m.listener.Gain)

	for i := range frames {
		b := m.current(v)
		if b == nil {
			return
		}

		l, r := b.at(v.cursor)
		out := dst[i*m.channels:]
		step := v.Pitch * float64(b.rate) / float64(m.rate)

		switch {
		case b.channels == 1 && m.channels == 1:
			out[0] += l * float32(p.gain)
		case b.channels == 1:
			out[0] += l * float32(p.left)
			out[1] += l * float32(p.right)
		case m.channels == 1:
			out[0] += (l + r) * 0.5 * gain
		default:
			out[0] += l * gain
			out[1] += r * gain
		}

		if b.channels == 1 {
			step *= p.shift
		}
		v.cursor += step
	}
}

// Read mixes len(p) bytes worth of whole frames as signed 16 bit little
// endian PCM. It never blocks and never fails, so it can back a device
// player directly. Only one goroutine may call Read.
func (m *Mixer) Read(p []byte) (int, error) {
	frames := len(p) / (2 * m.channels)
	n := frames * m.channels
	if cap(m.out) < n {
		m.out = make([]float32, n)
	}
	out := m.out[:n]

	m.Mix(out)
	for i, s := range out {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(utils.Float32ToInt16(s)))
	}
	return n * 2, nil
}
