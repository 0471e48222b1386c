// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer downmixes any channel count to mono by averaging.
type MonoMixer struct {
	src     Source
	scratch []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{src: src}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with one averaged sample per source frame.
func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	ch := m.src.Channels()
	if ch == 1 {
		return m.src.ReadSamples(dst)
	}

	want := len(dst) * ch
	if cap(m.scratch) < want {
		m.scratch = make([]float32, want)
	}
	in := m.scratch[:want]

	n, err := m.src.ReadSamples(in)
	frames := n / ch
	scale := 1 / float32(ch)
	for f := range frames {
		var sum float32
		for _, s := range in[f*ch : (f+1)*ch] {
			sum += s
		}
		dst[f] = sum * scale
	}
	return frames, err
}

// StereoMixer upmixes a mono source to stereo by duplicating each sample.
// Stereo sources pass through untouched.
type StereoMixer struct {
	src Source
	tmp []float32
}

func NewStereoMixer(src Source) *StereoMixer {
	return &StereoMixer{src: src}
}

func (m *StereoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *StereoMixer) Channels() int   { return 2 }
func (m *StereoMixer) BufSize() int    { return m.src.BufSize() }
func (m *StereoMixer) Close() error    { return m.src.Close() }

func (m *StereoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%2 != 0 {
		return 0, ErrInvalidDstSize
	}
	if m.src.Channels() == 2 {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / 2
	if cap(m.tmp) < frames {
		m.tmp = make([]float32, frames)
	}
	m.tmp = m.tmp[:frames]

	n, err := m.src.ReadSamples(m.tmp)
	for i := range n {
		dst[2*i] = m.tmp[i]
		dst[2*i+1] = m.tmp[i]
	}
	return n * 2, err
}
