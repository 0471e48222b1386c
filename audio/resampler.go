// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audengine/utils"
)

// window holds the four frames the cubic kernel needs around the read
// position: t-1, t0, t+1, t+2.
type window struct {
	frames [4][]float32
	valid  [4]bool
}

func newWindow(channels int) window {
	var w window
	for i := range w.frames {
		w.frames[i] = make([]float32, channels)
	}
	return w
}

// push drops the oldest frame and appends frame (or an empty slot when
// frame is nil).
func (w *window) push(frame []float32) {
	oldest := w.frames[0]
	copy(w.frames[:], w.frames[1:])
	copy(w.valid[:], w.valid[1:])
	w.frames[3] = oldest
	w.valid[3] = frame != nil
	if frame != nil {
		copy(w.frames[3], frame)
	}
}

func (w *window) sample(c int, alpha float32) float32 {
	y1, y2 := w.frames[1][c], w.frames[2][c]
	y0, y3 := y1, y2
	if w.valid[0] {
		y0 = w.frames[0][c]
	}
	if w.valid[3] {
		y3 = w.frames[3][c]
	}
	return utils.CubicInterpolate(y0, y1, y2, y3, alpha)
}

// Resampler converts a Source to another sample rate using cubic
// interpolation over interleaved frames. Channel count is preserved.
// Downsampling runs every input frame through a one-pole low-pass first.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64
	channels int

	win    window
	primed bool
	pos    float64
	eof    bool

	frame  []float32
	lp     []float32
	lowEnd bool
}

const lowPassAlpha = 0.5

func NewResampler(src Source, dstRate int) *Resampler {
	ch := src.Channels()
	return &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: ch,
		win:      newWindow(ch),
		frame:    make([]float32, ch),
		lp:       make([]float32, ch),
		lowEnd:   src.SampleRate() > dstRate,
	}
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Reset forgets interpolation state, for use after the underlying source
// was rewound.
func (r *Resampler) Reset() {
	r.win = newWindow(r.channels)
	r.primed = false
	r.pos = 0
	r.eof = false
	clear(r.lp)
}

// pull reads one frame from the source. It returns nil once the source is
// drained.
func (r *Resampler) pull(first bool) ([]float32, error) {
	if r.eof {
		return nil, nil
	}
	n, err := r.src.ReadSamples(r.frame)
	if errors.Is(err, io.EOF) {
		r.eof = true
	} else if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if n < r.channels {
		r.eof = true
		return nil, nil
	}

	if r.lowEnd {
		if first {
			copy(r.lp, r.frame)
		}
		for c := range r.channels {
			r.lp[c] = lowPassAlpha*r.frame[c] + (1-lowPassAlpha)*r.lp[c]
		}
		return r.lp, nil
	}
	return r.frame, nil
}

func (r *Resampler) prime() error {
	for i := range 3 {
		f, err := r.pull(i == 0)
		if err != nil {
			return err
		}
		if f == nil {
			if i == 0 {
				return io.EOF
			}
			// Hold the last real frame so the kernel stays defined.
			for ; i < 3; i++ {
				r.win.push(r.win.frames[3])
			}
			break
		}
		r.win.push(f)
	}
	r.primed = true
	return nil
}

// ReadSamples fills dst with frames at the destination rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	want := len(dst) / r.channels
	out := 0
	for out < want {
		for r.pos >= 1 {
			r.pos--
			f, err := r.pull(false)
			if err != nil {
				return out * r.channels, err
			}
			r.win.push(f)
		}
		if !r.win.valid[1] || !r.win.valid[2] {
			return out * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		base := out * r.channels
		for c := range r.channels {
			dst[base+c] = r.win.sample(c, alpha)
		}
		out++
		r.pos += r.step
	}
	return out * r.channels, nil
}
