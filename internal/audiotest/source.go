// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the package tests: synthetic
// sources, an in-memory decoder and WAV file builders.
package audiotest

import (
	"io"
	"math"
)

// ToneSource generates a fixed number of frames from a waveform function.
// It satisfies audio.Source.
type ToneSource struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     func(frame, channel int) float32
}

func NewToneSource(rate, channels, frames int, wave func(frame, channel int) float32) *ToneSource {
	return &ToneSource{rate: rate, channels: channels, frames: frames, wave: wave}
}

func NewSilence(rate, channels, frames int) *ToneSource {
	return NewConstant(rate, channels, frames, 0)
}

func NewConstant(rate, channels, frames int, v float32) *ToneSource {
	return NewToneSource(rate, channels, frames, func(int, int) float32 { return v })
}

func NewSine(rate, channels, frames int, freq float64) *ToneSource {
	return NewToneSource(rate, channels, frames, func(f, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(f) / float64(rate)))
	})
}

func (s *ToneSource) SampleRate() int { return s.rate }
func (s *ToneSource) Channels() int   { return s.channels }
func (s *ToneSource) BufSize() int    { return 4096 }
func (s *ToneSource) Close() error    { return nil }

// Rewind restarts generation from frame zero.
func (s *ToneSource) Rewind() { s.pos = 0 }

func (s *ToneSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}
	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for c := range s.channels {
			dst[f*s.channels+c] = s.wave(s.pos+f, c)
		}
	}
	s.pos += n
	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
