// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"sync"
	"time"

	"github.com/ik5/audengine/audio"
)

// DefaultChunkDuration is how much audio a DecoderStream hands over per
// buffer.
const DefaultChunkDuration = 100 * time.Millisecond

// DecoderStream feeds a SoundStream from a decoder. 8 bit decoders are
// widened to 16 bit.
type DecoderStream struct {
	mu        sync.Mutex
	dec       audio.Decoder
	chunkSize int
	samples   []int16
}

// NewDecoderStream reads chunkSize bytes per call; zero means
// DefaultChunkDuration worth of frames.
func NewDecoderStream(dec audio.Decoder, chunkSize int) *DecoderStream {
	f := dec.Format()
	if chunkSize <= 0 {
		chunkSize = int(audio.DurationToFrames(DefaultChunkDuration, dec.SampleRate())) * f.FrameSize()
	}
	if fs := f.FrameSize(); fs > 0 {
		chunkSize = max(fs, chunkSize-chunkSize%fs)
	}
	return &DecoderStream{dec: dec, chunkSize: chunkSize}
}

func (d *DecoderStream) OnGetData() ([]int16, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	chunk := d.dec.GetData(d.chunkSize, false)
	if chunk.Size == 0 {
		return nil, false
	}
	d.samples = audio.AppendInt16(d.samples[:0], chunk)
	return d.samples, true
}

func (d *DecoderStream) OnSeek(offset time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dec.Seek(offset)
}

func (d *DecoderStream) OnLoop() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dec.Seek(0) {
		return NoLoop
	}
	return 0
}

func (d *DecoderStream) Close() error { return d.dec.Close() }

// Open builds a SoundStream that plays dec. Channels and rate come from
// the decoder; the caller keeps ownership of dec.
func Open(dev Device, dec audio.Decoder, opts Options) (*SoundStream, error) {
	opts.Channels = dec.Format().Channels()
	opts.SampleRate = dec.SampleRate()
	return New(dev, NewDecoderStream(dec, 0), opts)
}

// OpenFile opens path through registry and plays it. The decoder is
// closed together with the stream.
func OpenFile(dev Device, registry *audio.Registry, path string, opts Options) (*SoundStream, error) {
	dec, err := registry.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := Open(dev, dec, opts)
	if err != nil {
		_ = dec.Close()
		return nil, err
	}
	s.onClose = dec.Close
	return s, nil
}
