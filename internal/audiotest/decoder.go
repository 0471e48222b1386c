// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync"
	"time"

	"github.com/ik5/audengine/audio"
)

// MemDecoder is an audio.Decoder over a PCM blob held in memory. Open
// ignores its path. It counts calls so tests can assert on decoder traffic.
type MemDecoder struct {
	mu     sync.Mutex
	pcm    audio.PCMData
	pos    int
	buf    []byte
	closed bool

	Opens   int
	Reads   int
	Seeks   []time.Duration
	OpenErr error
}

func NewMemDecoder(pcm audio.PCMData) *MemDecoder {
	return &MemDecoder{pcm: pcm}
}

// NewMemDecoder16 wraps interleaved 16 bit samples.
func NewMemDecoder16(rate, channels int, samples []int16) *MemDecoder {
	f := audio.FormatMono16
	if channels == 2 {
		f = audio.FormatStereo16
	}
	return NewMemDecoder(audio.PCMData{
		Format:     f,
		SampleRate: rate,
		Data:       audio.Int16Bytes(nil, samples),
	})
}

func (d *MemDecoder) Open(string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Opens++
	if d.OpenErr != nil {
		return d.OpenErr
	}
	d.pos = 0
	d.closed = false
	return nil
}

func (d *MemDecoder) GetData(chunkSize int, looped bool) audio.PCMChunk {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Reads++

	chunk := audio.PCMChunk{Format: d.pcm.Format, SampleRate: d.pcm.SampleRate}
	if d.closed || len(d.pcm.Data) == 0 {
		return chunk
	}
	if chunkSize <= 0 || chunkSize > audio.MaxChunkSize {
		chunkSize = audio.MaxChunkSize
	}
	fs := d.pcm.Format.FrameSize()
	chunkSize -= chunkSize % fs

	d.buf = d.buf[:0]
	for len(d.buf) < chunkSize {
		if d.pos >= len(d.pcm.Data) {
			if !looped {
				break
			}
			d.pos = 0
		}
		n := min(chunkSize-len(d.buf), len(d.pcm.Data)-d.pos)
		d.buf = append(d.buf, d.pcm.Data[d.pos:d.pos+n]...)
		d.pos += n
	}
	chunk.Data = d.buf
	chunk.Size = len(d.buf)
	return chunk
}

func (d *MemDecoder) Seek(offset time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Seeks = append(d.Seeks, offset)

	pos := int(audio.DurationToFrames(offset, d.pcm.SampleRate)) * d.pcm.Format.FrameSize()
	if pos > len(d.pcm.Data) {
		return false
	}
	d.pos = pos
	return true
}

func (d *MemDecoder) Format() audio.Format { return d.pcm.Format }
func (d *MemDecoder) SampleRate() int      { return d.pcm.SampleRate }

func (d *MemDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Stats returns the read count and the seeks seen so far.
func (d *MemDecoder) Stats() (reads int, seeks []time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Reads, append([]time.Duration(nil), d.Seeks...)
}

// Closed reports whether Close was called since the last Open.
func (d *MemDecoder) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
