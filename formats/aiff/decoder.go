// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audengine/audio"
)

// aiffReader is the part of aiff.Decoder the decoder uses.
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// primeFunc returns a reader positioned on the first frame.
type primeFunc func() (aiffReader, error)

type Decoder struct {
	prime  primeFunc
	r      aiffReader
	closer io.Closer
	format audio.Format
	rate   int

	ints    goaudio.IntBuffer
	values  []int
	scratch []byte
}

func New() *Decoder { return &Decoder{} }

func (d *Decoder) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := d.OpenReader(f); err != nil {
		f.Close()
		return err
	}
	d.closer = f
	return nil
}

// OpenReader decodes from rs, which is not closed by Close.
func (d *Decoder) OpenReader(rs io.ReadSeeker) error {
	return d.attach(func() (aiffReader, error) {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		dec := aiff.NewDecoder(rs)
		if !dec.IsValidFile() {
			return nil, ErrNotAiffFile
		}
		dec.ReadInfo()
		if dec.BitDepth != 16 {
			return nil, fmt.Errorf("%d bits: %w", dec.BitDepth, ErrOnlyPCM16bitSupported)
		}
		return dec, nil
	})
}

func (d *Decoder) attach(prime primeFunc) error {
	_ = d.Close()

	r, err := prime()
	if err != nil {
		return err
	}
	f := r.Format()
	if f == nil {
		return ErrNotAiffFile
	}
	if f.NumChannels > 2 {
		return fmt.Errorf("%d channels: %w", f.NumChannels, ErrTooManyChannels)
	}
	format, err := audio.NewFormat(f.NumChannels, 16)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	d.prime = prime
	d.r = r
	d.format = format
	d.rate = f.SampleRate
	d.ints.Format = f
	return nil
}

func (d *Decoder) rewind() bool {
	r, err := d.prime()
	if err != nil {
		return false
	}
	d.r = r
	return true
}

// read fills values with the next samples and returns how many arrived.
func (d *Decoder) read(values []int) int {
	n := 0
	for n < len(values) {
		d.ints.Data = values[n:]
		m, _ := d.r.PCMBuffer(&d.ints)
		if m == 0 {
			break
		}
		n += m
	}
	return n
}

func (d *Decoder) GetData(chunkSize int, looped bool) audio.PCMChunk {
	chunk := audio.PCMChunk{Format: d.format, SampleRate: d.rate}
	if d.r == nil {
		return chunk
	}
	if chunkSize <= 0 || chunkSize > audio.MaxChunkSize {
		chunkSize = audio.MaxChunkSize
	}
	chunkSize -= chunkSize % d.format.FrameSize()

	if cap(d.values) < chunkSize/2 {
		d.values = make([]int, chunkSize/2)
		d.scratch = make([]byte, chunkSize)
	}
	values := d.values[:chunkSize/2]

	n := 0
	rewound := false
	for n < len(values) {
		m := d.read(values[n:])
		n += m
		if m > 0 {
			rewound = false
		}
		// A rewind that yields nothing means the file has no frames.
		if n == len(values) || !looped || rewound || !d.rewind() {
			break
		}
		rewound = true
	}
	n -= n % d.format.Channels()

	out := d.scratch[:n*2]
	for i, v := range values[:n] {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v)))
	}
	chunk.Data = out
	chunk.Size = len(out)
	return chunk
}

func (d *Decoder) Seek(offset time.Duration) bool {
	if d.r == nil || offset < 0 || !d.rewind() {
		return false
	}

	skip := int(audio.DurationToFrames(offset, d.rate)) * d.format.Channels()
	if len(d.values) < 4096 {
		d.values = make([]int, 4096)
		d.scratch = make([]byte, 4096*2)
	}
	trash := d.values[:4096]
	for skip > 0 {
		m := d.read(trash[:min(skip, len(trash))])
		if m == 0 {
			return false
		}
		skip -= m
	}
	return true
}

func (d *Decoder) Format() audio.Format { return d.format }
func (d *Decoder) SampleRate() int      { return d.rate }

func (d *Decoder) Close() error {
	d.r = nil
	d.prime = nil
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
