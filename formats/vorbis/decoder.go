// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/utils"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader the decoder uses.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
	SetPosition(int64) error
	Length() int64
}

type Decoder struct {
	r      oggReader
	closer io.Closer
	format audio.Format
	rate   int

	floats  []float32
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
	r, err := oggvorbis.NewReader(rs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	return d.attach(r)
}

func (d *Decoder) attach(r oggReader) error {
	_ = d.Close()

	if r.Channels() > 2 {
		return fmt.Errorf("%d channels: %w", r.Channels(), ErrTooManyChannels)
	}
	format, err := audio.NewFormat(r.Channels(), 16)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	d.r = r
	d.format = format
	d.rate = r.SampleRate()
	return nil
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

	values := chunkSize / 2
	if cap(d.floats) < values {
		d.floats = make([]float32, values)
		d.scratch = make([]byte, chunkSize)
	}

	n := 0
	rewound := false
	for n < values {
		m, err := d.r.Read(d.floats[n:values])
		n += m
		if m > 0 {
			rewound = false
		}
		if err == nil {
			if m == 0 {
				break
			}
			continue
		}
		// A rewind that yields nothing means the stream is empty.
		if !errors.Is(err, io.EOF) || !looped || rewound {
			break
		}
		if d.r.SetPosition(0) != nil {
			break
		}
		rewound = true
	}

	n -= n % d.format.Channels()
	out := d.scratch[:n*2]
	for i, v := range d.floats[:n] {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(utils.Float32ToInt16(v)))
	}
	chunk.Data = out
	chunk.Size = len(out)
	return chunk
}

func (d *Decoder) Seek(offset time.Duration) bool {
	if d.r == nil || offset < 0 {
		return false
	}
	frame := audio.DurationToFrames(offset, d.rate)
	if l := d.r.Length(); l > 0 && frame > l {
		return false
	}
	return d.r.SetPosition(frame) == nil
}

func (d *Decoder) Format() audio.Format { return d.format }
func (d *Decoder) SampleRate() int      { return d.rate }

func (d *Decoder) Close() error {
	d.r = nil
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
