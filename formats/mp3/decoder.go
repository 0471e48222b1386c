// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audengine/audio"
)

// go-mp3 output is fixed at two channels of 16 bit samples.
const frameSize = 4

// mp3Reader is the part of gomp3.Decoder the decoder uses.
type mp3Reader interface {
	io.ReadSeeker
	SampleRate() int
	Length() int64
}

type Decoder struct {
	r       mp3Reader
	closer  io.Closer
	rate    int
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
	r, err := gomp3.NewDecoder(rs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}
	d.attach(r)
	return nil
}

func (d *Decoder) attach(r mp3Reader) {
	_ = d.Close()
	d.r = r
	d.rate = r.SampleRate()
}

func (d *Decoder) GetData(chunkSize int, looped bool) audio.PCMChunk {
	chunk := audio.PCMChunk{Format: audio.FormatStereo16, SampleRate: d.rate}
	if d.r == nil {
		return chunk
	}
	if chunkSize <= 0 || chunkSize > audio.MaxChunkSize {
		chunkSize = audio.MaxChunkSize
	}
	chunkSize -= chunkSize % frameSize

	if cap(d.scratch) < chunkSize {
		d.scratch = make([]byte, chunkSize)
	}
	buf := d.scratch[:chunkSize]

	n := 0
	rewound := false
	for n < chunkSize {
		m, err := d.r.Read(buf[n:])
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
		if !errors.Is(err, io.EOF) || !looped || rewound {
			break
		}
		if _, err := d.r.Seek(0, io.SeekStart); err != nil {
			break
		}
		rewound = true
	}

	n -= n % frameSize
	chunk.Data = buf[:n]
	chunk.Size = n
	return chunk
}

func (d *Decoder) Seek(offset time.Duration) bool {
	if d.r == nil || offset < 0 {
		return false
	}
	pos := audio.DurationToFrames(offset, d.rate) * frameSize
	if l := d.r.Length(); l >= 0 && pos > l {
		return false
	}
	_, err := d.r.Seek(pos, io.SeekStart)
	return err == nil
}

func (d *Decoder) Format() audio.Format { return audio.FormatStereo16 }
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
