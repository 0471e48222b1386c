// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audengine/audio"
)

const wavFormatPCM = 1

// Decoder reads PCM from the data chunk of a WAV file. It is not safe for
// concurrent use.
type Decoder struct {
	r      io.ReadSeeker
	closer io.Closer

	format audio.Format
	rate   int

	dataOff int64
	dataLen int64
	pos     int64

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

// OpenReader decodes from an already opened stream. The stream is not
// closed by Close.
func (d *Decoder) OpenReader(rs io.ReadSeeker) error {
	_ = d.Close()

	if err := checkMagic(rs); err != nil {
		return err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}

	hdr := gowav.NewDecoder(rs)
	hdr.ReadInfo()
	if err := hdr.Err(); err != nil || hdr.NumChans == 0 {
		return fmt.Errorf("reading fmt chunk: %w", ErrNotWavFile)
	}
	if hdr.WavAudioFormat != wavFormatPCM {
		return fmt.Errorf("format tag %d: %w", hdr.WavAudioFormat, ErrOnlyPCMSupported)
	}
	if hdr.NumChans > 2 {
		return fmt.Errorf("%d channels: %w", hdr.NumChans, ErrTooManyChannels)
	}
	if hdr.BitDepth != 8 && hdr.BitDepth != 16 {
		return fmt.Errorf("%d bits: %w", hdr.BitDepth, ErrUnsupportedBitDepth)
	}

	format, err := audio.NewFormat(int(hdr.NumChans), int(hdr.BitDepth))
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	off, size, err := findData(rs)
	if err != nil {
		return err
	}
	size -= size % int64(format.FrameSize())

	d.r = rs
	d.format = format
	d.rate = int(hdr.SampleRate)
	d.dataOff = off
	d.dataLen = size
	d.pos = 0
	return nil
}

func checkMagic(r io.Reader) error {
	var magic [12]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("reading RIFF header: %w", ErrNotWavFile)
	}
	if !bytes.Equal(magic[0:4], []byte("RIFF")) || !bytes.Equal(magic[8:12], []byte("WAVE")) {
		return ErrNotWavFile
	}
	return nil
}

// findData walks the RIFF chunks after the WAVE tag and leaves rs at the
// first byte of the data chunk.
func findData(rs io.ReadSeeker) (offset, size int64, err error) {
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("%w", err)
	}

	pos := int64(12)
	var hdr [8]byte
	for pos+8 <= end {
		if _, err := rs.Seek(pos, io.SeekStart); err != nil {
			return 0, 0, fmt.Errorf("%w", err)
		}
		if _, err := io.ReadFull(rs, hdr[:]); err != nil {
			break
		}
		n := int64(binary.LittleEndian.Uint32(hdr[4:]))
		pos += 8

		if string(hdr[:4]) == "data" {
			// Streaming writers leave the size unset; trust the file length.
			return pos, min(n, end-pos), nil
		}
		pos += n + n&1
	}
	return 0, 0, ErrNoDataChunk
}

func (d *Decoder) GetData(chunkSize int, looped bool) audio.PCMChunk {
	chunk := audio.PCMChunk{Format: d.format, SampleRate: d.rate}
	if d.r == nil || d.dataLen == 0 {
		return chunk
	}

	if chunkSize <= 0 || chunkSize > audio.MaxChunkSize {
		chunkSize = audio.MaxChunkSize
	}
	fs := d.format.FrameSize()
	chunkSize -= chunkSize % fs
	if chunkSize == 0 {
		return chunk
	}

	if cap(d.scratch) < chunkSize {
		d.scratch = make([]byte, chunkSize)
	}
	buf := d.scratch[:chunkSize]

	n := 0
	for n < chunkSize {
		left := d.dataLen - d.pos
		if left <= 0 {
			if !looped || !d.rewind() {
				break
			}
			continue
		}

		m, err := io.ReadFull(d.r, buf[n:n+int(min(int64(chunkSize-n), left))])
		n += m
		d.pos += int64(m)
		if err != nil {
			// The header promised more than the file holds.
			partial := m % fs
			n -= partial
			d.pos -= int64(partial)
			d.dataLen = d.pos
		}
	}

	chunk.Data = buf[:n]
	chunk.Size = n
	return chunk
}

func (d *Decoder) rewind() bool {
	if d.dataLen == 0 {
		return false
	}
	if _, err := d.r.Seek(d.dataOff, io.SeekStart); err != nil {
		return false
	}
	d.pos = 0
	return true
}

func (d *Decoder) Seek(offset time.Duration) bool {
	if d.r == nil || offset < 0 {
		return false
	}
	pos := audio.DurationToFrames(offset, d.rate) * int64(d.format.FrameSize())
	if pos > d.dataLen {
		return false
	}
	if _, err := d.r.Seek(d.dataOff+pos, io.SeekStart); err != nil {
		return false
	}
	d.pos = pos
	return true
}

func (d *Decoder) Format() audio.Format { return d.format }
func (d *Decoder) SampleRate() int      { return d.rate }

// Duration is the playback length of the data chunk.
func (d *Decoder) Duration() time.Duration {
	fs := d.format.FrameSize()
	if fs == 0 {
		return 0
	}
	return audio.FramesToDuration(int(d.dataLen)/fs, d.rate)
}

func (d *Decoder) Close() error {
	d.r = nil
	d.dataLen = 0
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
