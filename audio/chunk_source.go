// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"io"

	"github.com/ik5/audengine/utils"
)

// ChunkSource exposes a Decoder as a float32 Source so decoded files can be
// fed through the Resampler and the channel mixers.
type ChunkSource struct {
	dec     Decoder
	pending []float32
	off     int
}

func NewChunkSource(dec Decoder) *ChunkSource {
	return &ChunkSource{dec: dec}
}

func (s *ChunkSource) SampleRate() int { return s.dec.SampleRate() }
func (s *ChunkSource) Channels() int   { return s.dec.Format().Channels() }
func (s *ChunkSource) BufSize() int    { return 4096 }
func (s *ChunkSource) Close() error    { return s.dec.Close() }

func (s *ChunkSource) ReadSamples(dst []float32) (int, error) {
	written := 0
	for written < len(dst) {
		if s.off >= len(s.pending) {
			bytesPerSample := s.dec.Format().BitDepth() / 8
			if bytesPerSample == 0 {
				return written, io.EOF
			}
			want := (len(dst) - written) * bytesPerSample
			if fs := s.dec.Format().FrameSize(); want%fs != 0 {
				want += fs - want%fs
			}
			chunk := s.dec.GetData(want, false)
			if chunk.Size == 0 {
				if written == 0 {
					return 0, io.EOF
				}
				return written, nil
			}
			s.pending = AppendFloat32(s.pending[:0], chunk)
			s.off = 0
		}
		n := copy(dst[written:], s.pending[s.off:])
		s.off += n
		written += n
	}
	return written, nil
}

// AppendFloat32 converts the samples of chunk to [-1,1] floats and appends
// them to dst.
func AppendFloat32(dst []float32, chunk PCMChunk) []float32 {
	data := chunk.Data[:chunk.Size]
	switch chunk.Format.BitDepth() {
	case 8:
		for _, b := range data {
			dst = append(dst, utils.Uint8ToFloat32(b))
		}
	case 16:
		for i := 0; i+1 < len(data); i += 2 {
			dst = append(dst, utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(data[i:]))))
		}
	}
	return dst
}

// AppendInt16 converts the samples of chunk to signed 16 bit and appends
// them to dst. 8 bit unsigned samples are re-centred and scaled.
func AppendInt16(dst []int16, chunk PCMChunk) []int16 {
	data := chunk.Data[:chunk.Size]
	switch chunk.Format.BitDepth() {
	case 8:
		for _, b := range data {
			dst = append(dst, utils.Uint8ToInt16(b))
		}
	case 16:
		for i := 0; i+1 < len(data); i += 2 {
			dst = append(dst, int16(binary.LittleEndian.Uint16(data[i:])))
		}
	}
	return dst
}

// Int16Bytes encodes samples as little endian bytes into dst, growing it
// when needed.
func Int16Bytes(dst []byte, samples []int16) []byte {
	need := len(samples) * 2
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(s))
	}
	return dst
}
