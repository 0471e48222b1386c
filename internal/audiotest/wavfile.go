// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WAV builds a canonical RIFF/WAVE file around raw PCM data. Extra chunks
// are written between "fmt " and "data" to exercise chunk scanning.
func WAV(rate, channels, bits int, data []byte, extra ...Chunk) []byte {
	blockAlign := channels * bits / 8
	fmtBody := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtBody[0:], 1)
	binary.LittleEndian.PutUint16(fmtBody[2:], uint16(channels))
	binary.LittleEndian.PutUint32(fmtBody[4:], uint32(rate))
	binary.LittleEndian.PutUint32(fmtBody[8:], uint32(rate*blockAlign))
	binary.LittleEndian.PutUint16(fmtBody[12:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(fmtBody[14:], uint16(bits))

	chunks := append([]Chunk{{ID: "fmt ", Body: fmtBody}}, extra...)
	chunks = append(chunks, Chunk{ID: "data", Body: data})

	var body []byte
	body = append(body, "WAVE"...)
	for _, c := range chunks {
		body = c.append(body)
	}

	out := make([]byte, 0, len(body)+8)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}

// WAV16 builds a 16 bit WAV file from interleaved samples.
func WAV16(rate, channels int, samples []int16) []byte {
	data := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		data = binary.LittleEndian.AppendUint16(data, uint16(s))
	}
	return WAV(rate, channels, 16, data)
}

// Chunk is a RIFF sub-chunk.
type Chunk struct {
	ID   string
	Body []byte
}

func (c Chunk) append(b []byte) []byte {
	b = append(b, c.ID...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(c.Body)))
	b = append(b, c.Body...)
	if len(c.Body)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

// WriteFile stores data under the test's temp dir and returns the path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// Ramp16 returns frames*channels samples counting up from zero, so any
// sample identifies its position in the stream.
func Ramp16(frames, channels int) []int16 {
	out := make([]int16, frames*channels)
	for i := range out {
		out[i] = int16(i)
	}
	return out
}
