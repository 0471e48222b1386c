// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ik5/audengine/audio"
)

// mockMP3 serves already decoded stereo PCM, a few bytes per call.
type mockMP3 struct {
	*bytes.Reader
	rate     int
	length   int64
	noSeek   bool
	maxChunk int
}

func newMock(rate int, pcm []byte) *mockMP3 {
	return &mockMP3{Reader: bytes.NewReader(pcm), rate: rate, length: int64(len(pcm)), maxChunk: 10}
}

func (m *mockMP3) SampleRate() int { return m.rate }
func (m *mockMP3) Length() int64   { return m.length }

func (m *mockMP3) Read(p []byte) (int, error) {
	return m.Reader.Read(p[:min(len(p), m.maxChunk)])
}

func (m *mockMP3) Seek(off int64, whence int) (int64, error) {
	if m.noSeek {
		return 0, errors.New("not seekable")
	}
	return m.Reader.Seek(off, whence)
}

func stereoRamp(frames int) []byte {
	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = int16(i)
	}
	return audio.Int16Bytes(nil, samples)
}

func TestDecoder_AlwaysStereo16(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{22050, 44100, 48000} {
		d := New()
		d.attach(newMock(rate, stereoRamp(8)))
		if d.Format() != audio.FormatStereo16 || d.SampleRate() != rate {
			t.Errorf("got %v %d Hz, want stereo16 %d Hz", d.Format(), d.SampleRate(), rate)
		}
		chunk := d.GetData(0, false)
		if chunk.Size != 32 || chunk.SampleRate != rate {
			t.Errorf("chunk %d bytes at %d Hz", chunk.Size, chunk.SampleRate)
		}
	}
}

func TestDecoder_ChunksPreserveOrder(t *testing.T) {
	t.Parallel()

	pcm := stereoRamp(100)
	d := New()
	d.attach(newMock(44100, pcm))

	var got []byte
	for {
		chunk := d.GetData(48, false)
		if chunk.Size == 0 {
			break
		}
		if chunk.Size%4 != 0 {
			t.Fatalf("chunk of %d bytes is not whole frames", chunk.Size)
		}
		got = append(got, chunk.Data[:chunk.Size]...)
	}
	if !bytes.Equal(got, pcm) {
		t.Error("decoded stream differs from source")
	}
}

func TestDecoder_LoopedWraps(t *testing.T) {
	t.Parallel()

	pcm := stereoRamp(3)
	d := New()
	d.attach(newMock(44100, pcm))

	chunk := d.GetData(40, true)
	if chunk.Size != 40 {
		t.Fatalf("size = %d, want 40", chunk.Size)
	}
	for i := range 40 {
		if chunk.Data[i] != pcm[i%len(pcm)] {
			t.Fatalf("byte %d = %d, want %d", i, chunk.Data[i], pcm[i%len(pcm)])
		}
	}

	stuck := newMock(44100, pcm)
	stuck.noSeek = true
	d.attach(stuck)
	if chunk := d.GetData(40, true); chunk.Size != len(pcm) {
		t.Errorf("unseekable looped stream returned %d bytes, want %d", chunk.Size, len(pcm))
	}
}

func TestDecoder_Seek(t *testing.T) {
	t.Parallel()

	pcm := stereoRamp(1000)
	d := New()
	d.attach(newMock(1000, pcm))

	if !d.Seek(100 * time.Millisecond) {
		t.Fatal("Seek failed")
	}
	got := audio.AppendInt16(nil, d.GetData(4, false))
	if got[0] != 200 || got[1] != 201 {
		t.Errorf("frame after seek = %v, want [200 201]", got)
	}
	if d.Seek(5 * time.Second) {
		t.Error("Seek past the end succeeded")
	}

	unknown := newMock(1000, pcm)
	unknown.length = -1
	d.attach(unknown)
	if !d.Seek(time.Second) {
		t.Error("Seek with unknown length should be attempted")
	}
}

func TestDecoder_OpenReaderRejectsGarbage(t *testing.T) {
	t.Parallel()

	err := New().OpenReader(bytes.NewReader(nil))
	if !errors.Is(err, ErrNotMP3File) {
		t.Errorf("error = %v, want ErrNotMP3File", err)
	}
}

func TestDecoder_UnopenedAndClosed(t *testing.T) {
	t.Parallel()

	d := New()
	if d.GetData(0, true).Size != 0 || d.Seek(0) {
		t.Error("unopened decoder produced data")
	}

	d.attach(newMock(44100, stereoRamp(4)))
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if d.GetData(0, false).Size != 0 {
		t.Error("closed decoder produced data")
	}
}

var _ io.ReadSeeker = (*mockMP3)(nil)

func BenchmarkDecoder_GetData(b *testing.B) {
	m := newMock(44100, stereoRamp(1<<15))
	m.maxChunk = 4608
	d := New()
	d.attach(m)

	b.ReportAllocs()
	for b.Loop() {
		d.GetData(32768, true)
	}
}
