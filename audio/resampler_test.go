// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/internal/audiotest"
)

func readAll(t *testing.T, src audio.Source) []float32 {
	t.Helper()
	var out []float32
	buf := make([]float32, 512*src.Channels())
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
		if n == 0 {
			t.Fatal("ReadSamples() returned no data and no error")
		}
	}
}

func TestResampler_OutputLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		channels int
		frames   int
	}{
		{"down 44100 to 8000", 44100, 8000, 1, 44100},
		{"down 48000 to 16000 stereo", 48000, 16000, 2, 4800},
		{"up 8000 to 48000", 8000, 48000, 1, 8000},
		{"up 22050 to 44100 stereo", 22050, 44100, 2, 2205},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := audio.NewResampler(audiotest.NewSine(tt.from, tt.channels, tt.frames, 440), tt.to)
			if r.SampleRate() != tt.to || r.Channels() != tt.channels {
				t.Fatalf("resampler reports %d Hz/%d ch", r.SampleRate(), r.Channels())
			}

			got := len(readAll(t, r)) / tt.channels
			want := float64(tt.frames) * float64(tt.to) / float64(tt.from)
			if math.Abs(float64(got)-want) > want*0.02+2 {
				t.Errorf("got %d frames, want about %.0f", got, want)
			}
		})
	}
}

func TestResampler_ConstantSignalPreserved(t *testing.T) {
	t.Parallel()

	for _, to := range []int{8000, 96000} {
		r := audio.NewResampler(audiotest.NewConstant(44100, 2, 4410, 0.5), to)
		for i, v := range readAll(t, r) {
			if math.Abs(float64(v-0.5)) > 1e-5 {
				t.Fatalf("to %d: sample %d = %v, want 0.5", to, i, v)
			}
		}
	}
}

func TestResampler_EOFIsSticky(t *testing.T) {
	t.Parallel()

	r := audio.NewResampler(audiotest.NewSilence(44100, 1, 100), 8000)
	if len(readAll(t, r)) == 0 {
		t.Fatal("no samples before EOF")
	}

	n, err := r.ReadSamples(make([]float32, 64))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("after EOF got (%d, %v), want (0, EOF)", n, err)
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	r := audio.NewResampler(audiotest.NewSilence(44100, 2, 1000), 8000)
	if _, err := r.ReadSamples(make([]float32, 7)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_EmptyAndTinySources(t *testing.T) {
	t.Parallel()

	r := audio.NewResampler(audiotest.NewSilence(44100, 1, 0), 8000)
	if n, err := r.ReadSamples(make([]float32, 16)); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("empty source got (%d, %v)", n, err)
	}

	for frames := 1; frames <= 3; frames++ {
		r := audio.NewResampler(audiotest.NewConstant(8000, 1, frames, 0.25), 16000)
		for _, v := range readAll(t, r) {
			if math.Abs(float64(v-0.25)) > 1e-5 {
				t.Fatalf("%d frames: sample %v, want 0.25", frames, v)
			}
		}
	}
}

func TestResampler_Reset(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSine(16000, 1, 1600, 220)
	r := audio.NewResampler(src, 8000)
	first := readAll(t, r)

	src.Rewind()
	r.Reset()
	second := readAll(t, r)

	if len(first) != len(second) {
		t.Fatalf("second pass has %d samples, first had %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs after reset: %v vs %v", i, first[i], second[i])
		}
	}
}

func BenchmarkResampler_Downsample(b *testing.B) {
	src := audiotest.NewSine(44100, 2, 100000, 440)
	r := audio.NewResampler(src, 8000)
	buf := make([]float32, 4096)

	b.ReportAllocs()
	for b.Loop() {
		src.Rewind()
		r.Reset()
		for {
			if _, err := r.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}

func BenchmarkResampler_Upsample(b *testing.B) {
	src := audiotest.NewSine(8000, 2, 20000, 440)
	r := audio.NewResampler(src, 48000)
	buf := make([]float32, 4096)

	b.ReportAllocs()
	for b.Loop() {
		src.Rewind()
		r.Reset()
		for {
			if _, err := r.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
