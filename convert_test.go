// SPDX-License-Identifier: EPL-2.0

package audengine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/formats"
	"github.com/ik5/audengine/internal/audiotest"
)

func TestConvertFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rate       int
		channels   int
		wantFrames int
		tolerance  int
	}{
		{"same format", 16000, 2, 1600, 0},
		{"downmix", 16000, 1, 1600, 0},
		{"downsample", 8000, 1, 800, 2},
		{"upsample", 48000, 2, 4800, 6},
	}

	in := audiotest.WriteFile(t, "in.wav", audiotest.WAV16(16000, 2, audiotest.Ramp16(1600, 2)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := filepath.Join(t.TempDir(), "out.wav")
			frames, err := ConvertFile(nil, in, out, tt.rate, tt.channels)
			if err != nil {
				t.Fatalf("ConvertFile() error = %v", err)
			}
			if d := frames - tt.wantFrames; d < -tt.tolerance || d > tt.tolerance {
				t.Errorf("ConvertFile() = %d frames, want %d (±%d)", frames, tt.wantFrames, tt.tolerance)
			}

			dec, err := formats.Default().Open(out)
			if err != nil {
				t.Fatalf("reopening output: %v", err)
			}
			defer dec.Close()
			if dec.SampleRate() != tt.rate || dec.Format().Channels() != tt.channels || dec.Format().BitDepth() != 16 {
				t.Errorf("output is %v at %d Hz", dec.Format(), dec.SampleRate())
			}

			got := 0
			for {
				chunk := dec.GetData(0, false)
				if chunk.Size == 0 {
					break
				}
				got += chunk.Frames()
			}
			if got != frames {
				t.Errorf("output holds %d frames, ConvertFile reported %d", got, frames)
			}
		})
	}
}

func TestConvertFile_PreservesSamples(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 1000, -1000, 16384, -16384, 32767}
	in := audiotest.WriteFile(t, "in.wav", audiotest.WAV16(8000, 1, samples))
	out := filepath.Join(t.TempDir(), "out.wav")

	if _, err := ConvertFile(formats.Default(), in, out, 8000, 1); err != nil {
		t.Fatal(err)
	}

	dec, err := formats.Default().Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	got := audio.AppendInt16(nil, dec.GetData(0, false))
	if len(got) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		// int16 -> float -> int16 truncates toward zero by at most one.
		if d := int(got[i]) - int(s); d < -1 || d > 1 {
			t.Errorf("sample %d = %d, want %d", i, got[i], s)
		}
	}
}

func TestConvertFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := audiotest.WriteFile(t, "in.wav", audiotest.WAV16(8000, 1, make([]int16, 80)))

	if _, err := ConvertFile(nil, in, filepath.Join(dir, "a.wav"), 0, 1); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("zero rate: err = %v", err)
	}
	if _, err := ConvertFile(nil, filepath.Join(dir, "in.flac"), filepath.Join(dir, "b.wav"), 8000, 1); !errors.Is(err, audio.ErrUnsupportedExtension) {
		t.Errorf("unknown extension: err = %v", err)
	}
	if _, err := ConvertFile(nil, in, filepath.Join(dir, "c.wav"), 8000, 3); !errors.Is(err, audio.ErrUnsupportedChannels) {
		t.Errorf("three channels: err = %v", err)
	}
	if _, err := ConvertFile(nil, in, filepath.Join(dir, "missing", "d.wav"), 8000, 1); err == nil {
		t.Error("writing into a missing directory succeeded")
	}
}

func TestToMono16(t *testing.T) {
	t.Parallel()

	pcm, err := ToMono16(audiotest.NewSine(44100, 2, 44100, 440), 8000)
	if err != nil {
		t.Fatalf("ToMono16() error = %v", err)
	}
	if len(pcm) < 7800 || len(pcm) > 8200 {
		t.Errorf("ToMono16() = %d samples, want ≈8000", len(pcm))
	}

	if _, err := ToMono16(audiotest.NewSilence(8000, 1, 10), -1); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("negative rate: err = %v", err)
	}
}

func BenchmarkConvertFile(b *testing.B) {
	in := audiotest.WriteFile(b, "in.wav", audiotest.WAV16(44100, 2, audiotest.Ramp16(44100, 2)))
	out := filepath.Join(b.TempDir(), "out.wav")

	b.ReportAllocs()
	for b.Loop() {
		if _, err := ConvertFile(nil, in, out, 16000, 1); err != nil {
			b.Fatal(err)
		}
	}
}
