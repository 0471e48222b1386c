// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"testing"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/internal/audiotest"
)

func TestConvert_RateAndChannels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		rate, channels       int
		toRate, toChannels   int
		frames, approxOutput int
	}{
		{"stereo 44100 to mono 8000", 44100, 2, 8000, 1, 44100, 8000},
		{"mono 24000 to stereo 48000", 24000, 1, 48000, 2, 2400, 9600},
		{"same layout is a copy", 48000, 2, 48000, 2, 480, 960},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSine(tt.rate, tt.channels, tt.frames, 440)
			got, err := audio.Convert(src, tt.toRate, tt.toChannels, 0)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if len(got)%tt.toChannels != 0 {
				t.Errorf("%d samples is not whole frames", len(got))
			}
			if d := len(got) - tt.approxOutput; d > tt.approxOutput/50+4 || d < -(tt.approxOutput/50+4) {
				t.Errorf("got %d samples, want about %d", len(got), tt.approxOutput)
			}
		})
	}
}

func TestConvert_ClampsAndCaps(t *testing.T) {
	t.Parallel()

	got, err := audio.Convert(audiotest.NewConstant(8000, 1, 100, 2), 8000, 1, 10)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("cap ignored: %d samples", len(got))
	}
	for _, s := range got {
		if s != 32767 {
			t.Fatalf("sample %d not clamped to max", s)
		}
	}
}

func TestConvert_RejectsChannelCount(t *testing.T) {
	t.Parallel()

	_, err := audio.Convert(audiotest.NewSilence(8000, 1, 10), 8000, 3, 0)
	if !errors.Is(err, audio.ErrUnsupportedChannels) {
		t.Errorf("error = %v, want ErrUnsupportedChannels", err)
	}
}

func TestConvert_EmptySource(t *testing.T) {
	t.Parallel()

	got, err := audio.Convert(audiotest.NewSilence(8000, 2, 0), 16000, 2, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("got (%d samples, %v), want empty", len(got), err)
	}
}
