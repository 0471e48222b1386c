// SPDX-License-Identifier: EPL-2.0

package formats_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/formats"
	"github.com/ik5/audengine/formats/aiff"
	"github.com/ik5/audengine/formats/mp3"
	"github.com/ik5/audengine/formats/vorbis"
	"github.com/ik5/audengine/formats/wav"
	"github.com/ik5/audengine/internal/audiotest"
)

func TestDefault_Extensions(t *testing.T) {
	t.Parallel()

	want := []string{".aif", ".aiff", ".mp3", ".ogg", ".wav"}
	if got := formats.Default().Extensions(); !slices.Equal(got, want) {
		t.Errorf("Extensions() = %v, want %v", got, want)
	}
}

func TestDefault_PicksDecoderByExtension(t *testing.T) {
	t.Parallel()

	r := formats.Default()
	tests := map[string]func(audio.Decoder) bool{
		"a.WAV":  func(d audio.Decoder) bool { _, ok := d.(*wav.Decoder); return ok },
		"b.ogg":  func(d audio.Decoder) bool { _, ok := d.(*vorbis.Decoder); return ok },
		"c.Mp3":  func(d audio.Decoder) bool { _, ok := d.(*mp3.Decoder); return ok },
		"d.aif":  func(d audio.Decoder) bool { _, ok := d.(*aiff.Decoder); return ok },
		"e.aiff": func(d audio.Decoder) bool { _, ok := d.(*aiff.Decoder); return ok },
	}
	for path, check := range tests {
		dec, err := r.New(path)
		if err != nil {
			t.Fatalf("New(%q) error = %v", path, err)
		}
		if !check(dec) {
			t.Errorf("New(%q) returned %T", path, dec)
		}
	}

	if _, err := r.New("f.flac"); !errors.Is(err, audio.ErrUnsupportedExtension) {
		t.Errorf("flac error = %v", err)
	}
}

func TestDefault_OpensWAV(t *testing.T) {
	t.Parallel()

	path := audiotest.WriteFile(t, "blip.wav", audiotest.WAV16(22050, 1, audiotest.Ramp16(100, 1)))
	dec, err := formats.Default().Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer dec.Close()

	if dec.Format() != audio.FormatMono16 || dec.SampleRate() != 22050 {
		t.Errorf("got %v %d Hz", dec.Format(), dec.SampleRate())
	}
}
