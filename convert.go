// SPDX-License-Identifier: EPL-2.0

package audengine

import (
	"fmt"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/formats"
	"github.com/ik5/audengine/formats/wav"
)

// ConvertFile decodes in, resamples it to rate, maps it to channels and
// writes the result to out as a 16 bit WAV file. A nil registry means
// formats.Default(). It returns the number of frames written.
func ConvertFile(registry *audio.Registry, in, out string, rate, channels int) (int, error) {
	if registry == nil {
		registry = formats.Default()
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%d Hz: %w", rate, ErrInvalidRate)
	}

	dec, err := registry.Open(in)
	if err != nil {
		return 0, err
	}
	src := audio.NewChunkSource(dec)
	defer src.Close()

	pcm, err := audio.Convert(src, rate, channels, 0)
	if err != nil {
		return 0, fmt.Errorf("converting %s: %w", in, err)
	}
	if err := wav.WriteFile(out, rate, channels, pcm); err != nil {
		return 0, fmt.Errorf("writing %s: %w", out, err)
	}
	return len(pcm) / channels, nil
}

// ToMono16 drains src into mono 16 bit PCM at rate.
func ToMono16(src audio.Source, rate int) ([]int16, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%d Hz: %w", rate, ErrInvalidRate)
	}
	return audio.Convert(src, rate, 1, 0)
}
