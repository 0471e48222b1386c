// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audengine/utils"
)

// Convert pulls src through a processing pipeline so the output matches
// targetRate and targetChannels, and collects the result as 16-bit PCM.
//
// The pipeline is:
//  1. Resample to targetRate with cubic interpolation (skipped when the
//     rates already match)
//  2. Downmix to mono or upmix to stereo as requested
//  3. Convert float32 samples to int16
//
// maxSamples caps the number of collected int16 values; 0 means no cap.
func Convert(src Source, targetRate, targetChannels, maxSamples int) ([]int16, error) {
	if targetChannels != 1 && targetChannels != 2 {
		return nil, fmt.Errorf("%d channels: %w", targetChannels, ErrUnsupportedChannels)
	}

	var pipeline Source = src
	if src.SampleRate() != targetRate {
		pipeline = NewResampler(pipeline, targetRate)
	}
	switch {
	case targetChannels == 1 && pipeline.Channels() != 1:
		pipeline = NewMonoMixer(pipeline)
	case targetChannels == 2 && pipeline.Channels() == 1:
		pipeline = NewStereoMixer(pipeline)
	}

	pcm16 := make([]int16, 0, targetRate*targetChannels)
	buf := make([]float32, 4096*targetChannels)

	for {
		n, err := pipeline.ReadSamples(buf)
		for i := range n {
			pcm16 = append(pcm16, utils.Float32ToInt16(buf[i]))
		}
		if maxSamples > 0 && len(pcm16) >= maxSamples {
			return pcm16[:maxSamples], nil
		}

		if errors.Is(err, io.EOF) || (n == 0 && err == nil) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}

	return pcm16, nil
}
