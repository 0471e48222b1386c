// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// writeBlock bounds the int buffer handed to the encoder per call.
const writeBlock = 8192

// Write encodes interleaved 16 bit samples as a PCM WAV file.
func Write(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	if channels < 1 || channels > 2 {
		return fmt.Errorf("%d channels: %w", channels, ErrTooManyChannels)
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, 0, min(len(samples), writeBlock)),
	}

	// At least one Write call so the header exists even without samples.
	for start := 0; ; start += writeBlock {
		end := min(start+writeBlock, len(samples))
		buf.Data = buf.Data[:0]
		for _, s := range samples[start:end] {
			buf.Data = append(buf.Data, int(s))
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("encoding wav: %w", err)
		}
		if end == len(samples) {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// WriteFile creates path and writes samples to it.
func WriteFile(path string, sampleRate, channels int, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := Write(f, sampleRate, channels, samples); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
