// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE files.
//
// The decoder handles uncompressed PCM with 8 or 16 bit samples in mono
// or stereo at any sample rate. Samples are returned in the layout of the
// file: 8 bit data stays unsigned, 16 bit data stays signed little endian.
// Chunks other than "fmt " and "data" are skipped, wherever they appear.
//
//	dec := wav.New()
//	if err := dec.Open("sfx/door.wav"); err != nil {
//	    return err
//	}
//	defer dec.Close()
//	chunk := dec.GetData(0, false)
//
// # Errors
//
//   - ErrNotWavFile: missing RIFF/WAVE magic or an unreadable fmt chunk
//   - ErrOnlyPCMSupported: compressed or float data
//   - ErrUnsupportedBitDepth: anything but 8 or 16 bit
//   - ErrTooManyChannels: more than two channels
//   - ErrNoDataChunk: the file ends before a data chunk
//
// Write stores 16 bit samples using the go-audio encoder.
package wav
