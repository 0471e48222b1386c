// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III files with
// github.com/hajimehoshi/go-mp3.
//
// The underlying decoder always produces interleaved stereo signed 16 bit
// little endian samples, mono files included, so every Decoder reports
// FormatStereo16. Seeking converts the time offset to a byte offset in that
// output stream.
package mp3
