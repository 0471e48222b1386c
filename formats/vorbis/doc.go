// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// Decoded float samples are clamped and converted to signed 16 bit, so a
// Decoder always reports FormatMono16 or FormatStereo16. Files with more
// than two channels are rejected. Seeking uses the stream's granule
// positions and needs a seekable input.
package vorbis
