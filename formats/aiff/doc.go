// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes 16 bit AIFF files with github.com/go-audio/aiff.
//
// Only uncompressed 16 bit mono or stereo files are accepted. go-audio
// cannot reposition an AIFF decoder, so rewinding and seeking re-read the
// header and skip frames up to the target.
package aiff
