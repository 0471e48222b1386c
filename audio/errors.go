// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrUnsupportedExtension is returned when no decoder is registered for
	// a file extension.
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// ErrUnsupportedChannels indicates a channel count other than 1 or 2.
	ErrUnsupportedChannels = errors.New("only mono or stereo audio is supported")

	// ErrUnsupportedBitDepth indicates a bit depth other than 8 or 16.
	ErrUnsupportedBitDepth = errors.New("only 8 or 16 bit audio is supported")

	// ErrNotOpen is returned when a decoder is used before Open succeeded.
	ErrNotOpen = errors.New("decoder is not open")
)
