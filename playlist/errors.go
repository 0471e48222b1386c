// SPDX-License-Identifier: EPL-2.0

package playlist

import "errors"

var (
	ErrNotFound       = errors.New("file does not exist")
	ErrTooManyFiles   = errors.New("playlist is full")
	ErrFormatMismatch = errors.New("track is not stereo 16 bit at 48000 Hz")
	ErrEmptyTrack     = errors.New("track decoded to nothing")
)
