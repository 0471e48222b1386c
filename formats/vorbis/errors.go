// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	ErrNotVorbisFile   = errors.New("not an Ogg Vorbis file")
	ErrTooManyChannels = errors.New("Ogg Vorbis stream has more than two channels")
)
