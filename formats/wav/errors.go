// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrOnlyPCMSupported    = errors.New("only uncompressed PCM WAV is supported")
	ErrUnsupportedBitDepth = errors.New("only 8 or 16 bit WAV is supported")
	ErrTooManyChannels     = errors.New("WAV has more than two channels")
	ErrNoDataChunk         = errors.New("WAV has no data chunk")
)
