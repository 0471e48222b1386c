// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	ErrUnknownBuffer = errors.New("unknown buffer")
	ErrUnknownVoice  = errors.New("unknown voice")
	ErrBufferInUse   = errors.New("buffer is queued on a voice")
	ErrInvalidValue  = errors.New("invalid parameter value")
	ErrInvalidFormat = errors.New("invalid PCM format")
	ErrNotProcessed  = errors.New("buffers are not processed yet")
	ErrInvalidOffset = errors.New("offset is outside the queued audio")
)
