// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

var (
	ErrUnknownDriver   = errors.New("unknown output driver")
	ErrInvalidFormat   = errors.New("invalid output format")
	ErrAlreadyStarted  = errors.New("sink already started")
	ErrClosed          = errors.New("sink is closed")
	ErrContextMismatch = errors.New("oto context exists with another format")
	ErrDeviceNotFound  = errors.New("playback device not found")
)
