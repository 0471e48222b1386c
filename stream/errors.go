// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	ErrNoSource      = errors.New("no audio source available")
	ErrInvalidFormat = errors.New("stream needs 1 or 2 channels and a positive rate")
)
