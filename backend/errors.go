// SPDX-License-Identifier: EPL-2.0

package backend

import "errors"

// Invalid is returned by every handle creating call that failed.
const Invalid int32 = -1

var (
	ErrPoolExhausted = errors.New("source pool exhausted")
	ErrNoFreeStream  = errors.New("no free stream slot")
	ErrUnknownSource = errors.New("unknown source")
	ErrUnknownStream = errors.New("unknown stream")
	ErrStreamBound   = errors.New("stream already bound to a source")
)
