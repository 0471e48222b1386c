// SPDX-License-Identifier: EPL-2.0

// Package backend implements the operations behind the engine facade.
//
// Hardware drives a mixer through an output sink. It hands out voices from
// a SourcePool and keeps up to MaxStreams file streams fed by one worker
// goroutine each. Null accepts every call and does nothing, for machines
// without a usable output device.
//
// Handles are int32. Buffers and sources start at 1, streams at 0, and -1
// always means the request failed.
package backend
