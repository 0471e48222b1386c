// SPDX-License-Identifier: EPL-2.0

// Package stream plays audio that a caller produces on demand.
//
// A SoundStream owns one source and three buffers. A worker goroutine keeps
// the buffers queued by asking the Callbacks for more samples whenever the
// device has finished one. DecoderStream adapts any audio.Decoder to those
// callbacks, which is how music files and injected voice PCM are played.
package stream
