// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"time"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/output"
	"gonum.org/v1/gonum/spatial/r3"
)

// Backend is the full set of operations the engine dispatches.
// Creating calls return Invalid on failure; nothing panics.
type Backend interface {
	SetListenerPosition(pos r3.Vec)
	SetListenerOrientation(at, up r3.Vec)
	SetListenerVolume(gain float64)
	SetListenerVelocity(vel r3.Vec)
	ListenerPosition() r3.Vec

	RequestNewBuffer(path string) int32
	RequestNewBufferPCM(pcm audio.PCMData) int32
	DeleteBuffer(buffer int32)

	RequestNewStream(path string) int32
	// RequestNewStreamFromDecoder takes ownership of an opened decoder.
	RequestNewStreamFromDecoder(dec audio.Decoder) int32
	DeleteStream(stream int32)

	// RequestAudioSource binds a new source to a buffer, or to a stream
	// when streaming is set. Buffer 0 yields an unbound source.
	RequestAudioSource(buffer int32, streaming bool) int32
	UpdateAudioSource(source, buffer int32, streaming bool)
	DeleteAudioSource(source int32)
	PlaySource(source int32, looped bool)
	PauseSource(source int32)
	StopSource(source int32)
	SetPlayingOffset(source int32, offset time.Duration)
	SourceState(source int32) audio.State

	SetSourcePosition(source int32, pos r3.Vec)
	SetSourcePitch(source int32, pitch float64)
	SetSourceVolume(source int32, gain float64)
	SetSourceRolloff(source int32, rolloff float64)
	SetSourceVelocity(source int32, vel r3.Vec)

	SetDopplerFactor(factor float64)
	SetSpeedOfSound(speed float64)

	Queue

	Devices() output.DeviceList
	IsValid() bool
	PrintDebug()
	Shutdown() error
}

// Queue exposes buffer queues directly, for callers that feed a source
// themselves.
type Queue interface {
	GenRawBuffer() int32
	DeleteRawBuffer(buffer int32)
	FillBuffer(buffer int32, chunk audio.PCMChunk) bool
	QueueBuffers(source int32, buffers ...int32) bool
	UnqueueBuffers(source int32, n int) []int32
	ProcessedBuffers(source int32) int
	QueuedBuffers(source int32) int
	SourceOffset(source int32) time.Duration
}
