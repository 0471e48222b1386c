// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"time"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/output"
	"gonum.org/v1/gonum/spatial/r3"
)

// Null does nothing. Creating calls fail with Invalid, queries return
// zero values.
type Null struct{}

var _ Backend = Null{}

func (Null) SetListenerPosition(r3.Vec) {}
func (Null) SetListenerOrientation(_, _ r3.Vec) {}
func (Null) SetListenerVolume(float64) {}
func (Null) SetListenerVelocity(r3.Vec) {}
func (Null) ListenerPosition() r3.Vec { return r3.Vec{} }

func (Null) RequestNewBuffer(string) int32 { return Invalid }
func (Null) RequestNewBufferPCM(audio.PCMData) int32 { return Invalid }
func (Null) DeleteBuffer(int32) {}
func (Null) RequestNewStream(string) int32 { return Invalid }
func (Null) RequestNewStreamFromDecoder(dec audio.Decoder) int32 {
	if dec != nil {
		_ = dec.Close()
	}
	return Invalid
}
func (Null) DeleteStream(int32) {}

func (Null) RequestAudioSource(int32, bool) int32 { return Invalid }
func (Null) UpdateAudioSource(int32, int32, bool) {}
func (Null) DeleteAudioSource(int32) {}
func (Null) PlaySource(int32, bool) {}
func (Null) PauseSource(int32) {}
func (Null) StopSource(int32) {}
func (Null) SetPlayingOffset(int32, time.Duration) {}
func (Null) SourceState(int32) audio.State { return audio.StateStopped }
func (Null) SetSourcePosition(int32, r3.Vec) {}
func (Null) SetSourcePitch(int32, float64) {}
func (Null) SetSourceVolume(int32, float64) {}
func (Null) SetSourceRolloff(int32, float64) {}
func (Null) SetSourceVelocity(int32, r3.Vec) {}
func (Null) SetDopplerFactor(float64) {}
func (Null) SetSpeedOfSound(float64) {}

func (Null) GenRawBuffer() int32 { return Invalid }
func (Null) DeleteRawBuffer(int32) {}
func (Null) FillBuffer(int32, audio.PCMChunk) bool { return false }
func (Null) QueueBuffers(int32, ...int32) bool { return false }
func (Null) UnqueueBuffers(int32, int) []int32 { return nil }
func (Null) ProcessedBuffers(int32) int { return 0 }
func (Null) QueuedBuffers(int32) int { return 0 }
func (Null) SourceOffset(int32) time.Duration { return 0 }

func (Null) Devices() output.DeviceList { return output.DeviceList{} }
func (Null) IsValid() bool { return false }
func (Null) PrintDebug() {}
func (Null) Shutdown() error { return nil }
