// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"time"
)

// MaxChunkSize bounds a GetData call made with a chunk size of zero.
// Anything larger has to go through the streaming path.
const MaxChunkSize = 1 << 20

// Format is the sample layout of a PCM block.
type Format int

const (
	FormatNone Format = iota
	FormatMono8
	FormatMono16
	FormatStereo8
	FormatStereo16
)

// NewFormat maps a channel count and a bit depth to a Format.
func NewFormat(channels, bitDepth int) (Format, error) {
	switch {
	case channels == 1 && bitDepth == 8:
		return FormatMono8, nil
	case channels == 1 && bitDepth == 16:
		return FormatMono16, nil
	case channels == 2 && bitDepth == 8:
		return FormatStereo8, nil
	case channels == 2 && bitDepth == 16:
		return FormatStereo16, nil
	case channels < 1 || channels > 2:
		return FormatNone, fmt.Errorf("%d channels: %w", channels, ErrUnsupportedChannels)
	default:
		return FormatNone, fmt.Errorf("%d bits: %w", bitDepth, ErrUnsupportedBitDepth)
	}
}

func (f Format) Channels() int {
	switch f {
	case FormatMono8, FormatMono16:
		return 1
	case FormatStereo8, FormatStereo16:
		return 2
	default:
		return 0
	}
}

func (f Format) BitDepth() int {
	switch f {
	case FormatMono8, FormatStereo8:
		return 8
	case FormatMono16, FormatStereo16:
		return 16
	default:
		return 0
	}
}

// FrameSize is the number of bytes holding one sample for every channel.
func (f Format) FrameSize() int {
	return f.Channels() * f.BitDepth() / 8
}

func (f Format) String() string {
	switch f {
	case FormatMono8:
		return "mono8"
	case FormatMono16:
		return "mono16"
	case FormatStereo8:
		return "stereo8"
	case FormatStereo16:
		return "stereo16"
	default:
		return "none"
	}
}

// PCMChunk is a decoder-owned view of freshly decoded samples.
// Data is borrowed: it stays valid only until the next call on the
// decoder that produced it.
type PCMChunk struct {
	Format     Format
	SampleRate int
	Size       int
	Data       []byte
}

// Frames returns the number of whole frames held by the chunk.
func (c PCMChunk) Frames() int {
	fs := c.Format.FrameSize()
	if fs == 0 {
		return 0
	}
	return c.Size / fs
}

// Duration returns the playback length of the chunk.
func (c PCMChunk) Duration() time.Duration {
	return FramesToDuration(c.Frames(), c.SampleRate)
}

// PCMData is a raw PCM blob with explicit format metadata, used to build
// memory-loaded buffers.
type PCMData struct {
	Format     Format
	SampleRate int
	Data       []byte
}

// FramesToDuration converts a frame count at rate into a duration.
func FramesToDuration(frames, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	f, r := int64(frames), int64(rate)
	return time.Duration(f/r)*time.Second + time.Duration(f%r*int64(time.Second)/r)
}

// DurationToFrames converts a duration into a frame offset at rate.
func DurationToFrames(d time.Duration, rate int) int64 {
	if d <= 0 || rate <= 0 {
		return 0
	}
	// Whole seconds first so long durations do not overflow.
	sec, rem := int64(d/time.Second), int64(d%time.Second)
	return sec*int64(rate) + rem*int64(rate)/int64(time.Second)
}

// State is the playback state of a voice.
type State int

const (
	StateInitial State = iota
	StatePlaying
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
