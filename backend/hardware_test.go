// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/formats"
	"github.com/ik5/audengine/internal/audiotest"
	"github.com/ik5/audengine/mixer"
	"github.com/ik5/audengine/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type rig struct {
	h    *Hardware
	sink *output.Virtual

	nonZero int

	mu      sync.Mutex
	misuses []string
}

func newRig(t *testing.T, rate int, opts Options) *rig {
	t.Helper()

	m, err := mixer.New(rate, 1)
	require.NoError(t, err)
	sink, err := output.NewVirtual(output.Options{SampleRate: rate, Channels: 1, Manual: true})
	require.NoError(t, err)

	r := &rig{sink: sink}
	if opts.StreamInterval == 0 {
		opts.StreamInterval = time.Millisecond
	}
	if opts.Registry == nil {
		opts.Registry = formats.Default()
	}
	opts.Logger = log.New(io.Discard)
	opts.OnMisuse = func(msg string) {
		r.mu.Lock()
		r.misuses = append(r.misuses, msg)
		r.mu.Unlock()
	}

	r.h, err = NewHardware(m, sink, opts)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, r.h.Shutdown()) })

	sink.Tap(func(p []byte) {
		for i := 0; i+1 < len(p); i += 2 {
			if p[i] != 0 || p[i+1] != 0 {
				r.nonZero++
			}
		}
	})
	return r
}

func (r *rig) misuseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.misuses)
}

func constant(frames int, v int16) []int16 {
	s := make([]int16, frames)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestRequestNewBufferPCM(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{})
	id := r.h.RequestNewBufferPCM(audio.PCMData{
		Format: audio.FormatMono16, SampleRate: 8000, Data: audio.Int16Bytes(nil, constant(80, 100)),
	})
	assert.Positive(t, id)

	bad := r.h.RequestNewBufferPCM(audio.PCMData{Format: audio.FormatStereo16, SampleRate: 8000, Data: make([]byte, 6)})
	assert.Equal(t, Invalid, bad)

	r.h.DeleteBuffer(id)
	assert.Zero(t, r.misuseCount())
	r.h.DeleteBuffer(id)
	assert.Equal(t, 1, r.misuseCount(), "double delete is misuse")
}

func TestRequestNewBuffer_ResolvesAgainstResourceRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	wav := audiotest.WAV16(8000, 1, constant(400, 500))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beep.WAV"), wav, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beep.flac"), wav, 0o600))

	r := newRig(t, 8000, Options{ResourceRoot: dir})

	assert.Positive(t, r.h.RequestNewBuffer("beep.WAV"), "extension is case insensitive")
	assert.Positive(t, r.h.RequestNewBuffer(filepath.Join(dir, "beep.WAV")), "absolute paths kept")
	assert.Equal(t, Invalid, r.h.RequestNewBuffer("beep.flac"))
	assert.Equal(t, Invalid, r.h.RequestNewBuffer("missing.wav"))
}

// A mono 16 bit 22050 Hz sound played through the virtual output stops
// once its duration has been pumped.
func TestStaticSource_StopsAfterDuration(t *testing.T) {
	t.Parallel()

	const rate = 22050
	path := audiotest.WriteFile(t, "tone.wav", audiotest.WAV16(rate, 1, constant(rate/10, 2000)))

	r := newRig(t, rate, Options{})
	buf := r.h.RequestNewBuffer(path)
	require.Positive(t, buf)
	src := r.h.RequestAudioSource(buf, false)
	require.Positive(t, src)
	assert.Equal(t, audio.StateStopped, r.h.SourceState(src), "initial reads as stopped")

	r.h.PlaySource(src, false)
	require.NoError(t, r.sink.PumpFor(90*time.Millisecond))
	assert.Equal(t, audio.StatePlaying, r.h.SourceState(src))

	require.NoError(t, r.sink.PumpFor(20*time.Millisecond))
	assert.Equal(t, audio.StateStopped, r.h.SourceState(src))
	assert.Equal(t, rate/10, r.nonZero)
}

func TestStaticSource_LoopsAndSpatialSetters(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{})
	buf := r.h.RequestNewBufferPCM(audio.PCMData{
		Format: audio.FormatMono16, SampleRate: 8000, Data: audio.Int16Bytes(nil, constant(100, 3000)),
	})
	src := r.h.RequestAudioSource(buf, false)

	r.h.SetSourceVolume(src, 0.5)
	r.h.SetSourcePitch(src, 2)
	r.h.SetSourceRolloff(src, 0)
	r.h.SetSourcePosition(src, r3.Vec{X: 3})
	r.h.SetSourceVelocity(src, r3.Vec{Y: 1})
	r.h.SetSourcePitch(src, -1) // rejected, keeps 2

	p, err := r.h.Mixer().Params(src)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.Gain)
	assert.Equal(t, 2.0, p.Pitch)
	assert.Equal(t, 0.0, p.Rolloff)
	assert.Equal(t, r3.Vec{X: 3}, p.Position)
	assert.Equal(t, r3.Vec{Y: 1}, p.Velocity)

	r.h.PlaySource(src, true)
	require.NoError(t, r.sink.Pump(1000))
	assert.Equal(t, audio.StatePlaying, r.h.SourceState(src))

	r.h.PauseSource(src)
	assert.Equal(t, audio.StatePaused, r.h.SourceState(src))
	r.h.StopSource(src)
	assert.Equal(t, audio.StateStopped, r.h.SourceState(src))
}

func TestListener(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{})
	r.h.SetListenerPosition(r3.Vec{X: 1, Y: 2, Z: 3})
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, r.h.ListenerPosition())

	r.h.SetListenerVolume(0.25)
	r.h.SetListenerVolume(-1)
	r.h.SetListenerOrientation(r3.Vec{Y: 1}, r3.Vec{Y: 2}) // parallel, rejected
	r.h.SetListenerVelocity(r3.Vec{Z: 1})

	l := r.h.Mixer().Listener()
	assert.Equal(t, 0.25, l.Gain)
	assert.Equal(t, r3.Vec{Z: -1}, l.At)
	assert.Equal(t, r3.Vec{Z: 1}, l.Velocity)
}

func TestRequestAudioSource_PoolCeiling(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{})
	var last int32
	for range MaxSources {
		last = r.h.RequestAudioSource(0, false)
		require.Positive(t, last)
	}
	assert.Equal(t, Invalid, r.h.RequestAudioSource(0, false))

	r.h.DeleteAudioSource(last)
	assert.Equal(t, last, r.h.RequestAudioSource(0, false))
}

func TestMisuse_InvalidHandles(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{})
	r.h.PlaySource(42, false)
	r.h.PauseSource(42)
	r.h.StopSource(42)
	r.h.SetSourceVolume(42, 1)
	r.h.DeleteAudioSource(42)
	r.h.DeleteStream(7)
	r.h.DeleteStream(MaxStreams)
	assert.Equal(t, 7, r.misuseCount())

	assert.Equal(t, Invalid, r.h.RequestAudioSource(99, false))
	assert.Equal(t, Invalid, r.h.RequestAudioSource(3, true))
	assert.Zero(t, r.h.Pool().InUse(), "failed binds release their source")
	assert.Equal(t, audio.StateStopped, r.h.SourceState(42))
}

func TestQueuePrimitives(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{})
	src := r.h.RequestAudioSource(0, false)
	require.Positive(t, src)

	var bufs []int32
	for range 3 {
		b := r.h.GenRawBuffer()
		data := audio.Int16Bytes(nil, constant(40, 700))
		require.True(t, r.h.FillBuffer(b, audio.PCMChunk{Format: audio.FormatMono16, SampleRate: 8000, Size: len(data), Data: data}))
		bufs = append(bufs, b)
	}
	require.True(t, r.h.QueueBuffers(src, bufs...))
	assert.Equal(t, 3, r.h.QueuedBuffers(src))
	assert.False(t, r.h.QueueBuffers(src, 999))

	r.h.PlaySource(src, false)
	require.NoError(t, r.sink.Pump(90))
	assert.Equal(t, 2, r.h.ProcessedBuffers(src))
	assert.Equal(t, 10*time.Millisecond+1250*time.Microsecond, r.h.SourceOffset(src))

	assert.Nil(t, r.h.UnqueueBuffers(src, 3), "third buffer still playing")
	assert.Equal(t, bufs[:2], r.h.UnqueueBuffers(src, 2))
	assert.Equal(t, 1, r.h.QueuedBuffers(src))

	r.h.DeleteRawBuffer(bufs[0])
	assert.Zero(t, r.misuseCount())
}

func streamDecoder(frames int, v int16) *audiotest.MemDecoder {
	return audiotest.NewMemDecoder16(8000, 1, constant(frames, v))
}

// pumpStream feeds the output in steps shorter than one stream buffer and
// lets the worker catch up between steps.
func (r *rig) pumpStream(t *testing.T, src int32, frames int) {
	t.Helper()
	for done := 0; done < frames; done += 32 {
		require.NoError(t, r.sink.Pump(min(32, frames-done)))
		require.Eventually(t, func() bool {
			return r.h.ProcessedBuffers(src) == 0 || r.h.SourceState(src) != audio.StatePlaying
		}, time.Second, time.Millisecond)
	}
}

func TestStream_DeliversEveryDecodedFrame(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{StreamBuffers: 4, StreamChunkSize: 256})
	dec := streamDecoder(1000, 1000)

	stream := r.h.RequestNewStreamFromDecoder(dec)
	require.Equal(t, int32(0), stream)
	src := r.h.RequestAudioSource(stream, true)
	require.Positive(t, src)
	assert.Equal(t, 4, r.h.QueuedBuffers(src))

	r.h.PlaySource(src, false)
	r.pumpStream(t, src, 1200)

	assert.Equal(t, audio.StateStopped, r.h.SourceState(src))
	assert.Equal(t, 1000, r.nonZero)

	// The worker rewinds a stream that ran out.
	require.Eventually(t, func() bool {
		_, seeks := dec.Stats()
		return slices.Contains(seeks, 0)
	}, time.Second, time.Millisecond)
}

func TestStream_Looped(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{StreamBuffers: 3, StreamChunkSize: 128})
	stream := r.h.RequestNewStream("")
	assert.Equal(t, Invalid, stream, "no extension")

	stream = r.h.RequestNewStreamFromDecoder(streamDecoder(150, 1000))
	src := r.h.RequestAudioSource(stream, true)
	r.h.PlaySource(src, true)
	r.pumpStream(t, src, 1600)

	assert.Equal(t, audio.StatePlaying, r.h.SourceState(src))
	assert.Equal(t, 1600, r.nonZero)
}

func TestStream_LoopedShorterThanRing(t *testing.T) {
	t.Parallel()

	// 50 frames fit the first buffer; the rest of the ring parks at EOF.
	r := newRig(t, 8000, Options{StreamBuffers: 3, StreamChunkSize: 128})
	stream := r.h.RequestNewStreamFromDecoder(streamDecoder(50, 1000))
	src := r.h.RequestAudioSource(stream, true)
	require.Equal(t, 1, r.h.QueuedBuffers(src))

	r.h.PlaySource(src, true)
	assert.Equal(t, 3, r.h.QueuedBuffers(src), "looping refills the parked buffers")
	r.pumpStream(t, src, 400)

	assert.Equal(t, audio.StatePlaying, r.h.SourceState(src))
	assert.Equal(t, 400, r.nonZero)
}

func TestStream_StopRewindsAndSeekReprimes(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{StreamBuffers: 2, StreamChunkSize: 200})
	dec := streamDecoder(4000, 1000)
	stream := r.h.RequestNewStreamFromDecoder(dec)
	src := r.h.RequestAudioSource(stream, true)

	r.h.PlaySource(src, false)
	r.pumpStream(t, src, 320)

	r.h.StopSource(src)
	assert.Equal(t, audio.StateStopped, r.h.SourceState(src))
	assert.Equal(t, 2, r.h.QueuedBuffers(src))
	_, seeks := dec.Stats()
	assert.Contains(t, seeks, time.Duration(0))

	r.h.PlaySource(src, false)
	r.h.SetPlayingOffset(src, 250*time.Millisecond)
	_, seeks = dec.Stats()
	assert.Equal(t, 250*time.Millisecond, seeks[len(seeks)-1])
	assert.Equal(t, audio.StatePlaying, r.h.SourceState(src), "seek keeps playing")
	assert.Equal(t, 2, r.h.QueuedBuffers(src))
}

func TestStream_SeekKeepsPaused(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{StreamBuffers: 2, StreamChunkSize: 200})
	dec := streamDecoder(4000, 1000)
	src := r.h.RequestAudioSource(r.h.RequestNewStreamFromDecoder(dec), true)

	r.h.PlaySource(src, false)
	r.pumpStream(t, src, 64)
	r.h.PauseSource(src)
	heard := r.nonZero

	r.h.SetPlayingOffset(src, 100*time.Millisecond)
	assert.Equal(t, audio.StatePaused, r.h.SourceState(src))
	assert.Equal(t, 2, r.h.QueuedBuffers(src))

	// The worker must not take the paused voice for a finished one.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, r.sink.Pump(64))
	assert.Equal(t, audio.StatePaused, r.h.SourceState(src))
	assert.Equal(t, heard, r.nonZero)

	r.h.PlaySource(src, false)
	r.pumpStream(t, src, 64)
	assert.Equal(t, heard+64, r.nonZero)
	_, seeks := dec.Stats()
	assert.Equal(t, 100*time.Millisecond, seeks[len(seeks)-1], "resume does not rewind")
}

func TestStream_TableExhaustion(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{StreamBuffers: 1, StreamChunkSize: 64})
	for i := range MaxStreams {
		require.Equal(t, int32(i), r.h.RequestNewStreamFromDecoder(streamDecoder(64, 1)))
	}

	extra := streamDecoder(64, 1)
	assert.Equal(t, Invalid, r.h.RequestNewStreamFromDecoder(extra))
	assert.True(t, extra.Closed(), "rejected decoder is closed")

	r.h.DeleteStream(5)
	assert.Equal(t, MaxStreams-1, r.h.StreamsInUse())
	assert.Equal(t, int32(5), r.h.RequestNewStreamFromDecoder(streamDecoder(64, 1)))
}

func TestStream_DeleteJoinsWorkerAndFreesSlot(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{StreamChunkSize: 256})
	dec := streamDecoder(8000, 1000)
	stream := r.h.RequestNewStreamFromDecoder(dec)
	src := r.h.RequestAudioSource(stream, true)
	r.h.PlaySource(src, true)

	slot := r.h.streams[stream]
	done := slot.done

	r.h.DeleteStream(stream)
	select {
	case <-done:
	default:
		t.Fatal("worker still running after DeleteStream")
	}
	assert.True(t, dec.Closed())
	assert.Zero(t, r.h.StreamsInUse())
	assert.Zero(t, r.h.QueuedBuffers(src))

	// The source survives its stream and can be rebound.
	assert.True(t, r.h.Pool().Owns(src))
	stream = r.h.RequestNewStreamFromDecoder(streamDecoder(800, 1))
	r.h.UpdateAudioSource(src, stream, true)
	assert.Equal(t, DefaultStreamBuffers, r.h.QueuedBuffers(src))
}

func TestStream_SourceOpsAfterDelete(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{StreamChunkSize: 256})
	stream := r.h.RequestNewStreamFromDecoder(streamDecoder(8000, 1000))
	src := r.h.RequestAudioSource(stream, true)

	var wg sync.WaitGroup
	quit := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-quit:
				return
			default:
				r.h.PlaySource(src, true)
			}
		}
	}()
	time.Sleep(5 * time.Millisecond)
	r.h.DeleteStream(stream)
	close(quit)
	wg.Wait()

	// Teardown frees the slot before it drops the source mapping.
	r.h.mu.Lock()
	r.h.streamOf[src] = stream
	r.h.mu.Unlock()

	assert.NotPanics(t, func() {
		r.h.PlaySource(src, true)
		r.h.StopSource(src)
		r.h.SetPlayingOffset(src, time.Millisecond)
	})
	assert.Zero(t, r.h.StreamsInUse())
	assert.Zero(t, r.misuseCount())
}

func TestDeleteAudioSource_TakesStreamAlong(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{})
	dec := streamDecoder(8000, 1000)
	stream := r.h.RequestNewStreamFromDecoder(dec)
	src := r.h.RequestAudioSource(stream, true)

	r.h.DeleteAudioSource(src)
	assert.True(t, dec.Closed())
	assert.Zero(t, r.h.StreamsInUse())
	assert.Zero(t, r.h.Pool().InUse())
	assert.Zero(t, r.misuseCount())
}

func TestUpdateAudioSource_StreamToBuffer(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{StreamChunkSize: 256})
	stream := r.h.RequestNewStreamFromDecoder(streamDecoder(8000, 1000))
	src := r.h.RequestAudioSource(stream, true)
	other := r.h.RequestAudioSource(0, false)

	r.h.UpdateAudioSource(other, stream, true)
	assert.Equal(t, 1, r.misuseCount(), "stream already bound")

	buf := r.h.RequestNewBufferPCM(audio.PCMData{
		Format: audio.FormatMono16, SampleRate: 8000, Data: audio.Int16Bytes(nil, constant(10, 1)),
	})
	r.h.UpdateAudioSource(src, buf, false)
	assert.Equal(t, 1, r.h.QueuedBuffers(src))

	r.h.UpdateAudioSource(other, stream, true)
	assert.Equal(t, 1, r.misuseCount(), "stream free again")
	assert.Equal(t, DefaultStreamBuffers, r.h.QueuedBuffers(other))
}

func TestShutdown_ClosesEveryStream(t *testing.T) {
	t.Parallel()

	r := newRig(t, 8000, Options{})
	var decs []*audiotest.MemDecoder
	for range 3 {
		d := streamDecoder(4000, 1)
		decs = append(decs, d)
		src := r.h.RequestAudioSource(r.h.RequestNewStreamFromDecoder(d), true)
		r.h.PlaySource(src, true)
	}

	require.NoError(t, r.h.Shutdown())
	for _, d := range decs {
		assert.True(t, d.Closed())
	}
	assert.Zero(t, r.h.StreamsInUse())
}

func TestNull(t *testing.T) {
	t.Parallel()

	var b Backend = Null{}
	dec := streamDecoder(10, 1)

	assert.False(t, b.IsValid())
	assert.Equal(t, Invalid, b.RequestNewBuffer("a.wav"))
	assert.Equal(t, Invalid, b.RequestNewStreamFromDecoder(dec))
	assert.True(t, dec.Closed())
	assert.Equal(t, Invalid, b.RequestAudioSource(1, false))
	assert.Equal(t, audio.StateStopped, b.SourceState(1))
	assert.Empty(t, b.Devices().Playback)
	assert.NoError(t, b.Shutdown())
}
