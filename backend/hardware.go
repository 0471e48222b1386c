// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/mixer"
	"github.com/ik5/audengine/output"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultStreamBuffers   = 4
	DefaultStreamChunkSize = 32768
	DefaultStreamInterval  = 50 * time.Millisecond
)

type Options struct {
	// ResourceRoot prefixes every relative path.
	ResourceRoot    string
	StreamBuffers   int
	StreamChunkSize int
	StreamInterval  time.Duration
	Registry        *audio.Registry
	Logger          *log.Logger
	// OnMisuse is called after an invalid handle was logged.
	OnMisuse func(msg string)
}

func (o *Options) defaults() {
	if o.StreamBuffers <= 0 {
		o.StreamBuffers = DefaultStreamBuffers
	}
	if o.StreamChunkSize <= 0 {
		o.StreamChunkSize = DefaultStreamChunkSize
	}
	if o.StreamInterval <= 0 {
		o.StreamInterval = DefaultStreamInterval
	}
	if o.Registry == nil {
		o.Registry = audio.NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Hardware plays through a mixer that an output sink pulls from.
type Hardware struct {
	opts   Options
	logger *log.Logger

	mixer *mixer.Mixer
	sink  output.Sink
	pool  *SourcePool

	mu      sync.Mutex
	streams [MaxStreams]*streamSlot
	cursor  int
	// streamOf maps streaming sources to their slot.
	streamOf map[int32]int32
}

var _ Backend = (*Hardware)(nil)

// NewHardware starts sink pulling from m. The backend owns both from then
// on.
func NewHardware(m *mixer.Mixer, sink output.Sink, opts Options) (*Hardware, error) {
	opts.defaults()
	h := &Hardware{
		opts:     opts,
		logger:   opts.Logger.WithPrefix("backend"),
		mixer:    m,
		sink:     sink,
		pool:     NewSourcePool(m),
		streamOf: make(map[int32]int32),
	}
	for i := range h.streams {
		h.streams[i] = &streamSlot{}
	}
	if err := sink.Start(m); err != nil {
		return nil, fmt.Errorf("starting output: %w", err)
	}
	return h, nil
}

// Mixer exposes the underlying mixer.
func (h *Hardware) Mixer() *mixer.Mixer { return h.mixer }

// Pool exposes the source pool.
func (h *Hardware) Pool() *SourcePool { return h.pool }

func (h *Hardware) misuse(msg string, keyvals ...any) {
	h.logger.Error(msg, keyvals...)
	if h.opts.OnMisuse != nil {
		h.opts.OnMisuse(msg)
	}
}

func (h *Hardware) resolve(path string) string {
	if h.opts.ResourceRoot == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.opts.ResourceRoot, path)
}

func (h *Hardware) open(path string) (audio.Decoder, error) {
	dec, err := h.opts.Registry.Open(h.resolve(path))
	if err != nil {
		return nil, err
	}
	return dec, nil
}

func (h *Hardware) SetListenerPosition(pos r3.Vec) { h.mixer.SetListenerPosition(pos) }
func (h *Hardware) SetListenerVelocity(vel r3.Vec) { h.mixer.SetListenerVelocity(vel) }
func (h *Hardware) ListenerPosition() r3.Vec       { return h.mixer.Listener().Position }

func (h *Hardware) SetListenerOrientation(at, up r3.Vec) {
	if err := h.mixer.SetListenerOrientation(at, up); err != nil {
		h.logger.Warn("listener orientation rejected", "err", err)
	}
}

func (h *Hardware) SetListenerVolume(gain float64) {
	if err := h.mixer.SetListenerGain(gain); err != nil {
		h.logger.Warn("listener volume rejected", "err", err)
	}
}

func (h *Hardware) SetDopplerFactor(factor float64) {
	if err := h.mixer.SetDopplerFactor(factor); err != nil {
		h.logger.Warn("doppler factor rejected", "err", err)
	}
}

func (h *Hardware) SetSpeedOfSound(speed float64) {
	if err := h.mixer.SetSpeedOfSound(speed); err != nil {
		h.logger.Warn("speed of sound rejected", "err", err)
	}
}

// RequestNewBuffer decodes at most audio.MaxChunkSize bytes of path into a
// new buffer.
func (h *Hardware) RequestNewBuffer(path string) int32 {
	dec, err := h.open(path)
	if err != nil {
		h.logger.Error("cannot load sound", "path", path, "err", err)
		return Invalid
	}
	defer dec.Close()

	chunk := dec.GetData(0, false)
	if chunk.Size == 0 {
		h.logger.Error("sound has no audio data", "path", path)
		return Invalid
	}
	return h.RequestNewBufferPCM(audio.PCMData{
		Format:     chunk.Format,
		SampleRate: chunk.SampleRate,
		Data:       chunk.Data[:chunk.Size],
	})
}

func (h *Hardware) RequestNewBufferPCM(pcm audio.PCMData) int32 {
	id := h.mixer.GenBuffer()
	if err := h.mixer.BufferData(id, pcm.Format, pcm.SampleRate, pcm.Data); err != nil {
		_ = h.mixer.DeleteBuffer(id)
		h.logger.Error("cannot upload PCM", "format", pcm.Format, "rate", pcm.SampleRate, "err", err)
		return Invalid
	}
	return id
}

func (h *Hardware) DeleteBuffer(buffer int32) {
	if err := h.mixer.DeleteBuffer(buffer); err != nil {
		h.misuse("cannot delete buffer", "buffer", buffer, "err", err)
	}
}

func (h *Hardware) RequestAudioSource(buffer int32, streaming bool) int32 {
	src := h.pool.Allocate()
	if src == 0 {
		h.logger.Warn("maximum number of sources reached", "max", MaxSources)
		return Invalid
	}
	if buffer == 0 && !streaming {
		return src
	}
	if !h.bind(src, buffer, streaming) {
		_ = h.pool.Free(src)
		return Invalid
	}
	return src
}

// bind attaches src to a buffer or stream, releasing any previous stream.
func (h *Hardware) bind(src, buffer int32, streaming bool) bool {
	h.unbindStream(src)

	if !streaming {
		_ = h.mixer.Stop(src)
		if err := h.mixer.SetBuffer(src, buffer); err != nil {
			h.misuse("cannot bind buffer", "source", src, "buffer", buffer, "err", err)
			return false
		}
		return true
	}

	slot, err := h.slot(buffer)
	if err != nil {
		h.misuse("cannot bind stream", "source", src, "stream", buffer, "err", err)
		return false
	}
	if !h.attach(slot, src) {
		h.misuse("cannot bind stream", "source", src, "stream", buffer, "err", ErrStreamBound)
		return false
	}

	h.mu.Lock()
	h.streamOf[src] = buffer
	h.mu.Unlock()
	return true
}

// attach queues the primed ring of slot on src.
func (h *Hardware) attach(slot *streamSlot, src int32) bool {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.source != 0 || slot.dec == nil {
		return false
	}

	_ = h.mixer.Stop(src)
	_ = h.mixer.SetBuffer(src, 0)
	_ = h.mixer.Update(src, func(p *mixer.Params) { p.Looping = false })
	slot.source = src
	slot.last = audio.StateInitial

	live := make([]int32, 0, len(slot.buffers))
	for i := range slot.buffers {
		b := slot.buffers[(slot.ring+i)%len(slot.buffers)]
		if !contains(slot.parked, b) {
			live = append(live, b)
		}
	}
	if err := h.mixer.Queue(src, live...); err != nil {
		h.logger.Error("cannot queue stream buffers", "source", src, "err", err)
	}
	return true
}

func contains(ids []int32, id int32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// unbindStream detaches src from its stream, if any, and rewinds the
// stream so it is ready for the next source.
func (h *Hardware) unbindStream(src int32) {
	h.mu.Lock()
	stream, ok := h.streamOf[src]
	delete(h.streamOf, src)
	h.mu.Unlock()
	if !ok {
		return
	}

	slot := h.streams[stream]
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.source != src || slot.dec == nil {
		return
	}
	slot.detach(h.mixer)
	slot.source = 0
	slot.dec.Seek(0)
	slot.ring = 0
	slot.prime(h.mixer, h.opts.StreamChunkSize)
}

func (h *Hardware) UpdateAudioSource(source, buffer int32, streaming bool) {
	if !h.pool.Owns(source) {
		h.misuse("cannot update source", "source", source, "err", ErrUnknownSource)
		return
	}
	h.bind(source, buffer, streaming)
}

// DeleteAudioSource frees source. A streaming source takes its stream
// with it.
func (h *Hardware) DeleteAudioSource(source int32) {
	if !h.pool.Owns(source) {
		h.misuse("cannot delete source", "source", source, "err", ErrUnknownSource)
		return
	}

	h.mu.Lock()
	stream, ok := h.streamOf[source]
	h.mu.Unlock()
	if ok {
		h.DeleteStream(stream)
	}

	_ = h.mixer.Stop(source)
	if err := h.pool.Free(source); err != nil {
		h.logger.Error("cannot free source", "source", source, "err", err)
	}
}

// streamSlotOf returns the slot feeding source, or nil.
func (h *Hardware) streamSlotOf(source int32) *streamSlot {
	h.mu.Lock()
	defer h.mu.Unlock()
	stream, ok := h.streamOf[source]
	if !ok {
		return nil
	}
	return h.streams[stream]
}

func (h *Hardware) checkSource(op string, source int32) bool {
	if h.pool.Owns(source) {
		return true
	}
	h.misuse("invalid source for "+op, "source", source, "err", ErrUnknownSource)
	return false
}

func (h *Hardware) PlaySource(source int32, looped bool) {
	if !h.checkSource("play", source) {
		return
	}
	if slot := h.streamSlotOf(source); slot != nil {
		slot.mu.Lock()
		if slot.source != source || slot.dec == nil {
			slot.mu.Unlock()
			return
		}
		slot.looped = looped
		// The worker may not have seen the voice run out yet.
		if st, _ := h.mixer.State(source); st == audio.StateStopped && slot.last != audio.StateStopped {
			slot.rewind(h.mixer, h.opts.StreamChunkSize)
		}
		// A stream shorter than the ring parked its tail before looping
		// was asked for.
		if looped {
			slot.unpark(h.mixer, h.opts.StreamChunkSize)
		}
		slot.last = audio.StatePlaying
		err := h.mixer.Play(source)
		slot.mu.Unlock()
		if err != nil {
			h.logger.Error("cannot play source", "source", source, "err", err)
		}
		return
	}
	if err := h.mixer.Update(source, func(p *mixer.Params) { p.Looping = looped }); err != nil {
		h.logger.Error("cannot set looping", "source", source, "err", err)
	}
	if err := h.mixer.Play(source); err != nil {
		h.logger.Error("cannot play source", "source", source, "err", err)
	}
}

func (h *Hardware) PauseSource(source int32) {
	if h.checkSource("pause", source) {
		_ = h.mixer.Pause(source)
	}
}

// StopSource stops source. A streaming source is rewound right away so
// the next play starts from the top.
func (h *Hardware) StopSource(source int32) {
	if !h.checkSource("stop", source) {
		return
	}
	slot := h.streamSlotOf(source)
	if slot == nil {
		_ = h.mixer.Stop(source)
		return
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.source == source && slot.dec != nil {
		slot.rewind(h.mixer, h.opts.StreamChunkSize)
		slot.last = audio.StateStopped
	}
}

// SetPlayingOffset moves playback of source to offset. Streams seek their
// decoder and prime the ring again.
func (h *Hardware) SetPlayingOffset(source int32, offset time.Duration) {
	if !h.checkSource("seek", source) {
		return
	}
	slot := h.streamSlotOf(source)
	if slot == nil {
		if err := h.mixer.SetOffset(source, offset); err != nil {
			h.logger.Warn("cannot set offset", "source", source, "offset", offset, "err", err)
		}
		return
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.source != source || slot.dec == nil {
		return
	}

	state, _ := h.mixer.State(source)
	slot.detach(h.mixer)
	if !slot.dec.Seek(offset) {
		h.logger.Warn("stream seek out of range", "source", source, "offset", offset)
		slot.dec.Seek(0)
	}
	slot.prime(h.mixer, h.opts.StreamChunkSize)
	slot.last = audio.StateStopped
	switch state {
	case audio.StatePlaying:
		_ = h.mixer.Play(source)
		slot.last = audio.StatePlaying
	case audio.StatePaused:
		_ = h.mixer.Play(source)
		_ = h.mixer.Pause(source)
		slot.last = audio.StatePaused
	}
}

func (h *Hardware) SourceState(source int32) audio.State {
	st, err := h.mixer.State(source)
	if err != nil || st == audio.StateInitial {
		return audio.StateStopped
	}
	return st
}

func (h *Hardware) update(op string, source int32, fn func(*mixer.Params)) {
	if !h.checkSource(op, source) {
		return
	}
	if err := h.mixer.Update(source, fn); err != nil {
		h.logger.Warn(op+" rejected", "source", source, "err", err)
	}
}

func (h *Hardware) SetSourcePosition(source int32, pos r3.Vec) {
	h.update("position", source, func(p *mixer.Params) { p.Position = pos })
}

func (h *Hardware) SetSourcePitch(source int32, pitch float64) {
	h.update("pitch", source, func(p *mixer.Params) { p.Pitch = pitch })
}

func (h *Hardware) SetSourceVolume(source int32, gain float64) {
	h.update("volume", source, func(p *mixer.Params) { p.Gain = gain })
}

func (h *Hardware) SetSourceRolloff(source int32, rolloff float64) {
	h.update("rolloff", source, func(p *mixer.Params) { p.Rolloff = rolloff })
}

func (h *Hardware) SetSourceVelocity(source int32, vel r3.Vec) {
	h.update("velocity", source, func(p *mixer.Params) { p.Velocity = vel })
}

func (h *Hardware) Devices() output.DeviceList {
	list, err := output.Devices()
	if err != nil {
		h.logger.Warn("cannot list devices", "err", err)
	}
	return list
}

func (h *Hardware) IsValid() bool { return true }

func (h *Hardware) PrintDebug() {
	var streams []int
	for i, s := range h.streams {
		s.mu.Lock()
		if s.inUse() {
			streams = append(streams, i)
		}
		s.mu.Unlock()
	}

	st := h.mixer.Stats()
	h.logger.Info("audio debug",
		"streams", len(streams),
		"stream_slots", streams,
		"sources_in_use", h.pool.InUse(),
		"sources_created", h.pool.Created(),
		"pool_cap", h.pool.Cap(),
		"buffers", st.Buffers,
		"voices", st.Voices,
		"playing", st.Playing,
	)
}

// Shutdown stops the output, tears every stream down and destroys the
// pooled voices.
func (h *Hardware) Shutdown() error {
	var errs []error
	if err := h.sink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing output: %w", err))
	}

	var g errgroup.Group
	for i := range h.streams {
		g.Go(func() error {
			return h.deleteStream(int32(i))
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	if err := h.pool.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
