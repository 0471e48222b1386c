// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/backend"
)

const (
	// NoLoop marks a buffer that does not end a loop iteration.
	NoLoop int64 = -1
	// DefaultProcessingInterval is how often the worker polls the device.
	DefaultProcessingInterval = 10 * time.Millisecond

	bufferCount   = 3
	bufferRetries = 2
)

// Callbacks produce the stream contents. OnGetData returns interleaved
// samples and false once the stream has ended; the samples returned with
// false are still played. The slice may be reused after the next call.
type Callbacks interface {
	OnGetData() ([]int16, bool)
	OnSeek(offset time.Duration)
}

// Looper lets a stream loop somewhere other than the start. OnLoop
// returns the sample offset playback continues from, or NoLoop.
type Looper interface {
	OnLoop() int64
}

// Device is the part of the engine a stream plays through.
type Device interface {
	RequestAudioSource(buffer int32, streaming bool) int32
	DeleteAudioSource(source int32)
	PlaySource(source int32, looped bool)
	PauseSource(source int32)
	StopSource(source int32)
	SourceState(source int32) audio.State
	backend.Queue
}

type Options struct {
	Channels   int
	SampleRate int
	Loop       bool
	// ProcessingInterval defaults to DefaultProcessingInterval.
	ProcessingInterval time.Duration
	Logger             *log.Logger
}

// SoundStream is the caller driven counterpart of an engine stream.
type SoundStream struct {
	dev    Device
	cb     Callbacks
	source int32
	format audio.Format
	opts   Options
	logger *log.Logger

	mu          sync.Mutex
	streaming   bool
	startState  audio.State
	bufferSeeks [bufferCount]int64
	processed   int64 // samples
	loop        bool
	closed      bool
	quit        chan struct{}
	done        chan struct{}

	onClose func() error
}

func New(dev Device, cb Callbacks, opts Options) (*SoundStream, error) {
	format, err := audio.NewFormat(opts.Channels, 16)
	if err != nil || opts.SampleRate <= 0 {
		return nil, ErrInvalidFormat
	}
	if opts.ProcessingInterval <= 0 {
		opts.ProcessingInterval = DefaultProcessingInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	src := dev.RequestAudioSource(0, false)
	if src == backend.Invalid {
		return nil, ErrNoSource
	}
	return &SoundStream{
		dev:        dev,
		cb:         cb,
		source:     src,
		format:     format,
		opts:       opts,
		logger:     opts.Logger.WithPrefix("stream"),
		startState: audio.StateStopped,
		loop:       opts.Loop,
	}, nil
}

func (s *SoundStream) Source() int32   { return s.source }
func (s *SoundStream) Channels() int   { return s.opts.Channels }
func (s *SoundStream) SampleRate() int { return s.opts.SampleRate }

// Play starts the stream, or resumes it when paused.
func (s *SoundStream) Play() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.streaming && s.startState == audio.StatePaused {
		s.startState = audio.StatePlaying
		s.mu.Unlock()
		s.dev.PlaySource(s.source, false)
		return
	}
	s.mu.Unlock()

	s.Stop()
	s.launch(audio.StatePlaying)
}

func (s *SoundStream) Pause() {
	s.mu.Lock()
	if !s.streaming {
		s.mu.Unlock()
		return
	}
	s.startState = audio.StatePaused
	s.mu.Unlock()
	s.dev.PauseSource(s.source)
}

// Stop ends playback and rewinds the callbacks.
func (s *SoundStream) Stop() {
	s.join()
	s.cb.OnSeek(0)
}

func (s *SoundStream) Status() audio.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.streaming:
		return audio.StateStopped
	case s.startState == audio.StatePaused:
		return audio.StatePaused
	default:
		return audio.StatePlaying
	}
}

func (s *SoundStream) SetLoop(loop bool) {
	s.mu.Lock()
	s.loop = loop
	s.mu.Unlock()
}

func (s *SoundStream) Loop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

// PlayingPosition is the time played since the start of the stream.
func (s *SoundStream) PlayingPosition() time.Duration {
	s.mu.Lock()
	streaming, processed := s.streaming, s.processed
	s.mu.Unlock()
	if !streaming {
		return 0
	}
	frames := processed / int64(s.opts.Channels)
	return s.dev.SourceOffset(s.source) + audio.FramesToDuration(int(frames), s.opts.SampleRate)
}

// SetPlayingPosition restarts the stream at offset in its current state.
func (s *SoundStream) SetPlayingPosition(offset time.Duration) {
	state := s.Status()
	s.join()
	s.cb.OnSeek(offset)

	s.mu.Lock()
	s.processed = audio.DurationToFrames(offset, s.opts.SampleRate) * int64(s.opts.Channels)
	s.mu.Unlock()

	if state != audio.StateStopped {
		s.launch(state)
	}
}

// Close stops the stream and releases its source.
func (s *SoundStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.join()
	s.dev.DeleteAudioSource(s.source)
	if s.onClose != nil {
		return s.onClose()
	}
	return nil
}

// launch starts a worker unless one is still running.
func (s *SoundStream) launch(state audio.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.running() {
		return
	}
	s.streaming = true
	s.startState = state
	for i := range s.bufferSeeks {
		s.bufferSeeks[i] = NoLoop
	}
	s.quit = make(chan struct{})
	s.done = make(chan struct{})

	w := &worker{s: s, quit: s.quit}
	go w.run(s.done)
}

// running reports whether the last worker has yet to finish. Callers hold mu.
func (s *SoundStream) running() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// join stops the worker, if any, and waits for it to clean up. Every
// caller waits, not just the one that closes quit.
func (s *SoundStream) join() {
	s.mu.Lock()
	quit, done := s.quit, s.done
	s.quit = nil
	s.mu.Unlock()

	if quit != nil {
		close(quit)
	}
	if done != nil {
		<-done
	}
}
