// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/backend"
	"github.com/ik5/audengine/config"
	"github.com/ik5/audengine/formats"
	"github.com/ik5/audengine/mixer"
	"github.com/ik5/audengine/output"
)

var ErrAlreadyInitialized = errors.New("engine already initialized")

// SinkFactory opens the output device for a driver name.
type SinkFactory func(driver string, opts output.Options) (output.Sink, error)

type Option func(*Engine)

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRegistry replaces the default decoder registry.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithSinkFactory replaces output.Open, mainly for tests.
func WithSinkFactory(f SinkFactory) Option {
	return func(e *Engine) { e.openSink = f }
}

// Engine dispatches every call to the active backend. Before Init and
// after Shutdown that is backend.Null.
//
// Init and Shutdown must not run concurrently with other calls.
type Engine struct {
	backend.Backend

	cfg      config.Config
	logger   *log.Logger
	registry *audio.Registry
	openSink SinkFactory

	mu      sync.Mutex
	sink    output.Sink
	started bool
}

func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		Backend:  backend.Null{},
		cfg:      cfg,
		openSink: output.Open,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.registry == nil {
		e.registry = formats.Default()
	}
	return e
}

// Init brings up the hardware backend. On failure the engine keeps
// running on the null backend and the cause is returned.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyInitialized
	}
	e.started = true

	hw, err := e.hardware()
	if err != nil {
		e.logger.Warn("audio disabled, using null backend", "err", err)
		e.Backend = backend.Null{}
		return err
	}
	e.Backend = hw
	e.logger.Info("audio initialized",
		"driver", e.cfg.Driver, "rate", e.cfg.SampleRate, "channels", e.cfg.Channels)
	return nil
}

func (e *Engine) hardware() (*backend.Hardware, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := mixer.New(e.cfg.SampleRate, e.cfg.Channels)
	if err != nil {
		return nil, fmt.Errorf("creating mixer: %w", err)
	}
	sink, err := e.openSink(e.cfg.Driver, output.Options{
		SampleRate: e.cfg.SampleRate,
		Channels:   e.cfg.Channels,
		BufferSize: e.cfg.OutputBufferSize,
		Device:     e.cfg.PreferredDevice,
		Logger:     e.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s output: %w", e.cfg.Driver, err)
	}

	hw, err := backend.NewHardware(m, sink, backend.Options{
		ResourceRoot:    e.cfg.ResourceRoot,
		StreamBuffers:   e.cfg.StreamBuffers,
		StreamChunkSize: e.cfg.StreamChunkSize,
		StreamInterval:  e.cfg.StreamInterval,
		Registry:        e.registry,
		Logger:          e.logger,
		OnMisuse:        onMisuse,
	})
	if err != nil {
		_ = sink.Close()
		return nil, err
	}
	e.sink = sink
	return hw, nil
}

func onMisuse(msg string) {
	if Debug {
		panic("audengine: " + msg)
	}
}

// Shutdown tears the active backend down and returns to the null backend.
// The engine can be initialized again afterwards.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.Backend.Shutdown()
	e.Backend = backend.Null{}
	e.sink = nil
	e.started = false
	if err != nil {
		return fmt.Errorf("shutting down audio: %w", err)
	}
	return nil
}

// Sink returns the output in use, nil on the null backend.
func (e *Engine) Sink() output.Sink {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink
}

func (e *Engine) Config() config.Config { return e.cfg }

func (e *Engine) Registry() *audio.Registry { return e.registry }

// Devices lists the system devices even on the null backend.
func (e *Engine) Devices() output.DeviceList {
	if e.IsValid() {
		return e.Backend.Devices()
	}
	list, err := output.Devices()
	if err != nil {
		e.logger.Warn("cannot list devices", "err", err)
	}
	return list
}
