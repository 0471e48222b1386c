// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Virtual consumes the reader in real time without a device. Every tick
// reads one period of frames and hands it to the optional tap.
type Virtual struct {
	opts   Options
	period time.Duration
	frames int // per tick

	mu     sync.Mutex
	src    io.Reader
	buf    []byte
	tap    func([]byte)
	quit   chan struct{}
	done   chan struct{}
	closed bool

	played atomic.Int64
	logger *log.Logger
}

func NewVirtual(opts Options) (*Virtual, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	period := opts.bufferSize()
	frames := framesFor(period, opts.SampleRate)
	return &Virtual{
		opts:   opts,
		period: period,
		frames: frames,
		buf:    make([]byte, frames*2*opts.Channels),
		logger: opts.logger(),
	}, nil
}

// Tap registers fn to receive every period after it was read. The slice is
// reused on the next period.
func (v *Virtual) Tap(fn func(pcm []byte)) {
	v.mu.Lock()
	v.tap = fn
	v.mu.Unlock()
}

func (v *Virtual) Start(src io.Reader) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.closed:
		return ErrClosed
	case v.src != nil:
		return ErrAlreadyStarted
	}
	v.src = src
	if v.opts.Manual {
		return nil
	}

	v.quit = make(chan struct{})
	v.done = make(chan struct{})
	go v.run()
	v.logger.Debug("virtual output started", "period", v.period, "frames", v.frames)
	return nil
}

func (v *Virtual) run() {
	defer close(v.done)

	ticker := time.NewTicker(v.period)
	defer ticker.Stop()

	for {
		select {
		case <-v.quit:
			return
		case <-ticker.C:
			v.mu.Lock()
			err := v.pull(v.frames)
			v.mu.Unlock()
			if err != nil {
				v.logger.Error("virtual output read failed", "err", err)
				return
			}
		}
	}
}

// pull reads frames in period sized steps. Caller holds mu.
func (v *Virtual) pull(frames int) error {
	frameSize := 2 * v.opts.Channels
	for frames > 0 {
		n := min(frames, v.frames)
		p := v.buf[:n*frameSize]
		if _, err := io.ReadFull(v.src, p); err != nil {
			return fmt.Errorf("reading %d frames: %w", n, err)
		}
		v.played.Add(int64(n))
		if v.tap != nil {
			v.tap(p)
		}
		frames -= n
	}
	return nil
}

// Pump synchronously reads frames from the source. It is meant for
// manual sinks; on a ticking sink it competes with the ticker for the
// same lock.
func (v *Virtual) Pump(frames int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case v.closed:
		return ErrClosed
	case v.src == nil:
		return fmt.Errorf("pump before start: %w", io.ErrClosedPipe)
	}
	return v.pull(frames)
}

// PumpFor reads d worth of frames.
func (v *Virtual) PumpFor(d time.Duration) error {
	return v.Pump(framesFor(d, v.opts.SampleRate))
}

// Frames reports how many frames have been read so far.
func (v *Virtual) Frames() int64 { return v.played.Load() }

// Played converts Frames to time.
func (v *Virtual) Played() time.Duration {
	return time.Duration(v.Frames() * int64(time.Second) / int64(v.opts.SampleRate))
}

func (v *Virtual) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	quit, done := v.quit, v.done
	v.mu.Unlock()

	if quit != nil {
		close(quit)
		<-done
	}
	return nil
}
