// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process; every Oto sink shares it.
var (
	otoMu      sync.Mutex
	otoCtx     *oto.Context
	otoRate    int
	otoChannel int
)

func otoContext(opts Options) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != opts.SampleRate || otoChannel != opts.Channels {
			return nil, fmt.Errorf("have %d Hz/%d ch, want %d Hz/%d ch: %w",
				otoRate, otoChannel, opts.SampleRate, opts.Channels, ErrContextMismatch)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: opts.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   opts.bufferSize(),
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	otoCtx, otoRate, otoChannel = ctx, opts.SampleRate, opts.Channels
	return ctx, nil
}

// Oto plays through the shared oto context.
type Oto struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	closed bool
	logger *log.Logger
}

func NewOto(opts Options) (*Oto, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ctx, err := otoContext(opts)
	if err != nil {
		return nil, err
	}
	return &Oto{ctx: ctx, logger: opts.logger()}, nil
}

func (o *Oto) Start(src io.Reader) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.closed:
		return ErrClosed
	case o.player != nil:
		return ErrAlreadyStarted
	}

	o.player = o.ctx.NewPlayer(src)
	o.player.Play()
	o.logger.Debug("oto player started")
	return nil
}

func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	if o.player == nil {
		return nil
	}

	o.player.Pause()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("closing oto player: %w", err)
	}
	return nil
}
