// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Driver names accepted by Open.
const (
	DriverOto     = "oto"
	DriverMalgo   = "malgo"
	DriverVirtual = "virtual"
)

// DefaultBufferSize is the device buffer used when Options leaves it zero.
const DefaultBufferSize = 40 * time.Millisecond

// Sink pulls signed 16 bit little endian frames from a reader.
// The reader is called from the sink's own goroutine only.
type Sink interface {
	Start(src io.Reader) error
	Close() error
}

type Options struct {
	SampleRate int
	Channels   int
	// BufferSize is the device latency. For the virtual driver it is the
	// tick period.
	BufferSize time.Duration
	// Device names a malgo playback device. Empty or unknown names fall
	// back to the system default.
	Device string
	// Manual stops the virtual driver from ticking; the caller advances
	// it with Pump instead.
	Manual bool
	Logger *log.Logger
}

func (o Options) validate() error {
	if o.SampleRate <= 0 {
		return fmt.Errorf("sample rate %d: %w", o.SampleRate, ErrInvalidFormat)
	}
	if o.Channels != 1 && o.Channels != 2 {
		return fmt.Errorf("%d channels: %w", o.Channels, ErrInvalidFormat)
	}
	return nil
}

func (o Options) bufferSize() time.Duration {
	if o.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return o.BufferSize
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger.WithPrefix("output")
	}
	return log.Default().WithPrefix("output")
}

// framesFor converts a duration to whole frames, never less than one.
func framesFor(d time.Duration, rate int) int {
	return max(1, int(int64(d)*int64(rate)/int64(time.Second)))
}

// Open creates the sink for driver. Driver names are case insensitive.
func Open(driver string, opts Options) (Sink, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(driver) {
	case DriverOto:
		return NewOto(opts)
	case DriverMalgo:
		return NewMalgo(opts)
	case DriverVirtual:
		return NewVirtual(opts)
	}
	return nil, fmt.Errorf("%q: %w", driver, ErrUnknownDriver)
}
