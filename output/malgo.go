// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/malgo"
)

// DeviceList holds the names reported by the system, default first.
type DeviceList struct {
	Playback []string
	Capture  []string
}

// Devices enumerates playback and capture devices through miniaudio.
func Devices() (DeviceList, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return DeviceList{}, fmt.Errorf("malgo context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	var list DeviceList
	for _, kind := range []malgo.DeviceType{malgo.Playback, malgo.Capture} {
		infos, err := ctx.Devices(kind)
		if err != nil {
			return DeviceList{}, fmt.Errorf("listing devices of type %d: %w", kind, err)
		}
		names := deviceNames(infos)
		if kind == malgo.Playback {
			list.Playback = names
		} else {
			list.Capture = names
		}
	}
	return list, nil
}

func deviceNames(infos []malgo.DeviceInfo) []string {
	names := make([]string, len(infos))
	defaults := make([]bool, len(infos))
	for i := range infos {
		names[i] = infos[i].Name()
		defaults[i] = infos[i].IsDefault != 0
	}
	return defaultFirst(names, defaults)
}

// defaultFirst moves the first default device to the front.
func defaultFirst(names []string, defaults []bool) []string {
	for i, def := range defaults {
		if def {
			names[0], names[i] = names[i], names[0]
			break
		}
	}
	return names
}

// pickDevice returns the index of the device called name, or -1.
// Matching ignores surrounding blanks.
func pickDevice(names []string, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1
	}
	for i, n := range names {
		if strings.TrimSpace(n) == name {
			return i
		}
	}
	return -1
}

// Malgo plays through a miniaudio playback device.
type Malgo struct {
	mu     sync.Mutex
	opts   Options
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	closed bool
	logger *log.Logger
}

func NewMalgo(opts Options) (*Malgo, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}
	return &Malgo{opts: opts, ctx: ctx, logger: opts.logger()}, nil
}

func (m *Malgo) Start(src io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.closed:
		return ErrClosed
	case m.device != nil:
		return ErrAlreadyStarted
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(m.opts.Channels)
	cfg.SampleRate = uint32(m.opts.SampleRate)
	cfg.PeriodSizeInMilliseconds = uint32(m.opts.bufferSize().Milliseconds())
	cfg.Alsa.NoMMap = 1

	if m.opts.Device != "" {
		infos, err := m.ctx.Devices(malgo.Playback)
		if err != nil {
			m.logger.Warn("listing playback devices", "err", err)
		}
		names := make([]string, len(infos))
		for i := range infos {
			names[i] = infos[i].Name()
		}
		if i := pickDevice(names, m.opts.Device); i >= 0 {
			cfg.Playback.DeviceID = infos[i].ID.Pointer()
			m.logger.Info("using preferred device", "device", m.opts.Device)
		} else {
			m.logger.Warn("preferred device not found, using default",
				"device", m.opts.Device, "err", ErrDeviceNotFound)
		}
	}

	frameSize := 2 * m.opts.Channels
	onData := func(out, _ []byte, frames uint32) {
		n := min(len(out), int(frames)*frameSize)
		if _, err := io.ReadFull(src, out[:n]); err != nil {
			clear(out[:n])
		}
	}

	device, err := malgo.InitDevice(m.ctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		return fmt.Errorf("malgo device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("starting malgo device: %w", err)
	}

	m.device = device
	m.logger.Debug("malgo device started", "rate", m.opts.SampleRate, "channels", m.opts.Channels)
	return nil
}

func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.device != nil {
		_ = m.device.Stop()
		m.device.Uninit()
		m.device = nil
	}
	err := m.ctx.Uninit()
	m.ctx.Free()
	if err != nil {
		return fmt.Errorf("closing malgo context: %w", err)
	}
	return nil
}
