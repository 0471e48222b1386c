// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"sync"

	"github.com/ik5/audengine/audio"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultSpeedOfSound is in units per second, with one unit meaning one
// metre.
const DefaultSpeedOfSound = 343.3

// Listener is the point all positional voices are heard from.
type Listener struct {
	Position r3.Vec
	Velocity r3.Vec
	// At and Up give the orientation; they need not be normalised.
	At   r3.Vec
	Up   r3.Vec
	Gain float64
}

func defaultListener() Listener {
	return Listener{
		At:   r3.Vec{Z: -1},
		Up:   r3.Vec{Y: 1},
		Gain: 1,
	}
}

type Mixer struct {
	mu sync.Mutex

	rate     int
	channels int

	buffers    map[int32]*buffer
	voices     map[int32]*voice
	lastBuffer int32
	lastVoice  int32

	listener     Listener
	doppler      float64
	speedOfSound float64

	// Only touched by the single device reader.
	out []float32
}

// New creates a mixer producing rate Hz output with one or two channels.
func New(rate, channels int) (*Mixer, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("sample rate %d: %w", rate, ErrInvalidValue)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%d channels: %w", channels, audio.ErrUnsupportedChannels)
	}
	return &Mixer{
		rate:         rate,
		channels:     channels,
		buffers:      make(map[int32]*buffer),
		voices:       make(map[int32]*voice),
		listener:     defaultListener(),
		doppler:      1,
		speedOfSound: DefaultSpeedOfSound,
	}, nil
}

func (m *Mixer) SampleRate() int { return m.rate }
func (m *Mixer) Channels() int   { return m.channels }

func (m *Mixer) Listener() Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listener
}

func (m *Mixer) SetListenerPosition(p r3.Vec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener.Position = p
}

func (m *Mixer) SetListenerVelocity(v r3.Vec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener.Velocity = v
}

// SetListenerOrientation rejects a zero or parallel at/up pair.
func (m *Mixer) SetListenerOrientation(at, up r3.Vec) error {
	if r3.Norm(r3.Cross(at, up)) == 0 {
		return fmt.Errorf("orientation %v/%v: %w", at, up, ErrInvalidValue)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener.At = at
	m.listener.Up = up
	return nil
}

func (m *Mixer) SetListenerGain(g float64) error {
	if g < 0 {
		return fmt.Errorf("listener gain %v: %w", g, ErrInvalidValue)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener.Gain = g
	return nil
}

func (m *Mixer) SetDopplerFactor(f float64) error {
	if f < 0 {
		return fmt.Errorf("doppler factor %v: %w", f, ErrInvalidValue)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doppler = f
	return nil
}

func (m *Mixer) SetSpeedOfSound(s float64) error {
	if s <= 0 {
		return fmt.Errorf("speed of sound %v: %w", s, ErrInvalidValue)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speedOfSound = s
	return nil
}

// Stats is a snapshot of table usage.
type Stats struct {
	Buffers int
	Voices  int
	Playing int
}

func (m *Mixer) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{Buffers: len(m.buffers), Voices: len(m.voices)}
	for _, v := range m.voices {
		if v.state == audio.StatePlaying {
			s.Playing++
		}
	}
	return s
}
