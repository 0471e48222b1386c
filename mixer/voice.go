// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"slices"
	"time"

	"github.com/ik5/audengine/audio"
	"gonum.org/v1/gonum/spatial/r3"
)

// Params are the per voice playback parameters.
type Params struct {
	Gain     float64
	Pitch    float64
	Rolloff  float64
	Position r3.Vec
	Velocity r3.Vec
	Looping  bool
}

// DefaultParams is the state of a fresh or reset voice.
func DefaultParams() Params {
	return Params{Gain: 1, Pitch: 1, Rolloff: 1}
}

func (p Params) validate() error {
	switch {
	case p.Gain < 0:
		return fmt.Errorf("gain %v: %w", p.Gain, ErrInvalidValue)
	case p.Pitch <= 0:
		return fmt.Errorf("pitch %v: %w", p.Pitch, ErrInvalidValue)
	case p.Rolloff < 0:
		return fmt.Errorf("rolloff %v: %w", p.Rolloff, ErrInvalidValue)
	}
	return nil
}

type voice struct {
	Params

	state audio.State
	queue []int32
	// processed counts finished buffers at the head of queue.
	processed int
	// cursor is the frame position inside queue[processed].
	cursor float64
	// seeked keeps an offset set while stopped for the next Play.
	seeked bool
}

func (m *Mixer) voice(id int32) (*voice, error) {
	v, ok := m.voices[id]
	if !ok {
		return nil, fmt.Errorf("voice %d: %w", id, ErrUnknownVoice)
	}
	return v, nil
}

// GenVoice creates a voice with default parameters.
func (m *Mixer) GenVoice() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastVoice++
	m.voices[m.lastVoice] = &voice{Params: DefaultParams()}
	return m.lastVoice
}

func (m *Mixer) DeleteVoice(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.voice(id); err != nil {
		return err
	}
	delete(m.voices, id)
	return nil
}

// ResetVoice stops the voice, empties its queue and restores
// DefaultParams.
func (m *Mixer) ResetVoice(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return err
	}
	*v = voice{Params: DefaultParams(), state: audio.StateInitial, queue: v.queue[:0]}
	return nil
}

func (m *Mixer) Params(id int32) (Params, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return Params{}, err
	}
	return v.Params, nil
}

// Update applies fn to a copy of the voice parameters and stores the
// result if it is valid.
func (m *Mixer) Update(id int32, fn func(*Params)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return err
	}
	p := v.Params
	fn(&p)
	if err := p.validate(); err != nil {
		return err
	}
	v.Params = p
	return nil
}

// SetBuffer binds a single buffer to the voice, replacing its queue.
// Buffer 0 unbinds. The voice must not be playing or paused.
func (m *Mixer) SetBuffer(id, buf int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return err
	}
	if v.state == audio.StatePlaying || v.state == audio.StatePaused {
		return fmt.Errorf("voice %d is %v: %w", id, v.state, ErrInvalidValue)
	}
	if buf != 0 {
		if _, ok := m.buffers[buf]; !ok {
			return fmt.Errorf("buffer %d: %w", buf, ErrUnknownBuffer)
		}
	}

	v.queue = v.queue[:0]
	if buf != 0 {
		v.queue = append(v.queue, buf)
	}
	v.processed = 0
	v.cursor = 0
	v.seeked = false
	v.state = audio.StateInitial
	return nil
}

// Queue appends buffers to the voice queue.
func (m *Mixer) Queue(id int32, bufs ...int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return err
	}
	for _, b := range bufs {
		if _, ok := m.buffers[b]; !ok {
			return fmt.Errorf("buffer %d: %w", b, ErrUnknownBuffer)
		}
	}
	v.queue = append(v.queue, bufs...)
	return nil
}

// Unqueue removes n processed buffers from the head of the queue and
// returns their ids.
func (m *Mixer) Unqueue(id int32, n int) ([]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > v.processed {
		return nil, fmt.Errorf("unqueue %d of %d: %w", n, v.processed, ErrNotProcessed)
	}

	out := slices.Clone(v.queue[:n])
	v.queue = slices.Delete(v.queue, 0, n)
	v.processed -= n
	return out, nil
}

// Processed reports how many queued buffers have finished playing.
func (m *Mixer) Processed(id int32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return 0, err
	}
	return v.processed, nil
}

func (m *Mixer) Queued(id int32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return 0, err
	}
	return len(v.queue), nil
}

func (m *Mixer) State(id int32) (audio.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return audio.StateStopped, err
	}
	return v.state, nil
}

// Play starts the voice. A paused voice resumes; any other voice restarts
// from the head of its queue unless an offset was set while stopped.
func (m *Mixer) Play(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return err
	}
	if v.state != audio.StatePaused {
		if !v.seeked {
			v.processed = 0
			v.cursor = 0
		}
		v.seeked = false
	}
	v.state = audio.StatePlaying
	return nil
}

func (m *Mixer) Pause(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return err
	}
	if v.state == audio.StatePlaying {
		v.state = audio.StatePaused
	}
	return nil
}

// Stop halts the voice and marks every queued buffer processed.
func (m *Mixer) Stop(id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return err
	}
	v.stop()
	return nil
}

func (v *voice) stop() {
	v.state = audio.StateStopped
	v.processed = len(v.queue)
	v.cursor = 0
	v.seeked = false
}

// Offset reports the playback position measured from the head of the
// queue, processed buffers included.
func (m *Mixer) Offset(id int32) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return 0, err
	}
	if v.state == audio.StateStopped || v.state == audio.StateInitial && !v.seeked {
		return 0, nil
	}

	var d time.Duration
	for i, bid := range v.queue {
		b := m.buffers[bid]
		if b == nil {
			continue
		}
		if i == v.processed {
			d += time.Duration(v.cursor / float64(b.rate) * float64(time.Second))
			break
		}
		d += b.duration()
	}
	return d, nil
}

// SetOffset moves playback to offset from the head of the queue. On a
// stopped voice the offset applies to the next Play.
func (m *Mixer) SetOffset(id int32, offset time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.voice(id)
	if err != nil {
		return err
	}
	if offset < 0 {
		return fmt.Errorf("offset %v: %w", offset, ErrInvalidOffset)
	}

	left := offset
	for i, bid := range v.queue {
		b := m.buffers[bid]
		if b == nil {
			continue
		}
		if d := b.duration(); left >= d {
			left -= d
			continue
		}
		v.processed = i
		v.cursor = float64(audio.DurationToFrames(left, b.rate))
		if v.state == audio.StateStopped || v.state == audio.StateInitial {
			v.seeked = true
		}
		return nil
	}
	return fmt.Errorf("offset %v: %w", offset, ErrInvalidOffset)
}
