// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/mixer"
)

// MaxStreams is the size of the stream table.
const MaxStreams = 32

// streamSlot feeds one source from a decoder through a ring of buffers.
// A slot is in use iff dec is non-nil. The worker holds mu for one pass;
// every other mutation takes it too.
type streamSlot struct {
	mu sync.Mutex

	dec     audio.Decoder
	buffers []int32
	// ring indexes the buffer at the head of the source queue.
	ring   int
	parked []int32
	source int32
	looped bool
	// last is the voice state seen by the previous pass.
	last audio.State

	running atomic.Bool
	quit    chan struct{}
	done    chan struct{}
}

func (s *streamSlot) inUse() bool { return s.dec != nil }

// fill decodes into every buffer in ring order starting at the head.
// Buffers that get no data are parked. No buffer may be queued.
func (s *streamSlot) fill(m *mixer.Mixer, chunkSize int) []int32 {
	s.parked = s.parked[:0]
	live := make([]int32, 0, len(s.buffers))
	for i := range s.buffers {
		b := s.buffers[(s.ring+i)%len(s.buffers)]
		if !s.upload(m, b, chunkSize) {
			s.parked = append(s.parked, b)
			continue
		}
		live = append(live, b)
	}
	return live
}

// upload decodes the next chunk into b and reports whether it had data.
func (s *streamSlot) upload(m *mixer.Mixer, b int32, chunkSize int) bool {
	chunk := s.dec.GetData(chunkSize, s.looped)
	if chunk.Size == 0 {
		return false
	}
	return m.BufferData(b, chunk.Format, chunk.SampleRate, chunk.Data[:chunk.Size]) == nil
}

// detach empties the bound source queue, leaving the voice stopped.
func (s *streamSlot) detach(m *mixer.Mixer) {
	if s.source == 0 {
		return
	}
	_ = m.Stop(s.source)
	if n, err := m.Processed(s.source); err == nil && n > 0 {
		_, _ = m.Unqueue(s.source, n)
	}
}

// prime refills the whole ring from the current decoder position and
// queues it on the bound source.
func (s *streamSlot) prime(m *mixer.Mixer, chunkSize int) {
	live := s.fill(m, chunkSize)
	if s.source != 0 && len(live) > 0 {
		_ = m.Queue(s.source, live...)
	}
}

// unpark refills parked buffers and queues them behind the live ones in
// the order they were parked, which keeps the queue in ring order. It
// stops at the first buffer that still gets no data.
func (s *streamSlot) unpark(m *mixer.Mixer, chunkSize int) {
	if s.source == 0 {
		return
	}
	n := 0
	for _, b := range s.parked {
		if !s.upload(m, b, chunkSize) {
			break
		}
		_ = m.Queue(s.source, b)
		n++
	}
	s.parked = append(s.parked[:0], s.parked[n:]...)
}

// rewind restarts the stream from the top.
func (s *streamSlot) rewind(m *mixer.Mixer, chunkSize int) bool {
	s.detach(m)
	ok := s.dec.Seek(0)
	s.ring = 0
	s.prime(m, chunkSize)
	return ok
}

// pass runs one worker iteration and reports whether it did any work.
func (s *streamSlot) pass(m *mixer.Mixer, chunkSize int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == 0 || s.dec == nil {
		return false
	}
	state, err := m.State(s.source)
	if err != nil {
		return false
	}

	if state == audio.StateStopped && s.last != audio.StateStopped {
		s.last = state
		s.rewind(m, chunkSize)
		return true
	}
	s.last = state
	if state != audio.StatePlaying && state != audio.StatePaused {
		return false
	}
	if s.looped && len(s.parked) > 0 {
		s.unpark(m, chunkSize)
	}

	processed, err := m.Processed(s.source)
	if err != nil || processed == 0 {
		return false
	}
	done, err := m.Unqueue(s.source, processed)
	if err != nil {
		return false
	}
	for _, b := range done {
		s.ring = (s.ring + 1) % len(s.buffers)
		if !s.upload(m, b, chunkSize) {
			s.parked = append(s.parked, b)
			continue
		}
		_ = m.Queue(s.source, b)
	}
	return true
}

// work runs passes until quit is closed, sleeping interval whenever a
// pass found nothing to do.
func (s *streamSlot) work(m *mixer.Mixer, chunkSize int, interval time.Duration) {
	defer close(s.done)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for s.running.Load() {
		if s.pass(m, chunkSize) {
			continue
		}
		timer.Reset(interval)
		select {
		case <-s.quit:
			return
		case <-timer.C:
		}
	}
}

func (s *streamSlot) start(m *mixer.Mixer, chunkSize int, interval time.Duration) {
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	s.running.Store(true)
	go s.work(m, chunkSize, interval)
}

// stop ends the worker and waits for it.
func (s *streamSlot) stop() {
	if !s.running.Swap(false) {
		return
	}
	close(s.quit)
	<-s.done
}
