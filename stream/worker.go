// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"slices"
	"time"

	"github.com/ik5/audengine/audio"
)

// worker owns the buffer ids for one run of a stream.
type worker struct {
	s    *SoundStream
	quit chan struct{}

	buffers     [bufferCount]int32
	samples     [bufferCount]int64
	scratch     []byte
	stopPending bool
}

func (w *worker) run(done chan struct{}) {
	defer close(done)
	s := w.s

	if !w.sleep(s.opts.ProcessingInterval) {
		w.cleanup(false)
		return
	}

	for i := range w.buffers {
		w.buffers[i] = s.dev.GenRawBuffer()
	}
	w.fillQueue()

	s.dev.PlaySource(s.source, false)
	s.mu.Lock()
	paused := s.startState == audio.StatePaused
	s.mu.Unlock()
	if paused {
		s.dev.PauseSource(s.source)
	}

	for w.sleep(s.opts.ProcessingInterval) {
		if !w.step() {
			break
		}
	}
	w.cleanup(true)
}

// sleep waits d and reports false when the worker was told to quit.
func (w *worker) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-w.quit:
		return false
	case <-t.C:
		return true
	}
}

// step refills retired buffers. It returns false once the stream has
// drained after its last chunk.
func (w *worker) step() bool {
	s := w.s
	state := s.dev.SourceState(s.source)

	for n := s.dev.ProcessedBuffers(s.source); n > 0; n-- {
		ids := s.dev.UnqueueBuffers(s.source, 1)
		if len(ids) == 0 {
			break
		}
		idx := slices.Index(w.buffers[:], ids[0])
		if idx < 0 {
			continue
		}

		s.mu.Lock()
		if seek := s.bufferSeeks[idx]; seek != NoLoop {
			s.processed = seek
			s.bufferSeeks[idx] = NoLoop
		} else {
			s.processed += w.samples[idx]
		}
		s.mu.Unlock()

		if !w.stopPending && w.fill(idx, false) {
			w.stopPending = true
		}
	}

	if state != audio.StateStopped {
		return true
	}
	if s.dev.QueuedBuffers(s.source) == 0 {
		return false
	}
	// Starved: the device ran through the queue before the refill.
	s.dev.PlaySource(s.source, false)
	return true
}

// fillQueue performs the initial burst.
func (w *worker) fillQueue() {
	for i := range w.buffers {
		if w.stopPending {
			return
		}
		w.stopPending = w.fill(i, true)
	}
}

// fill asks the callbacks for the next chunk, uploads it into buffer idx
// and queues it. It reports whether the stream should stop after this
// buffer.
func (w *worker) fill(idx int, immediateLoop bool) bool {
	s := w.s
	stop := false

	var data []int16
	for retry := 0; ; retry++ {
		var more bool
		data, more = s.cb.OnGetData()
		if more || retry >= bufferRetries {
			break
		}

		if !s.Loop() {
			if len(data) > 0 {
				s.setSeek(idx, 0)
			}
			stop = true
			break
		}

		s.setSeek(idx, s.onLoop())
		if len(data) > 0 {
			break
		}
		if immediateLoop {
			s.mu.Lock()
			if seek := s.bufferSeeks[idx]; seek != NoLoop {
				s.processed = seek
				s.bufferSeeks[idx] = NoLoop
			}
			s.mu.Unlock()
		}
	}

	if len(data) == 0 {
		return true
	}

	w.scratch = audio.Int16Bytes(w.scratch, data)
	chunk := audio.PCMChunk{
		Format:     s.format,
		SampleRate: s.opts.SampleRate,
		Size:       len(w.scratch),
		Data:       w.scratch,
	}
	if !s.dev.FillBuffer(w.buffers[idx], chunk) {
		return true
	}
	w.samples[idx] = int64(len(data))
	s.dev.QueueBuffers(s.source, w.buffers[idx])
	return stop
}

func (w *worker) cleanup(started bool) {
	s := w.s
	if started {
		s.dev.StopSource(s.source)
		if n := s.dev.QueuedBuffers(s.source); n > 0 {
			s.dev.UnqueueBuffers(s.source, n)
		}
		for _, b := range w.buffers {
			s.dev.DeleteRawBuffer(b)
		}
	}

	s.mu.Lock()
	s.streaming = false
	s.processed = 0
	s.mu.Unlock()
}

func (s *SoundStream) setSeek(idx int, v int64) {
	s.mu.Lock()
	s.bufferSeeks[idx] = v
	s.mu.Unlock()
}

func (s *SoundStream) onLoop() int64 {
	if l, ok := s.cb.(Looper); ok {
		return l.OnLoop()
	}
	s.cb.OnSeek(0)
	return 0
}
