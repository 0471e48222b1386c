// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"errors"
	"fmt"

	"github.com/ik5/audengine/audio"
)

// RequestNewStream opens path and returns a stream slot for it.
func (h *Hardware) RequestNewStream(path string) int32 {
	dec, err := h.open(path)
	if err != nil {
		h.logger.Error("cannot open stream", "path", path, "err", err)
		return Invalid
	}
	return h.RequestNewStreamFromDecoder(dec)
}

func (h *Hardware) RequestNewStreamFromDecoder(dec audio.Decoder) int32 {
	if dec == nil {
		h.misuse("nil stream decoder")
		return Invalid
	}

	slot, id := h.reserve(dec)
	if slot == nil {
		h.logger.Warn("maximum number of streams reached", "max", MaxStreams)
		_ = dec.Close()
		return Invalid
	}

	slot.mu.Lock()
	slot.buffers = make([]int32, h.opts.StreamBuffers)
	for i := range slot.buffers {
		slot.buffers[i] = h.mixer.GenBuffer()
	}
	slot.ring = 0
	slot.parked = slot.parked[:0]
	slot.source = 0
	slot.looped = false
	slot.last = audio.StateInitial
	slot.prime(h.mixer, h.opts.StreamChunkSize)
	slot.mu.Unlock()

	slot.start(h.mixer, h.opts.StreamChunkSize, h.opts.StreamInterval)
	return id
}

// reserve claims the next free slot for dec, scanning at most MaxStreams
// entries from the cursor.
func (h *Hardware) reserve(dec audio.Decoder) (*streamSlot, int32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for probe := range MaxStreams {
		i := (h.cursor + probe) % MaxStreams
		s := h.streams[i]

		s.mu.Lock()
		free := !s.inUse()
		if free {
			s.dec = dec
		}
		s.mu.Unlock()

		if free {
			h.cursor = (i + 1) % MaxStreams
			return s, int32(i)
		}
	}
	return nil, Invalid
}

func (h *Hardware) slot(stream int32) (*streamSlot, error) {
	if stream < 0 || stream >= MaxStreams {
		return nil, fmt.Errorf("stream %d: %w", stream, ErrUnknownStream)
	}
	s := h.streams[stream]
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inUse() {
		return nil, fmt.Errorf("stream %d: %w", stream, ErrUnknownStream)
	}
	return s, nil
}

func (h *Hardware) DeleteStream(stream int32) {
	if _, err := h.slot(stream); err != nil {
		h.misuse("cannot delete stream", "stream", stream, "err", err)
		return
	}
	if err := h.deleteStream(stream); err != nil {
		h.logger.Error("stream teardown", "stream", stream, "err", err)
	}
}

// deleteStream joins the worker, releases the buffers and the decoder and
// frees the slot. Free slots are left alone.
func (h *Hardware) deleteStream(stream int32) error {
	s := h.streams[stream]
	s.stop()

	s.mu.Lock()
	if !s.inUse() {
		s.mu.Unlock()
		return nil
	}

	src := s.source
	s.detach(h.mixer)
	s.source = 0

	var errs []error
	for _, b := range s.buffers {
		if err := h.mixer.DeleteBuffer(b); err != nil {
			errs = append(errs, fmt.Errorf("deleting buffer %d: %w", b, err))
		}
	}
	if err := s.dec.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing decoder: %w", err))
	}
	s.dec = nil
	s.buffers = nil
	s.parked = nil
	s.ring = 0
	s.looped = false
	s.mu.Unlock()

	if src != 0 {
		h.mu.Lock()
		delete(h.streamOf, src)
		h.mu.Unlock()
	}
	return errors.Join(errs...)
}

// StreamsInUse counts the occupied stream slots.
func (h *Hardware) StreamsInUse() int {
	n := 0
	for _, s := range h.streams {
		s.mu.Lock()
		if s.inUse() {
			n++
		}
		s.mu.Unlock()
	}
	return n
}
