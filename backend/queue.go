// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"time"

	"github.com/ik5/audengine/audio"
)

func (h *Hardware) GenRawBuffer() int32 { return h.mixer.GenBuffer() }

func (h *Hardware) DeleteRawBuffer(buffer int32) {
	if err := h.mixer.DeleteBuffer(buffer); err != nil {
		h.misuse("cannot delete buffer", "buffer", buffer, "err", err)
	}
}

func (h *Hardware) FillBuffer(buffer int32, chunk audio.PCMChunk) bool {
	if err := h.mixer.BufferData(buffer, chunk.Format, chunk.SampleRate, chunk.Data[:chunk.Size]); err != nil {
		h.logger.Error("cannot fill buffer", "buffer", buffer, "err", err)
		return false
	}
	return true
}

func (h *Hardware) QueueBuffers(source int32, buffers ...int32) bool {
	if !h.checkSource("queue", source) {
		return false
	}
	if err := h.mixer.Queue(source, buffers...); err != nil {
		h.logger.Error("cannot queue buffers", "source", source, "err", err)
		return false
	}
	return true
}

func (h *Hardware) UnqueueBuffers(source int32, n int) []int32 {
	if !h.checkSource("unqueue", source) {
		return nil
	}
	ids, err := h.mixer.Unqueue(source, n)
	if err != nil {
		h.logger.Error("cannot unqueue buffers", "source", source, "n", n, "err", err)
		return nil
	}
	return ids
}

func (h *Hardware) ProcessedBuffers(source int32) int {
	n, _ := h.mixer.Processed(source)
	return n
}

func (h *Hardware) QueuedBuffers(source int32) int {
	n, _ := h.mixer.Queued(source)
	return n
}

func (h *Hardware) SourceOffset(source int32) time.Duration {
	d, _ := h.mixer.Offset(source)
	return d
}
