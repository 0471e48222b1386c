// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"fmt"
	"sync"
)

const (
	// PoolGrowth is how many entries the pool adds when it runs full.
	PoolGrowth = 16
	// MaxSources is the hard ceiling on live sources.
	MaxSources = 256
)

// Voices creates, resets and destroys mixer voices.
type Voices interface {
	GenVoice() int32
	ResetVoice(id int32) error
	DeleteVoice(id int32) error
}

// SourcePool recycles voices. ids[:next] are in use and ids[next:] are
// free; a zero entry has never been handed out and gets its voice on first
// use.
type SourcePool struct {
	mu     sync.Mutex
	voices Voices
	ids    []int32
	next   int
}

func NewSourcePool(v Voices) *SourcePool {
	return &SourcePool{voices: v}
}

// Allocate returns a free source, or 0 once MaxSources are in use.
func (p *SourcePool) Allocate() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next == len(p.ids) {
		if len(p.ids) >= MaxSources {
			return 0
		}
		grow := min(PoolGrowth, MaxSources-len(p.ids))
		p.ids = append(p.ids, make([]int32, grow)...)
	}

	if p.ids[p.next] == 0 {
		p.ids[p.next] = p.voices.GenVoice()
	}
	id := p.ids[p.next]
	p.next++
	return id
}

// Free resets the voice to its defaults and returns it to the pool.
func (p *SourcePool) Free(id int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(id)
	if i < 0 {
		return fmt.Errorf("source %d: %w", id, ErrUnknownSource)
	}
	if err := p.voices.ResetVoice(id); err != nil {
		return fmt.Errorf("resetting source %d: %w", id, err)
	}

	last := p.next - 1
	p.ids[i], p.ids[last] = p.ids[last], p.ids[i]
	p.next--
	return nil
}

// Owns reports whether id is currently handed out.
func (p *SourcePool) Owns(id int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index(id) >= 0
}

func (p *SourcePool) index(id int32) int {
	if id <= 0 {
		return -1
	}
	for i := range p.next {
		if p.ids[i] == id {
			return i
		}
	}
	return -1
}

// InUse is the number of sources handed out.
func (p *SourcePool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

// Created is the number of voices the pool has made so far.
func (p *SourcePool) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, id := range p.ids {
		if id != 0 {
			n++
		}
	}
	return n
}

// Cap is the current length of the backing array.
func (p *SourcePool) Cap() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ids)
}

// Close destroys every voice the pool created.
func (p *SourcePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for _, id := range p.ids {
		if id == 0 {
			continue
		}
		if err := p.voices.DeleteVoice(id); err != nil && first == nil {
			first = fmt.Errorf("deleting source %d: %w", id, err)
		}
	}
	p.ids, p.next = nil, 0
	return first
}
