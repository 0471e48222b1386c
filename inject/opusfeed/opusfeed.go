// SPDX-License-Identifier: EPL-2.0

// Package opusfeed decodes Opus voice packets into an inject.Injector. It
// links libopus through cgo, so it lives apart from the injector itself.
package opusfeed

import (
	"errors"
	"fmt"

	"gopkg.in/hraban/opus.v2"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/inject"
)

// maxFrame is the largest frame an Opus packet can carry per channel
// (120ms at 48kHz).
const maxFrame = 5760

var (
	ErrEmptyPacket = errors.New("empty opus packet")
	ErrFormat      = errors.New("opus feed needs a 16-bit format")
)

// Feed decodes Opus packets into an Injector.
type Feed struct {
	inj *inject.Injector
	dec *opus.Decoder
	pcm []int16
	buf []byte
}

// New binds a decoder to inj. The injector format must be 16-bit; its
// rate must be one Opus supports (8, 12, 16, 24 or 48 kHz).
func New(inj *inject.Injector) (*Feed, error) {
	if inj.Format().BitDepth() != 16 {
		return nil, fmt.Errorf("%v: %w", inj.Format(), ErrFormat)
	}

	ch := inj.Format().Channels()
	dec, err := opus.NewDecoder(inj.SampleRate(), ch)
	if err != nil {
		return nil, fmt.Errorf("creating opus decoder: %w", err)
	}

	return &Feed{
		inj: inj,
		dec: dec,
		pcm: make([]int16, maxFrame*ch),
	}, nil
}

// Push decodes one packet and hands the PCM to the injector. It returns
// the number of frames pushed.
func (f *Feed) Push(packet []byte) (int, error) {
	if len(packet) == 0 {
		return 0, ErrEmptyPacket
	}

	n, err := f.dec.Decode(packet, f.pcm)
	if err != nil {
		return 0, fmt.Errorf("decoding opus packet: %w", err)
	}

	ch := f.inj.Format().Channels()
	f.buf = audio.Int16Bytes(f.buf[:0], f.pcm[:n*ch])
	f.inj.UpdateBuffer(f.buf)
	return n, nil
}

// Injector returns the injector fed by f.
func (f *Feed) Injector() *inject.Injector { return f.inj }
