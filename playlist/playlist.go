// SPDX-License-Identifier: EPL-2.0

package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/formats"
	"github.com/ik5/audengine/stream"
)

const (
	MaxFiles   = 50
	MaxBuffers = 3

	SampleRate = 48000
	Channels   = 2

	// MaxTrackDuration caps how much of a single file is decoded.
	MaxTrackDuration = 15 * time.Minute

	// chunkSamples is 1/30 s of stereo audio, the most GetData returns.
	chunkSamples = SampleRate / 30 * Channels
)

const maxTrackSamples = int(MaxTrackDuration/time.Second) * SampleRate * Channels

type Options struct {
	// Registry picks decoders by extension; formats.Default() when nil.
	Registry *audio.Registry
	// Resample converts tracks that are not stereo 16 bit at SampleRate
	// instead of skipping them.
	Resample bool
	Logger   *log.Logger
}

// Playlist is a gapless music player producing stereo 16 bit PCM at
// SampleRate.
type Playlist struct {
	registry *audio.Registry
	resample bool
	logger   *log.Logger
	silence  []int16

	mu        sync.Mutex
	files     []string
	fileIndex int
	slots     [MaxBuffers][]int16
	in, out   int
	offset    int
	load      bool

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ stream.Callbacks = (*Playlist)(nil)

// New starts the loader goroutine. Close stops it.
func New(opts Options) *Playlist {
	if opts.Registry == nil {
		opts.Registry = formats.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	p := &Playlist{
		registry: opts.Registry,
		resample: opts.Resample,
		logger:   opts.Logger.WithPrefix("playlist"),
		silence:  make([]int16, chunkSamples),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// AddPath appends a file to the end of the list.
func (p *Playlist) AddPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		p.logger.Warn("not added to playlist, file doesn't exist", "path", path)
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.files) >= MaxFiles {
		p.logger.Warn("not added to playlist, max files reached", "path", path, "max", MaxFiles)
		return fmt.Errorf("%s: %w", path, ErrTooManyFiles)
	}
	p.files = append(p.files, path)
	return nil
}

// TrackList returns the base names of the queued files in play order.
func (p *Playlist) TrackList() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.files))
	for i, f := range p.files {
		names[i] = filepath.Base(f)
	}
	return names
}

// Precache starts loading ahead of the first GetData.
func (p *Playlist) Precache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.files) > 0 && p.in == p.out {
		p.requestLoad()
	}
}

// GetData returns the next block of interleaved samples. It never blocks
// and never ends; while nothing is loaded it returns silence. The slice
// is only valid until the next call.
func (p *Playlist) GetData() []int16 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.in == p.out {
		if len(p.files) > 0 {
			p.requestLoad()
		}
		return p.silence
	}

	slot := p.slots[p.out]
	n := min(len(slot)-p.offset, chunkSamples)
	data := slot[p.offset : p.offset+n]

	p.offset += n
	if p.offset >= len(slot) {
		// Loading any earlier would overwrite the slot being played.
		if p.ahead() == 2 {
			p.requestLoad()
		} else {
			p.load = false
		}
		p.offset = 0
		p.out = (p.out + 1) % MaxBuffers
	}
	return data
}

func (p *Playlist) OnGetData() ([]int16, bool) { return p.GetData(), true }

// OnSeek does nothing: a playlist only moves forward.
func (p *Playlist) OnSeek(time.Duration) {}

// Close stops the loader and waits for it.
func (p *Playlist) Close() error {
	p.closeOnce.Do(func() {
		close(p.quit)
		<-p.done
	})
	return nil
}

// ahead is how many loaded slots wait in front of playback. Callers hold
// p.mu.
func (p *Playlist) ahead() int {
	return (p.in + MaxBuffers - p.out) % MaxBuffers
}

// requestLoad wakes the loader. Callers hold p.mu.
func (p *Playlist) requestLoad() {
	p.load = true
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Playlist) wantLoad() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load && len(p.files) > 0
}

func (p *Playlist) run() {
	defer close(p.done)
	for {
		select {
		case <-p.quit:
			return
		case <-p.wake:
		}

		for p.wantLoad() {
			p.loadNext()
			select {
			case <-p.quit:
				return
			default:
			}
		}
	}
}

// loadNext decodes the file at the current index into the next free slot.
// A file that cannot be used is skipped and loading pauses until the next
// request.
func (p *Playlist) loadNext() {
	p.mu.Lock()
	path := p.files[p.fileIndex]
	p.mu.Unlock()

	samples, err := p.decode(path)
	if err != nil {
		p.logger.Warn("skipping track", "path", path, "err", err)
		p.mu.Lock()
		p.fileIndex = (p.fileIndex + 1) % len(p.files)
		p.load = false
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.fileIndex = (p.fileIndex + 1) % len(p.files)
	p.slots[p.in] = samples
	p.in = (p.in + 1) % MaxBuffers
	p.load = p.ahead() != 2
	p.logger.Debug("track loaded", "path", path, "duration",
		audio.FramesToDuration(len(samples)/Channels, SampleRate))
}

func (p *Playlist) decode(path string) ([]int16, error) {
	dec, err := p.registry.Open(path)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var samples []int16
	if dec.Format() == audio.FormatStereo16 && dec.SampleRate() == SampleRate {
		for len(samples) < maxTrackSamples {
			chunk := dec.GetData(0, false)
			if chunk.Size == 0 {
				break
			}
			samples = audio.AppendInt16(samples, chunk)
		}
		samples = samples[:min(len(samples), maxTrackSamples)]
	} else {
		if !p.resample {
			return nil, fmt.Errorf("%v at %d Hz: %w", dec.Format(), dec.SampleRate(), ErrFormatMismatch)
		}
		samples, err = audio.Convert(audio.NewChunkSource(dec), SampleRate, Channels, maxTrackSamples)
		if err != nil {
			return nil, fmt.Errorf("converting: %w", err)
		}
	}

	if len(samples) < Channels {
		return nil, ErrEmptyTrack
	}
	return slices.Clip(samples[:len(samples)-len(samples)%Channels]), nil
}
