// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder is the uniform contract every file codec implements, so callers
// never branch on file type once a decoder is constructed.
type Decoder interface {
	// Open reads and validates the header of the file at path.
	Open(path string) error
	// GetData decodes up to chunkSize bytes of PCM in the format fixed at
	// open time. A chunkSize of 0 decodes at most MaxChunkSize bytes.
	// When looped is set and the end of the file is reached mid request,
	// decoding wraps to the start and keeps filling the same chunk.
	// Exhaustion is signalled by a chunk with Size == 0.
	// The returned Data is only valid until the next call on the decoder.
	GetData(chunkSize int, looped bool) PCMChunk
	// Seek repositions the decoder to offset from the start.
	Seek(offset time.Duration) bool
	Format() Format
	SampleRate() int
	Close() error
}

// DecoderFactory creates an unopened decoder.
type DecoderFactory func() Decoder

// Registry for decoders by file extension (e.g., ".wav", ".mp3", ".ogg").
type Registry struct {
	codecs map[string]DecoderFactory

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]DecoderFactory),
		mtx:    &sync.Mutex{},
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (r *Registry) Register(ext string, f DecoderFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[normalizeExt(ext)] = f
}

func (r *Registry) Get(ext string) (DecoderFactory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.codecs[normalizeExt(ext)]
	return f, ok
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// New returns an unopened decoder matching the extension of path.
func (r *Registry) New(path string) (Decoder, error) {
	ext := filepath.Ext(path)
	f, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedExtension)
	}
	return f(), nil
}

// Open creates the decoder matching path and opens it.
func (r *Registry) Open(path string) (Decoder, error) {
	dec, err := r.New(path)
	if err != nil {
		return nil, err
	}
	if err := dec.Open(path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return dec, nil
}
