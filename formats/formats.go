// SPDX-License-Identifier: EPL-2.0

// Package formats wires every decoder in the module into an audio.Registry.
package formats

import (
	"github.com/ik5/audengine/audio"
	"github.com/ik5/audengine/formats/aiff"
	"github.com/ik5/audengine/formats/mp3"
	"github.com/ik5/audengine/formats/vorbis"
	"github.com/ik5/audengine/formats/wav"
)

// Default returns a registry for .wav, .ogg, .mp3, .aif and .aiff files.
func Default() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(".wav", func() audio.Decoder { return wav.New() })
	r.Register(".ogg", func() audio.Decoder { return vorbis.New() })
	r.Register(".mp3", func() audio.Decoder { return mp3.New() })
	r.Register(".aif", func() audio.Decoder { return aiff.New() })
	r.Register(".aiff", func() audio.Decoder { return aiff.New() })
	return r
}
