// SPDX-License-Identifier: EPL-2.0

// Package audengine is an audio playback engine built around a software
// mixer.
//
// Most programs construct an engine.Engine from a config.Config, call
// Init and then work with integer handles:
//
//	e := engine.New(config.Default())
//	if err := e.Init(); err != nil {
//	    // audio is disabled, every call is a no-op
//	}
//	defer e.Shutdown()
//
//	buf := e.RequestNewBuffer("sfx/jump.wav")
//	src := e.RequestAudioSource(buf, false)
//	e.PlaySource(src, false)
//
// Long files are streamed instead of loaded:
//
//	stream := e.RequestNewStream("music/theme.ogg")
//	src := e.RequestAudioSource(stream, true)
//	e.PlaySource(src, true)
//
// # Packages
//
//   - audio: formats, the Decoder contract, the float DSP pipeline
//   - formats: WAV, Ogg Vorbis, MP3 and AIFF decoders
//   - mixer: buffers, voices and 3D placement
//   - output: oto, malgo and virtual device sinks
//   - backend, engine: handle tables and the facade
//   - stream, inject, playlist: caller driven playback
//
// This package only holds ConvertFile, the offline path through the same
// decoders and resampler.
package audengine
