// SPDX-License-Identifier: EPL-2.0

// Package audio holds the format-neutral pieces of the engine: PCM
// formats and chunks, the Decoder contract every codec implements, the
// extension keyed decoder Registry and the float32 DSP chain used for
// conversion.
//
// # Decoders
//
// A Decoder is opened on a path and then pulled in chunks:
//
//	dec, err := registry.Open("music/theme.ogg")
//	if err != nil {
//	    return err
//	}
//	defer dec.Close()
//
//	for {
//	    chunk := dec.GetData(32768, false)
//	    if chunk.Size == 0 {
//	        break
//	    }
//	    consume(chunk.Data[:chunk.Size])
//	}
//
// Chunk data is owned by the decoder and is overwritten by the next call.
// Passing looped=true makes the decoder wrap to the start of the file and
// keep filling the same chunk, so looping streams never see a short read.
//
// # Sources
//
// Source is the float32 view used for processing. ChunkSource adapts any
// Decoder to it, Resampler changes the rate with cubic interpolation and
// MonoMixer/StereoMixer fix the channel count. Convert strings them
// together and returns 16 bit samples:
//
//	pcm, err := audio.Convert(audio.NewChunkSource(dec), 48000, 2, 0)
//
// Sources return io.EOF once drained; a read may return data together
// with io.EOF.
package audio
