// SPDX-License-Identifier: EPL-2.0

// Package mixer is the software voice layer the engine plays through.
//
// It keeps PCM buffers and voices in the same shape a hardware audio API
// does: a voice owns a queue of buffers, reports how many of them it has
// finished (processed) and moves through Initial, Playing, Paused and
// Stopped states. Stopping a voice marks every queued buffer processed,
// and a voice that runs out of queued audio stops by itself.
//
// Mono buffers are positioned in 3D relative to a single listener using
// inverse distance attenuation, equal power panning and doppler shift.
// Stereo buffers play unpositioned.
//
// The output device pulls mixed audio with Mix or, as signed 16 bit little
// endian bytes, with Read. All state is guarded by one mutex which Mix
// holds for a whole device period.
package mixer
