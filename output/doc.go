// SPDX-License-Identifier: EPL-2.0

// Package output drives a PCM reader, normally a *mixer.Mixer, at the pace
// of an audio device.
//
// Three drivers exist: "oto" plays through ebitengine/oto, "malgo" plays
// through miniaudio and can pick a named device, and "virtual" pulls from
// the reader on a timer without touching any hardware. The virtual driver
// keeps a frame count so tests can measure playback time.
package output
