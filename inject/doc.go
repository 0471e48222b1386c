// SPDX-License-Identifier: EPL-2.0

// Package inject turns pushed PCM into a decoder the engine can stream.
//
// An Injector is double buffered: producers append to the back buffer,
// the stream worker swaps it to the front on every read. When nothing new
// arrived it hands out silence, so a stream fed by an injector never
// ends. Package opusfeed decodes network voice packets straight into an
// Injector.
package inject
