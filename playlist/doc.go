// SPDX-License-Identifier: EPL-2.0

// Package playlist plays a list of music files back to back without gaps.
//
// Tracks are decoded in full on a background goroutine into a small ring
// of slots, always trying to stay two tracks ahead of playback. GetData
// never blocks: while the next track is still loading it returns
// silence. A Playlist can drive a stream.SoundStream directly.
package playlist
