// SPDX-License-Identifier: EPL-2.0

// Package engine is the entry point for playing sounds.
//
// An Engine is constructed from a config.Config and brought up with Init.
// When no output device can be opened it falls back to a backend that
// accepts every call and plays nothing, so callers never need to check
// whether audio is available. Builds tagged "debug" panic on invalid
// handles instead of logging them.
package engine
