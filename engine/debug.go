// SPDX-License-Identifier: EPL-2.0

//go:build debug

package engine

// Debug builds panic on misuse.
const Debug = true
