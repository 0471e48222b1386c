// SPDX-License-Identifier: EPL-2.0

//go:build !debug

package engine

const Debug = false
