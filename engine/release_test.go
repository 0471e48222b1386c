// SPDX-License-Identifier: EPL-2.0

//go:build !debug

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMisuseIsLoggedNotFatal(t *testing.T) {
	t.Parallel()

	e := newEngine(t, virtualConfig(""))
	assert.NoError(t, e.Init())
	assert.NotPanics(t, func() {
		e.PlaySource(77, false)
		e.DeleteStream(3)
	})
}
