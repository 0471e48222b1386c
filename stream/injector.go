// SPDX-License-Identifier: EPL-2.0

package stream

import "github.com/ik5/audengine/inject"

// NewInjectorStream plays whatever is pushed into inj. The stream never
// ends on its own; it plays silence while the injector is empty.
func NewInjectorStream(dev Device, inj *inject.Injector, opts Options) (*SoundStream, error) {
	return Open(dev, inj, opts)
}
