// SPDX-License-Identifier: EPL-2.0

package audengine

import "errors"

var ErrInvalidRate = errors.New("sample rate must be positive")
