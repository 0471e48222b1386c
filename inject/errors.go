// SPDX-License-Identifier: EPL-2.0

package inject

import "errors"

var ErrFormat = errors.New("unsupported injector format")
