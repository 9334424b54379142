// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package internet

import "errors"

// ErrHTTPTimeout reports that the connect or read phase of an
// outbound request exceeded its configured timeout (§5).
var ErrHTTPTimeout = errors.New("internet: request timed out")

// ErrHTTPIO reports any other transport-level failure performing the
// request (§7's http_io).
var ErrHTTPIO = errors.New("internet: request failed")
