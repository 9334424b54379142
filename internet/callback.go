// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package internet

// Callback is the two-terminal-method contract of §4.5: Execute calls
// exactly one of these, exactly once, per request.
type Callback interface {
	OnInternetResponse(code uint8, body []byte)
	OnInternetRequestFailure(err error)
}
