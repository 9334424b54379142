// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import "errors"

var (
	// ErrProtocolViolation reports that an inbound accumulation buffer
	// could not be matched by any registered decoder after its prefix
	// was read (§4.2: "the stream is considered corrupted"). The
	// caller must tear the device down.
	ErrProtocolViolation = errors.New("stream: protocol violation")

	// ErrClosed reports that Enqueue was called on a stream already
	// torn down, either by a prior write failure or an explicit Close.
	ErrClosed = errors.New("stream: closed")
)
