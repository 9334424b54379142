// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet

import "errors"

var (
	// ErrReject reports that the version/type prefix did not match
	// this decoder (or no decoder is registered for the type byte).
	// The framer (§4.2) treats a reject on two or more buffered bytes
	// as a protocol violation; with fewer than two bytes it does not
	// decode at all and waits for more.
	ErrReject = errors.New("packet: prefix rejected")

	// ErrIncomplete reports that the prefix matched but the buffer
	// does not yet hold the full fixed-size frame. Distinct from
	// ErrReject: the caller knows the prefix was right and should
	// simply wait for more bytes.
	ErrIncomplete = errors.New("packet: not enough data")

	// ErrUnknownType reports a type byte with no registered decoder.
	ErrUnknownType = errors.New("packet: unknown packet type")

	// ErrURLTooLong reports an INTERNET URL longer than 255 bytes
	// (§6.1: the URL length field is one byte).
	ErrURLTooLong = errors.New("packet: url exceeds 255 bytes")

	// ErrPayloadTooLong reports a payload whose length does not fit
	// the packet's length field.
	ErrPayloadTooLong = errors.New("packet: payload exceeds wire length field")
)
