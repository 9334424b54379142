// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ioctl implements the I/O controller of §4.2/§4.4's upper
// half: it pairs each neighbor device's input and output streams with
// the package stream framer, enforces one in-flight write per stream,
// and dispatches decoded packets up to the network controller.
//
// It follows the same two-phase relay discipline as a plain byte
// forwarder (read a whole message, then write it on), adapted from
// "relay raw bytes src→dst" to "relay decoded packets device→controller,
// controller→device", keeping the same non-blocking, single
// in-flight-operation discipline.
package ioctl

import "code.hybscloud.com/meshcore/packet"

// IoPacket wraps an outbound packet with its terminal callbacks and a
// late-bound device selector (§3). GetDevice is invoked at the instant
// of dispatch, not at enqueue time, so routing decisions always see
// the freshest routing table — a link discovered a moment ago, or a
// device that just vanished, is reflected immediately.
type IoPacket struct {
	Packet packet.Packet

	// GetDevice resolves the next-hop device identifier right before
	// the packet is handed to a stream.Writer. ok is false when no
	// route exists; Dispatch then reports ErrUnreachable through
	// OnWriteFailure without touching any stream.
	GetDevice func() (deviceID string, ok bool)

	// OnWritten and OnWriteFailure are each called at most once, and
	// never both, per the IoPacket lifecycle (§3, §5).
	OnWritten      func()
	OnWriteFailure func(error)
}
