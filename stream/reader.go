// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stream implements the per-neighbor framer and I/O buffering
// described in §4.2: an inbound accumulation buffer that repeatedly
// tries the packet decoder registry, and an outbound MTU-clipped,
// back-pressured byte buffer with the single-flight write rule.
//
// It reuses iox.ErrWouldBlock / iox.ErrMore as control-flow signals
// rather than a length-prefix wire format, since this protocol's
// packets are self-describing via the version+type prefix the decoder
// registry already understands.
package stream

import (
	"errors"

	"code.hybscloud.com/meshcore/packet"
)

// Reader accumulates inbound bytes for one neighbor stream and
// extracts complete packets using the packet decoder registry.
//
// A Reader is single-owner: it must only be driven by the I/O
// controller's dispatch goroutine for the corresponding device, so
// its internal buffer needs no locking (§5: "the I/O controller owns
// read buffers").
type Reader struct {
	buf []byte
}

// NewReader constructs an empty Reader.
func NewReader() *Reader { return &Reader{} }

// Ingest appends chunk to the accumulation buffer and decodes as many
// complete packets as are now available.
//
// Return semantics (§4.2):
//   - (pkts, nil): zero or more whole packets decoded; any leftover
//     bytes are incomplete and held for the next chunk.
//   - (pkts, ErrProtocolViolation): the buffer could not be matched
//     by any registered decoder after a full prefix was read. Any
//     packets already decoded from earlier in this same chunk are
//     still returned — the caller tears the stream down either way,
//     but should still dispatch what it received first.
func (r *Reader) Ingest(chunk []byte) ([]packet.Packet, error) {
	r.buf = append(r.buf, chunk...)

	var out []packet.Packet
	for {
		if len(r.buf) < 2 {
			r.compact()
			return out, nil
		}
		pkt, n, err := packet.Decode(r.buf)
		switch {
		case err == nil:
			out = append(out, pkt)
			r.buf = r.buf[n:]
			continue
		case errors.Is(err, packet.ErrIncomplete):
			r.compact()
			return out, nil
		case errors.Is(err, packet.ErrReject):
			return out, ErrProtocolViolation
		default:
			return out, err
		}
	}
}

// compact drops a fully-drained buffer's backing array so a long-lived
// stream with bursty traffic does not retain an ever-growing slice.
func (r *Reader) compact() {
	if len(r.buf) == 0 {
		r.buf = nil
		return
	}
	if cap(r.buf) > 4*len(r.buf)+64 {
		fresh := make([]byte, len(r.buf))
		copy(fresh, r.buf)
		r.buf = fresh
	}
}
