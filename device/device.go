// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package device models a mesh neighbor reachable over one transport
// session. The device itself — discovery, advertising, permission
// handling — is out of the core's scope (§1); this package only holds
// the thin, transport-agnostic shape the core needs: a locally-unique
// identifier, one input and one output Stream, and a connector state
// the discovery collaborator updates and the core observes.
package device

import (
	"go.uber.org/atomic"
)

// State is the connector-level state of a Device, as distinct from the
// per-device negotiation state machine owned by the network controller
// (§4.4). It is set by the discovery collaborator and only read by the
// core.
type State uint8

const (
	// StatePending marks a device whose streams are not yet open.
	StatePending State = iota
	// StateOpen marks a device with live input/output streams.
	StateOpen
	// StateClosed marks a device that has been torn down; the core
	// must treat any further read/write as a no-op.
	StateClosed
)

// Stream is the duplex byte-stream abstraction the core requires per
// neighbor (§6.2). Implementations wrap whatever short-range transport
// discovery negotiated (BLE L2CAP channel, a test net.Pipe, ...); the
// core never inspects the identifier beyond logging it.
type Stream interface {
	// Read blocks for at least one chunk of bytes, honoring
	// back-pressure acknowledgement on the caller's side; io.EOF
	// signals a clean remote close.
	Read(p []byte) (int, error)

	// Write hands bytes to the transport. A transport that cannot
	// accept more right now returns iox.ErrWouldBlock (see package
	// stream); the caller must not retry synchronously.
	Write(p []byte) (int, error)

	// OnSpaceAvailable registers a callback the transport invokes
	// when it can accept more bytes after previously refusing a
	// Write. At most one callback is registered at a time.
	OnSpaceAvailable(fn func())

	// Close tears the stream down. A non-nil err distinguishes an
	// abnormal close (write failure, protocol violation) from a clean
	// shutdown.
	Close(err error) error

	// Identifier returns the transport-level stream identifier, used
	// only for logging.
	Identifier() string
}

// Device is a neighbor reachable over one transport.
type Device struct {
	id    string
	In    Stream
	Out   Stream
	state atomic.Uint32
}

// New constructs a Device in StatePending with the given locally
// unique identifier. Streams are attached later via Open, mirroring
// the discovery collaborator's own two-phase "found, then connected"
// lifecycle.
func New(id string) *Device {
	d := &Device{id: id}
	d.state.Store(uint32(StatePending))
	return d
}

// ID returns the device's locally-unique identifier.
func (d *Device) ID() string { return d.id }

// Open attaches the input/output streams and transitions to
// StateOpen.
func (d *Device) Open(in, out Stream) {
	d.In, d.Out = in, out
	d.state.Store(uint32(StateOpen))
}

// State returns the device's current connector state.
func (d *Device) State() State { return State(d.state.Load()) }

// Close transitions the device to StateClosed and closes both
// streams, if present. Safe to call more than once.
func (d *Device) Close(err error) {
	d.state.Store(uint32(StateClosed))
	if d.In != nil {
		_ = d.In.Close(err)
	}
	if d.Out != nil && d.Out != d.In {
		_ = d.Out.Close(err)
	}
}
