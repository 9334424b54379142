// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package meshid defines the identity types shared across the mesh
// core: the 16-byte peer Instance and the Ticket used to correlate an
// outgoing data send with its eventual acknowledgement or failure.
package meshid

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Size is the wire length of an Instance, in bytes.
const Size = 16

// ErrInvalidAppIdentifier reports an app_identifier that is not an
// 8-character hex string (4 bytes).
var ErrInvalidAppIdentifier = errors.New("meshid: app identifier must be an 8-character hex string")

// Instance is the 16-byte opaque identity of a mesh peer. The first 4
// bytes are the configured application tag; the remaining 12 are
// random. Equality and hashing are over the full 16 bytes.
type Instance [Size]byte

// Nil is the zero Instance. It never appears on the wire as a real
// peer identity; it is used as a sentinel for "no instance".
var Nil Instance

// New mints a fresh random Instance carrying the given 4-byte
// application tag. tag must decode from an 8-character hex string
// (e.g. the app_identifier configuration option, §6.4).
func New(appTag string) (Instance, error) {
	var out Instance
	tag, err := decodeAppTag(appTag)
	if err != nil {
		return out, err
	}
	copy(out[:4], tag[:])

	// google/uuid gives us a random 16-byte UUID; its first 12 bytes
	// become the instance tail.
	u, err := uuid.NewRandom()
	if err != nil {
		return out, fmt.Errorf("meshid: generate random tail: %w", err)
	}
	copy(out[4:], u[:12])
	return out, nil
}

func decodeAppTag(appTag string) ([4]byte, error) {
	var tag [4]byte
	if len(appTag) != 8 {
		return tag, ErrInvalidAppIdentifier
	}
	b, err := hex.DecodeString(appTag)
	if err != nil || len(b) != 4 {
		return tag, ErrInvalidAppIdentifier
	}
	copy(tag[:], b)
	return tag, nil
}

// FromBytes copies a 16-byte slice into an Instance. It returns an
// error if b is not exactly Size bytes.
func FromBytes(b []byte) (Instance, error) {
	var out Instance
	if len(b) != Size {
		return out, fmt.Errorf("meshid: instance must be %d bytes, got %d", Size, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// AppTag returns the 4-byte application-tag prefix.
func (i Instance) AppTag() [4]byte {
	var tag [4]byte
	copy(tag[:], i[:4])
	return tag
}

// IsNil reports whether i is the zero Instance.
func (i Instance) IsNil() bool { return i == Nil }

// String returns a hex dump of the instance, tag and tail separated
// by a dash for readability in logs.
func (i Instance) String() string {
	return fmt.Sprintf("%x-%x", i[:4], i[4:])
}
