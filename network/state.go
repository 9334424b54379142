// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network

import "code.hybscloud.com/meshcore/meshid"

// deviceState is the five-state machine of §4.4, tracked per neighbor
// device alongside its peer Instance once negotiation completes. The
// i-hops last sent to each device is kept in Controller.sentIhops.
type deviceState uint8

const (
	stateNew deviceState = iota
	stateRegistered
	stateHandshaking
	stateNegotiated
	stateRemoved
)

func (s deviceState) String() string {
	switch s {
	case stateNew:
		return "NEW"
	case stateRegistered:
		return "REGISTERED"
	case stateHandshaking:
		return "HANDSHAKING"
	case stateNegotiated:
		return "NEGOTIATED"
	case stateRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// neighbor tracks one device's negotiation state and, once known, its
// peer Instance.
type neighbor struct {
	state    deviceState
	instance meshid.Instance
	hasPeer  bool
}
