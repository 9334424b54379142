// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package meshcore is a device-to-device mesh overlay: nearby peers
// exchange application messages and proxy Internet requests through
// each other over opaque, transport-agnostic duplex byte streams, one
// per neighbor.
//
// Package meshcore itself is the facade: it owns one routing.Table,
// one network.Controller, one ioctl.Controller and one internet.Engine,
// wiring them together and re-exposing the upward callbacks an
// application or a radio-discovery collaborator needs. The hard
// engineering — the wire codec, the framer, the routing table and the
// negotiation/forwarding state machine — lives in the packet, stream,
// routing and network subpackages, each usable on its own.
package meshcore
