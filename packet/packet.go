// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package packet implements the mesh wire codec (§4.1): a pure,
// stateless set of encode/decode routines for every packet variant in
// the protocol. Integers are big-endian; the codec never blocks and
// never retains state between calls.
package packet

import "code.hybscloud.com/meshcore/meshid"

// Version is the only protocol version byte this codec understands.
const Version = 0

// HopCountInfinity is the routing-poison hop count (§3).
const HopCountInfinity = 255

// Type is the packet-type byte (§3 table).
type Type uint8

const (
	TypeHandshake        Type = 0
	TypeUpdate           Type = 1
	TypeData             Type = 2
	TypeAcknowledgement  Type = 3
	TypeInternet         Type = 4
	TypeInternetResponse Type = 5
	TypeInternetUpdate   Type = 6
)

func (t Type) String() string {
	switch t {
	case TypeHandshake:
		return "HANDSHAKE"
	case TypeUpdate:
		return "UPDATE"
	case TypeData:
		return "DATA"
	case TypeAcknowledgement:
		return "ACKNOWLEDGEMENT"
	case TypeInternet:
		return "INTERNET"
	case TypeInternetResponse:
		return "INTERNET_RESPONSE"
	case TypeInternetUpdate:
		return "INTERNET_UPDATE"
	default:
		return "UNKNOWN"
	}
}

// CodeIOGenericFailure is the reserved INTERNET_RESPONSE status code
// used when a proxying hop could neither complete the HTTP request nor
// forward it any further (§4.4).
const CodeIOGenericFailure = 0

// Packet is the tagged-union wire record every variant implements.
type Packet interface {
	// PacketType returns the wire type byte.
	PacketType() Type
	// SequenceID returns the packet's 32-bit sequence identifier.
	SequenceID() uint32
}

// Handshake (type 0): originator(16), internet-hops(1).
type Handshake struct {
	Seq         uint32
	Originator  meshid.Instance
	InternetHops uint8
}

func (p Handshake) PacketType() Type    { return TypeHandshake }
func (p Handshake) SequenceID() uint32 { return p.Seq }

// Update (type 1): destination-instance(16), hop-count(1).
type Update struct {
	Seq         uint32
	Destination meshid.Instance
	HopCount    uint8
}

func (p Update) PacketType() Type    { return TypeUpdate }
func (p Update) SequenceID() uint32 { return p.Seq }

// Data (type 2): origin(16), destination(16), payload-length(4 BE), payload(N).
type Data struct {
	Seq         uint32
	Origin      meshid.Instance
	Destination meshid.Instance
	Payload     []byte
}

func (p Data) PacketType() Type    { return TypeData }
func (p Data) SequenceID() uint32 { return p.Seq }

// Acknowledgement (type 3): destination(16), origin(16).
type Acknowledgement struct {
	Seq         uint32
	Destination meshid.Instance
	Origin      meshid.Instance
}

func (p Acknowledgement) PacketType() Type    { return TypeAcknowledgement }
func (p Acknowledgement) SequenceID() uint32 { return p.Seq }

// Internet (type 4): originator(16), hop-count(1), test-id(1),
// url-length(1), url(M), payload-length(4 BE), zlib-compressed-payload(K).
type Internet struct {
	Seq          uint32
	Originator   meshid.Instance
	HopCount     uint8
	TestID       uint8
	URL          string
	Payload      []byte // uncompressed JSON body; Encode compresses it
}

func (p Internet) PacketType() Type    { return TypeInternet }
func (p Internet) SequenceID() uint32 { return p.Seq }

// InternetResponse (type 5): originator(16), status-code(1), payload-length(4 BE), payload(K).
type InternetResponse struct {
	Seq        uint32
	Originator meshid.Instance
	StatusCode uint8
	Payload    []byte // plain UTF-8, uncompressed
}

func (p InternetResponse) PacketType() Type    { return TypeInternetResponse }
func (p InternetResponse) SequenceID() uint32 { return p.Seq }

// InternetUpdate (type 6): hop-count(1), originator(16).
type InternetUpdate struct {
	Seq        uint32
	HopCount   uint8
	Originator meshid.Instance
}

func (p InternetUpdate) PacketType() Type    { return TypeInternetUpdate }
func (p InternetUpdate) SequenceID() uint32 { return p.Seq }
