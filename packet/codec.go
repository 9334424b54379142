// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet

// decodeFunc decodes a packet body (everything after the version,
// type and sequence-id prefix) given the already-parsed sequence id.
// It returns the decoded Packet and the number of body bytes consumed,
// or ErrIncomplete if body is too short.
type decodeFunc func(seq uint32, body []byte) (Packet, int, error)

// encodeFunc appends a packet's body (everything after the version,
// type and sequence-id prefix) to dst and returns the result.
type encodeFunc func(dst []byte, p Packet) ([]byte, error)

// decoders and encoders are registered by type, mirroring the
// pluggable-decoder design the source exposes (§4.1) without the
// indirection of dynamic dispatch: a table of per-variant routines
// gives the same extensibility.
var decoders = map[Type]decodeFunc{}
var encoders = map[Type]encodeFunc{}

func register(t Type, dec decodeFunc, enc encodeFunc) {
	decoders[t] = dec
	encoders[t] = enc
}

// prefixLen is version(1) + type(1) + sequence(4).
const prefixLen = 6

// Encode serializes p to its wire representation.
func Encode(p Packet) ([]byte, error) {
	enc, ok := encoders[p.PacketType()]
	if !ok {
		return nil, ErrUnknownType
	}
	dst := make([]byte, 0, prefixLen+16)
	dst = append(dst, Version, byte(p.PacketType()))
	dst = appendUint32(dst, p.SequenceID())
	return enc(dst, p)
}

// Decode reads one packet from the front of buf.
//
// Per §4.1:
//   - If fewer than 2 bytes are available, or version/type do not
//     match any registered decoder, the result is ErrReject: the
//     framer should try another decoder or wait for more bytes. The
//     framer in package stream treats a reject on two or more bytes
//     as a corrupted stream.
//   - Once the 6-byte prefix (version, type, sequence) is present and
//     matches a registered type, a truncated buffer yields
//     ErrIncomplete, distinct from ErrReject.
func Decode(buf []byte) (p Packet, consumed int, err error) {
	if len(buf) < 2 {
		return nil, 0, ErrReject
	}
	if buf[0] != Version {
		return nil, 0, ErrReject
	}
	t := Type(buf[1])
	dec, ok := decoders[t]
	if !ok {
		return nil, 0, ErrReject
	}
	if len(buf) < prefixLen {
		return nil, 0, ErrIncomplete
	}
	seq := readUint32(buf[2:6])
	body := buf[prefixLen:]
	pkt, n, err := dec(seq, body)
	if err != nil {
		return nil, 0, err
	}
	return pkt, prefixLen + n, nil
}

func appendUint32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func readUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
