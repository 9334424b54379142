// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet

import "code.hybscloud.com/meshcore/meshid"

func init() {
	register(TypeData, decodeData, encodeData)
}

func encodeData(dst []byte, pk Packet) ([]byte, error) {
	p := pk.(Data)
	if uint64(len(p.Payload)) > 1<<32-1 {
		return nil, ErrPayloadTooLong
	}
	dst = append(dst, p.Origin[:]...)
	dst = append(dst, p.Destination[:]...)
	dst = appendUint32(dst, uint32(len(p.Payload)))
	dst = append(dst, p.Payload...)
	return dst, nil
}

func decodeData(seq uint32, body []byte) (Packet, int, error) {
	const headerLen = meshid.Size*2 + 4
	if len(body) < headerLen {
		return nil, 0, ErrIncomplete
	}
	origin, err := meshid.FromBytes(body[:meshid.Size])
	if err != nil {
		return nil, 0, err
	}
	dest, err := meshid.FromBytes(body[meshid.Size : meshid.Size*2])
	if err != nil {
		return nil, 0, err
	}
	plen := readUint32(body[meshid.Size*2 : headerLen])
	total := headerLen + int(plen)
	if len(body) < total {
		return nil, 0, ErrIncomplete
	}
	payload := make([]byte, plen)
	copy(payload, body[headerLen:total])
	return Data{Seq: seq, Origin: origin, Destination: dest, Payload: payload}, total, nil
}
