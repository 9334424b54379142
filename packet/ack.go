// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet

import "code.hybscloud.com/meshcore/meshid"

func init() {
	register(TypeAcknowledgement, decodeAck, encodeAck)
}

func encodeAck(dst []byte, pk Packet) ([]byte, error) {
	p := pk.(Acknowledgement)
	dst = append(dst, p.Destination[:]...)
	dst = append(dst, p.Origin[:]...)
	return dst, nil
}

func decodeAck(seq uint32, body []byte) (Packet, int, error) {
	const n = meshid.Size * 2
	if len(body) < n {
		return nil, 0, ErrIncomplete
	}
	dest, err := meshid.FromBytes(body[:meshid.Size])
	if err != nil {
		return nil, 0, err
	}
	origin, err := meshid.FromBytes(body[meshid.Size:n])
	if err != nil {
		return nil, 0, err
	}
	return Acknowledgement{Seq: seq, Destination: dest, Origin: origin}, n, nil
}
