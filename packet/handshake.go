// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet

import "code.hybscloud.com/meshcore/meshid"

func init() {
	register(TypeHandshake, decodeHandshake, encodeHandshake)
}

func encodeHandshake(dst []byte, pk Packet) ([]byte, error) {
	p := pk.(Handshake)
	dst = append(dst, p.Originator[:]...)
	dst = append(dst, p.InternetHops)
	return dst, nil
}

func decodeHandshake(seq uint32, body []byte) (Packet, int, error) {
	const n = meshid.Size + 1
	if len(body) < n {
		return nil, 0, ErrIncomplete
	}
	inst, err := meshid.FromBytes(body[:meshid.Size])
	if err != nil {
		return nil, 0, err
	}
	return Handshake{Seq: seq, Originator: inst, InternetHops: body[meshid.Size]}, n, nil
}
