// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet

import "code.hybscloud.com/meshcore/meshid"

func init() {
	register(TypeUpdate, decodeUpdate, encodeUpdate)
}

func encodeUpdate(dst []byte, pk Packet) ([]byte, error) {
	p := pk.(Update)
	dst = append(dst, p.Destination[:]...)
	dst = append(dst, p.HopCount)
	return dst, nil
}

func decodeUpdate(seq uint32, body []byte) (Packet, int, error) {
	const n = meshid.Size + 1
	if len(body) < n {
		return nil, 0, ErrIncomplete
	}
	inst, err := meshid.FromBytes(body[:meshid.Size])
	if err != nil {
		return nil, 0, err
	}
	return Update{Seq: seq, Destination: inst, HopCount: body[meshid.Size]}, n, nil
}
