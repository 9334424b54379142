// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"code.hybscloud.com/meshcore/meshid"
)

func init() {
	register(TypeInternet, decodeInternet, encodeInternet)
	register(TypeInternetResponse, decodeInternetResponse, encodeInternetResponse)
	register(TypeInternetUpdate, decodeInternetUpdate, encodeInternetUpdate)
}

// maxURLLen is the largest URL the wire format can carry: the
// url-length field is a single byte (§6.1).
const maxURLLen = 255

func encodeInternet(dst []byte, pk Packet) ([]byte, error) {
	p := pk.(Internet)
	if len(p.URL) > maxURLLen {
		return nil, ErrURLTooLong
	}
	compressed, err := deflate(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("packet: compress internet payload: %w", err)
	}
	if uint64(len(compressed)) > 1<<32-1 {
		return nil, ErrPayloadTooLong
	}
	dst = append(dst, p.Originator[:]...)
	dst = append(dst, p.HopCount, p.TestID, byte(len(p.URL)))
	dst = append(dst, p.URL...)
	dst = appendUint32(dst, uint32(len(compressed)))
	dst = append(dst, compressed...)
	return dst, nil
}

func decodeInternet(seq uint32, body []byte) (Packet, int, error) {
	const fixedHeader = meshid.Size + 3 // originator, hop-count, test-id, url-length
	if len(body) < fixedHeader {
		return nil, 0, ErrIncomplete
	}
	originator, err := meshid.FromBytes(body[:meshid.Size])
	if err != nil {
		return nil, 0, err
	}
	hopCount := body[meshid.Size]
	testID := body[meshid.Size+1]
	urlLen := int(body[meshid.Size+2])
	off := fixedHeader
	if len(body) < off+urlLen+4 {
		return nil, 0, ErrIncomplete
	}
	url := string(body[off : off+urlLen])
	off += urlLen
	plen := readUint32(body[off : off+4])
	off += 4
	total := off + int(plen)
	if len(body) < total {
		return nil, 0, ErrIncomplete
	}
	payload, err := inflate(body[off:total])
	if err != nil {
		return nil, 0, fmt.Errorf("packet: decompress internet payload: %w", err)
	}
	return Internet{
		Seq: seq, Originator: originator, HopCount: hopCount,
		TestID: testID, URL: url, Payload: payload,
	}, total, nil
}

func encodeInternetResponse(dst []byte, pk Packet) ([]byte, error) {
	p := pk.(InternetResponse)
	if uint64(len(p.Payload)) > 1<<32-1 {
		return nil, ErrPayloadTooLong
	}
	dst = append(dst, p.Originator[:]...)
	dst = append(dst, p.StatusCode)
	dst = appendUint32(dst, uint32(len(p.Payload)))
	dst = append(dst, p.Payload...)
	return dst, nil
}

func decodeInternetResponse(seq uint32, body []byte) (Packet, int, error) {
	const fixedHeader = meshid.Size + 1 + 4
	if len(body) < fixedHeader {
		return nil, 0, ErrIncomplete
	}
	originator, err := meshid.FromBytes(body[:meshid.Size])
	if err != nil {
		return nil, 0, err
	}
	status := body[meshid.Size]
	plen := readUint32(body[meshid.Size+1 : fixedHeader])
	total := fixedHeader + int(plen)
	if len(body) < total {
		return nil, 0, ErrIncomplete
	}
	payload := make([]byte, plen)
	copy(payload, body[fixedHeader:total])
	return InternetResponse{Seq: seq, Originator: originator, StatusCode: status, Payload: payload}, total, nil
}

func encodeInternetUpdate(dst []byte, pk Packet) ([]byte, error) {
	p := pk.(InternetUpdate)
	dst = append(dst, p.HopCount)
	dst = append(dst, p.Originator[:]...)
	return dst, nil
}

func decodeInternetUpdate(seq uint32, body []byte) (Packet, int, error) {
	const n = 1 + meshid.Size
	if len(body) < n {
		return nil, 0, ErrIncomplete
	}
	originator, err := meshid.FromBytes(body[1:n])
	if err != nil {
		return nil, 0, err
	}
	return InternetUpdate{Seq: seq, HopCount: body[0], Originator: originator}, n, nil
}

// deflate compresses b with zlib, the deflate-family algorithm §4.1(d)
// requires for INTERNET payloads.
func deflate(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inflate reverses deflate.
func inflate(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}
