// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package packet_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"code.hybscloud.com/meshcore/meshid"
	"code.hybscloud.com/meshcore/packet"
)

// TestHandshakeWireBytes exercises the HANDSHAKE wire layout: version(1)
// type(1) seq(4) originator(16) i_hops(1), 23 bytes total. Originator
// is a 16-byte Instance everywhere else in the packet table (UPDATE,
// DATA, ACKNOWLEDGEMENT), so this codec treats 16 bytes as the
// authoritative, bit-exact width. See DESIGN.md.
func TestHandshakeWireBytes(t *testing.T) {
	originator := mustInstance(t, "00112233445566778899AABBCCDDEEFF")
	p := packet.Handshake{Seq: 1, Originator: originator, InternetHops: 3}

	got, err := packet.Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := mustHex(t, "000000000001"+"00112233445566778899AABBCCDDEEFF"+"03")
	if !bytes.Equal(got, want) {
		t.Fatalf("encode mismatch:\n got=% X\nwant=% X", got, want)
	}
	if len(got) != 23 {
		t.Fatalf("encoded length = %d, want 23", len(got))
	}

	decoded, n, err := packet.Decode(got)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != 23 {
		t.Fatalf("consumed = %d, want 23", n)
	}
	if decoded != p {
		t.Fatalf("decoded = %+v, want %+v", decoded, p)
	}
}

func mustInstance(t *testing.T, hex34 string) meshid.Instance {
	t.Helper()
	inst, err := meshid.FromBytes(mustHex(t, hex34))
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	return inst
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return b
}

// TestRoundTripAllVariants is property P4: encode then decode yields
// an identical packet, for every type.
func TestRoundTripAllVariants(t *testing.T) {
	inst1 := fixedInstance(0x01)
	inst2 := fixedInstance(0x02)

	cases := []packet.Packet{
		packet.Handshake{Seq: 7, Originator: inst1, InternetHops: 255},
		packet.Update{Seq: 8, Destination: inst2, HopCount: 4},
		packet.Data{Seq: 9, Origin: inst1, Destination: inst2, Payload: []byte("hello mesh")},
		packet.Data{Seq: 10, Origin: inst1, Destination: inst2, Payload: nil},
		packet.Acknowledgement{Seq: 11, Destination: inst2, Origin: inst1},
		packet.Internet{Seq: 12, Originator: inst1, HopCount: 0, TestID: 7, URL: "https://example.com/v1", Payload: []byte(`{"a":1}`)},
		packet.Internet{Seq: 13, Originator: inst1, HopCount: 0, TestID: 0, URL: "", Payload: nil},
		packet.InternetResponse{Seq: 14, Originator: inst2, StatusCode: 200, Payload: []byte("ok")},
		packet.InternetUpdate{Seq: 15, HopCount: 2, Originator: inst1},
	}

	for _, want := range cases {
		enc, err := packet.Encode(want)
		if err != nil {
			t.Fatalf("encode %T: %v", want, err)
		}
		got, n, err := packet.Decode(enc)
		if err != nil {
			t.Fatalf("decode %T: %v", want, err)
		}
		if n != len(enc) {
			t.Fatalf("%T: consumed %d, want %d", want, n, len(enc))
		}
		if !packetsEqual(got, want) {
			t.Fatalf("%T round trip mismatch:\n got=%+v\nwant=%+v", want, got, want)
		}
	}
}

func packetsEqual(a, b packet.Packet) bool {
	ad, aok := a.(packet.Data)
	bd, bok := b.(packet.Data)
	if aok && bok {
		return ad.Seq == bd.Seq && ad.Origin == bd.Origin && ad.Destination == bd.Destination && bytes.Equal(ad.Payload, bd.Payload)
	}
	ai, aiok := a.(packet.Internet)
	bi, biok := b.(packet.Internet)
	if aiok && biok {
		return ai.Seq == bi.Seq && ai.Originator == bi.Originator && ai.HopCount == bi.HopCount &&
			ai.TestID == bi.TestID && ai.URL == bi.URL && bytes.Equal(ai.Payload, bi.Payload)
	}
	ar, arok := a.(packet.InternetResponse)
	br, brok := b.(packet.InternetResponse)
	if arok && brok {
		return ar.Seq == br.Seq && ar.Originator == br.Originator && ar.StatusCode == br.StatusCode && bytes.Equal(ar.Payload, br.Payload)
	}
	return a == b
}

func fixedInstance(fill byte) meshid.Instance {
	var inst meshid.Instance
	for i := range inst {
		inst[i] = fill
	}
	return inst
}

// TestDecodeRejectsShortPrefix covers §4.1(a): fewer than two bytes,
// or an unknown version/type, yields ErrReject rather than ErrIncomplete.
func TestDecodeRejectsShortPrefix(t *testing.T) {
	for _, buf := range [][]byte{nil, {0x00}, {0x01, 0x00}, {0x00, 0xFF}} {
		_, _, err := packet.Decode(buf)
		if err != packet.ErrReject {
			t.Fatalf("Decode(% X) = %v, want ErrReject", buf, err)
		}
	}
}

// TestDecodeIncompleteAfterPrefix covers §4.1(b): a matched prefix but
// a truncated body yields ErrIncomplete, not ErrReject.
func TestDecodeIncompleteAfterPrefix(t *testing.T) {
	full, err := packet.Encode(packet.Update{Seq: 1, Destination: fixedInstance(0x03), HopCount: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, _, err = packet.Decode(full[:len(full)-1])
	if err != packet.ErrIncomplete {
		t.Fatalf("Decode(truncated) = %v, want ErrIncomplete", err)
	}
}
