// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/meshcore/meshid"
	"code.hybscloud.com/meshcore/packet"
	"code.hybscloud.com/meshcore/stream"
)

func fixedInstance(fill byte) meshid.Instance {
	var inst meshid.Instance
	for i := range inst {
		inst[i] = fill
	}
	return inst
}

func TestReaderDecodesPacketsSplitAcrossChunks(t *testing.T) {
	p1 := packet.Update{Seq: 1, Destination: fixedInstance(0x01), HopCount: 2}
	p2 := packet.Data{Seq: 2, Origin: fixedInstance(0x02), Destination: fixedInstance(0x03), Payload: []byte("hi")}

	b1, err := packet.Encode(p1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := packet.Encode(p2)
	if err != nil {
		t.Fatal(err)
	}
	whole := append(append([]byte{}, b1...), b2...)

	r := stream.NewReader()

	// Feed byte-by-byte to exercise the incomplete path thoroughly.
	var got []packet.Packet
	for i := range whole {
		pkts, err := r.Ingest(whole[i : i+1])
		if err != nil {
			t.Fatalf("ingest at byte %d: %v", i, err)
		}
		got = append(got, pkts...)
	}

	if len(got) != 2 {
		t.Fatalf("got %d packets, want 2: %+v", len(got), got)
	}
	if got[0] != packet.Packet(p1) {
		t.Fatalf("packet 0 = %+v, want %+v", got[0], p1)
	}
}

func TestReaderProtocolViolationOnBadPrefix(t *testing.T) {
	r := stream.NewReader()
	_, err := r.Ingest([]byte{0x00, 0x42, 0x00, 0x00, 0x00, 0x00})
	if !errors.Is(err, stream.ErrProtocolViolation) {
		t.Fatalf("err = %v, want ErrProtocolViolation", err)
	}
}

func TestReaderWaitsOnShortPrefix(t *testing.T) {
	r := stream.NewReader()
	pkts, err := r.Ingest([]byte{0x00})
	if err != nil {
		t.Fatalf("err = %v, want nil (waiting for more bytes)", err)
	}
	if len(pkts) != 0 {
		t.Fatalf("got %d packets before prefix complete", len(pkts))
	}
}
