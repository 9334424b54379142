// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/meshcore/ioctl"
	"code.hybscloud.com/meshcore/meshid"
	"code.hybscloud.com/meshcore/network"
	"code.hybscloud.com/meshcore/packet"
	"code.hybscloud.com/meshcore/routing"
)

func inst(fill byte) meshid.Instance {
	var i meshid.Instance
	for k := range i {
		i[k] = fill
	}
	return i
}

// fakeDispatcher records every dispatched IoPacket, immediately
// resolves GetDevice and fires OnWritten synchronously (or
// OnWriteFailure when GetDevice finds no route) so tests can assert
// on the packets sent without a real stream.Writer.
type fakeDispatcher struct {
	mu  sync.Mutex
	log []sentPacket
}

type sentPacket struct {
	deviceID string
	pkt      packet.Packet
	ok       bool
}

func (d *fakeDispatcher) Dispatch(p ioctl.IoPacket) {
	deviceID, ok := p.GetDevice()
	d.mu.Lock()
	d.log = append(d.log, sentPacket{deviceID: deviceID, pkt: p.Packet, ok: ok})
	d.mu.Unlock()
	if !ok {
		if p.OnWriteFailure != nil {
			p.OnWriteFailure(network.ErrUnreachable)
		}
		return
	}
	if p.OnWritten != nil {
		p.OnWritten()
	}
}

func (d *fakeDispatcher) updatesTo(deviceID string) []packet.Update {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []packet.Update
	for _, s := range d.log {
		if s.deviceID != deviceID {
			continue
		}
		if u, ok := s.pkt.(packet.Update); ok {
			out = append(out, u)
		}
	}
	return out
}

type noopExecutor struct{}

func (noopExecutor) Execute(meshid.Instance, uint32, string, []byte, uint8, uint8, network.InternetCallback) {
}

// alwaysFailsExecutor simulates a host with no working direct uplink:
// every Execute call (always hop_count=0, since this controller never
// proxies) reports failure, forcing SendInternet's fallback leg.
type alwaysFailsExecutor struct{ err error }

func (e alwaysFailsExecutor) Execute(_ meshid.Instance, _ uint32, _ string, _ []byte, _ uint8, _ uint8, cb network.InternetCallback) {
	cb.OnInternetRequestFailure(e.err)
}

func newTestController(host meshid.Instance, rt *routing.Table, disp *fakeDispatcher, cb network.Callbacks) *network.Controller {
	return network.NewController(host, rt, disp, noopExecutor{}, nil, cb)
}

func newTestControllerWithExecutor(host meshid.Instance, rt *routing.Table, disp *fakeDispatcher, exec network.InternetExecutor, cb network.Callbacks) *network.Controller {
	return network.NewController(host, rt, disp, exec, nil, cb)
}

// TestSplitHorizonForwardingNeverReturnsToOrigin covers Scenario B's
// forwarding leg and P1: B, relaying A's DATA to C, must never choose
// A as next hop.
func TestSplitHorizonForwardingNeverReturnsToOrigin(t *testing.T) {
	rt := routing.NewTable()
	disp := &fakeDispatcher{}
	hostB := inst(0x0B)
	ctrl := newTestController(hostB, rt, disp, network.Callbacks{})

	ctrl.AddDevice("A")
	ctrl.AddDevice("C")
	rt.RegisterOrUpdate("C", inst(0x0C), 1)
	rt.RegisterOrUpdate("A", inst(0x0A), 1)

	ctrl.HandlePacket("A", packet.Data{Seq: 42, Origin: inst(0x0A), Destination: inst(0x0C), Payload: []byte("hi")})

	disp.mu.Lock()
	defer disp.mu.Unlock()
	if len(disp.log) != 1 {
		t.Fatalf("expected exactly one forwarded packet, got %d", len(disp.log))
	}
	if disp.log[0].deviceID != "C" {
		t.Fatalf("forwarded to %q, want C", disp.log[0].deviceID)
	}
	data, ok := disp.log[0].pkt.(packet.Data)
	if !ok {
		t.Fatalf("forwarded packet is %T, want packet.Data", disp.log[0].pkt)
	}
	if data.Origin != inst(0x0A) || data.Destination != inst(0x0C) {
		t.Fatal("forwarded DATA packet fields were mutated in transit")
	}
}

// TestAcknowledgementDeliveredToOriginator covers the rest of
// Scenario B: once a DATA packet destined for the host arrives, the
// host emits an ACKNOWLEDGEMENT back toward the origin, and a
// subsequent ACK addressed to the host surfaces as OnAcknowledgement.
func TestAcknowledgementDeliveredToOriginator(t *testing.T) {
	rt := routing.NewTable()
	disp := &fakeDispatcher{}
	host := inst(0xC0)
	origin := inst(0xA0)

	var delivered []byte
	ctrl := newTestController(host, rt, disp, network.Callbacks{
		OnMessageReceived: func(data []byte, from meshid.Instance) {
			if from != origin {
				t.Errorf("origin = %v, want %v", from, origin)
			}
			delivered = data
		},
	})
	ctrl.AddDevice("B")
	rt.RegisterOrUpdate("B", origin, 1)

	ctrl.HandlePacket("B", packet.Data{Seq: 42, Origin: origin, Destination: host, Payload: []byte("hi")})
	if string(delivered) != "hi" {
		t.Fatalf("delivered payload = %q, want %q", delivered, "hi")
	}

	disp.mu.Lock()
	n := len(disp.log)
	last := disp.log[n-1]
	disp.mu.Unlock()
	ack, ok := last.pkt.(packet.Acknowledgement)
	if !ok || last.deviceID != "B" || ack.Destination != origin || ack.Origin != host {
		t.Fatalf("reply = %+v on %q, want ACK to %v on B", last.pkt, last.deviceID, origin)
	}

	var gotTicket meshid.Ticket
	ctrl2 := newTestController(origin, routing.NewTable(), &fakeDispatcher{}, network.Callbacks{
		OnAcknowledgement: func(t meshid.Ticket) { gotTicket = t },
	})
	ctrl2.HandlePacket("B", packet.Acknowledgement{Seq: 42, Destination: origin, Origin: host})
	if gotTicket.Seq != 42 || gotTicket.Destination != host {
		t.Fatalf("ticket = %+v, want {42 %v}", gotTicket, host)
	}
}

// TestRouteLossPoisonsAllAffectedInstances covers Scenario C: losing
// the only device providing routes to two instances emits
// OnInstanceLost for both and broadcasts UPDATE{·,·,255} to the
// remaining neighbor.
func TestRouteLossPoisonsAllAffectedInstances(t *testing.T) {
	rt := routing.NewTable()
	disp := &fakeDispatcher{}
	host := inst(0xA1)

	var lost []meshid.Instance
	ctrl := newTestController(host, rt, disp, network.Callbacks{
		OnInstanceLost: func(i meshid.Instance) { lost = append(lost, i) },
	})

	ctrl.AddDevice("B")
	ctrl.AddDevice("D")
	rt.RegisterOrUpdate("B", inst(0xC0), 2)
	rt.RegisterOrUpdate("B", inst(0xD0), 3)

	ctrl.RemoveDevice("B")

	if len(lost) != 2 {
		t.Fatalf("expected 2 instances lost, got %d: %v", len(lost), lost)
	}

	updates := disp.updatesTo("D")
	var sawC, sawD bool
	for _, u := range updates {
		if u.HopCount != routing.HopCountInfinity {
			t.Fatalf("poison update hop count = %d, want %d", u.HopCount, routing.HopCountInfinity)
		}
		if u.Destination == inst(0xC0) {
			sawC = true
		}
		if u.Destination == inst(0xD0) {
			sawD = true
		}
	}
	if !sawC || !sawD {
		t.Fatalf("expected poison UPDATE for both lost instances to D, got %+v", updates)
	}
}

// TestUpdatePropagationNeverExceedsMaximumHopCount is P7: a link
// update whose incremented hop count would reach the propagation cap
// must not be transmitted further.
func TestUpdatePropagationNeverExceedsMaximumHopCount(t *testing.T) {
	rt := routing.NewTable()
	disp := &fakeDispatcher{}
	host := inst(0xF0)
	ctrl := newTestController(host, rt, disp, network.Callbacks{})

	ctrl.AddDevice("B")
	ctrl.AddDevice("X")
	// hop_count = MaximumHopCount-1 means hop+1 == MaximumHopCount, at the cap.
	ctrl.HandlePacket("B", packet.Update{Seq: 1, Destination: inst(0x01), HopCount: routing.MaximumHopCount - 1})

	if updates := disp.updatesTo("X"); len(updates) != 0 {
		t.Fatalf("expected propagation to X to be suppressed at the hop cap, got %+v", updates)
	}
}

// TestHandshakeNamingHostInstanceIsDropped is P6/I1 at the controller
// level: a neighbor whose HANDSHAKE claims to originate from the
// host's own Instance must never be registered into the routing
// table, and must never surface as OnInstanceFound.
func TestHandshakeNamingHostInstanceIsDropped(t *testing.T) {
	rt := routing.NewTable()
	disp := &fakeDispatcher{}
	host := inst(0x01)

	found := false
	ctrl := newTestController(host, rt, disp, network.Callbacks{
		OnInstanceFound: func(meshid.Instance) { found = true },
	})
	ctrl.AddDevice("B")

	ctrl.HandlePacket("B", packet.Handshake{Seq: 1, Originator: host, InternetHops: 3})

	if found {
		t.Fatal("OnInstanceFound fired for a handshake naming the host's own instance")
	}
	if _, ok := rt.BestLink(host, ""); ok {
		t.Fatal("routing table gained a link to the host's own instance")
	}
}

// TestUpdateNamingHostInstanceIsDropped is P6/I1 at the controller
// level: an UPDATE whose destination is the host's own Instance must
// never be registered into the routing table.
func TestUpdateNamingHostInstanceIsDropped(t *testing.T) {
	rt := routing.NewTable()
	disp := &fakeDispatcher{}
	host := inst(0x02)
	ctrl := newTestController(host, rt, disp, network.Callbacks{})
	ctrl.AddDevice("B")

	ctrl.HandlePacket("B", packet.Update{Seq: 1, Destination: host, HopCount: 1})

	if _, ok := rt.BestLink(host, ""); ok {
		t.Fatal("routing table gained a link to the host's own instance")
	}
}

// TestSendInternetFallsBackToMeshOnDirectFailure is Scenario D: a host
// with no direct uplink falls back to proxying INTERNET through its
// best Internet neighbor when the direct attempt fails, and the
// eventual INTERNET_RESPONSE for that sequence surfaces exactly once.
func TestSendInternetFallsBackToMeshOnDirectFailure(t *testing.T) {
	rt := routing.NewTable()
	disp := &fakeDispatcher{}
	host := inst(0xA0)
	exec := alwaysFailsExecutor{err: errors.New("dial tcp: i/o timeout")}

	var responses int
	var gotCode uint8
	var gotBody []byte
	ctrl := newTestControllerWithExecutor(host, rt, disp, exec, network.Callbacks{
		OnInternetResponse: func(code uint8, body []byte) {
			responses++
			gotCode, gotBody = code, body
		},
	})

	ctrl.AddDevice("B")
	rt.UpdateInternetHops("B", 2)

	ctrl.SendInternet("https://example.invalid/echo", nil, 7)

	disp.mu.Lock()
	if len(disp.log) != 1 {
		disp.mu.Unlock()
		t.Fatalf("expected exactly one fallback dispatch, got %d", len(disp.log))
	}
	sent := disp.log[0]
	disp.mu.Unlock()

	if sent.deviceID != "B" {
		t.Fatalf("fallback dispatched to %q, want B", sent.deviceID)
	}
	internetPkt, ok := sent.pkt.(packet.Internet)
	if !ok {
		t.Fatalf("fallback packet is %T, want packet.Internet", sent.pkt)
	}
	if internetPkt.Originator != host || internetPkt.HopCount != 0 || internetPkt.TestID != 7 {
		t.Fatalf("fallback packet = %+v, want originator=%v hop_count=0 test=7", internetPkt, host)
	}

	ctrl.HandlePacket("B", packet.InternetResponse{
		Seq: internetPkt.Seq, Originator: host, StatusCode: 200, Payload: []byte("ok"),
	})

	if responses != 1 {
		t.Fatalf("OnInternetResponse fired %d times, want exactly 1", responses)
	}
	if gotCode != 200 || string(gotBody) != "ok" {
		t.Fatalf("response = %d %q, want 200 \"ok\"", gotCode, gotBody)
	}
}
