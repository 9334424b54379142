// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package network implements the network controller of §4.4: the
// per-neighbor negotiation state machine, the sequence generator, and
// the send/receive/forward logic for DATA, ACKNOWLEDGEMENT, UPDATE and
// the Internet-proxying packet family.
//
// It owns no transport of its own: outbound packets are always handed
// to a Dispatcher (an ioctl.Controller in production, a fake in
// tests), and inbound packets arrive through HandlePacket, called from
// an ioctl.Controller's PacketHandler.
package network

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"code.hybscloud.com/meshcore/ioctl"
	"code.hybscloud.com/meshcore/meshid"
	"code.hybscloud.com/meshcore/packet"
	"code.hybscloud.com/meshcore/routing"
)

// Controller is the mesh network controller. One Controller serves
// one host Instance across all of its neighbor devices.
type Controller struct {
	host         meshid.Instance
	routingTable *routing.Table
	dispatcher   Dispatcher
	internet     InternetExecutor
	prober       Prober
	cb           Callbacks
	opts         Options
	log          *logrus.Entry

	seq sequenceGenerator

	mu        sync.Mutex
	neighbors map[string]*neighbor
	sentIhops map[string]uint8

	directUplink atomic.Bool
	probedOnce   atomic.Bool
}

// NewController constructs a Controller for host, driving outbound
// traffic through dispatcher and outbound Internet requests through
// internetExec. prober may be nil if the environment has no Internet
// connectivity of its own to offer (a pure relay node).
func NewController(host meshid.Instance, rt *routing.Table, dispatcher Dispatcher, internetExec InternetExecutor, prober Prober, cb Callbacks, opts ...Option) *Controller {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Controller{
		host:         host,
		routingTable: rt,
		dispatcher:   dispatcher,
		internet:     internetExec,
		prober:       prober,
		cb:           cb,
		opts:         o,
		log:          logrus.WithField("component", "network"),
		neighbors:    make(map[string]*neighbor),
		sentIhops:    make(map[string]uint8),
	}
}

func (c *Controller) neighborLocked(deviceID string) *neighbor {
	n, ok := c.neighbors[deviceID]
	if !ok {
		n = &neighbor{}
		c.neighbors[deviceID] = n
	}
	return n
}

// AddDevice transitions deviceID NEW -> REGISTERED and registers it
// with the routing table (§4.4).
func (c *Controller) AddDevice(deviceID string) {
	c.mu.Lock()
	c.neighborLocked(deviceID).state = stateRegistered
	c.mu.Unlock()
	c.routingTable.Register(deviceID)
}

// StreamsOpen transitions deviceID REGISTERED -> HANDSHAKING and
// begins the handshake. The host i-hops computation may consult a
// blocking connectivity probe, so it runs off the caller's goroutine
// (§4.4, §5's suspension points).
func (c *Controller) StreamsOpen(deviceID string) {
	c.mu.Lock()
	c.neighborLocked(deviceID).state = stateHandshaking
	c.mu.Unlock()

	go c.sendHandshake(deviceID)
}

func (c *Controller) sendHandshake(deviceID string) {
	if c.prober != nil {
		online := c.prober.IsInternetAvailable()
		first := !c.probedOnce.Swap(true)
		changed := c.directUplink.Swap(online) != online
		if first || changed {
			c.propagateInternetReachability()
		}
	}

	hops := c.computeHostIHops()
	seq := c.seq.next()

	c.mu.Lock()
	c.sentIhops[deviceID] = hops
	c.mu.Unlock()

	c.dispatcher.Dispatch(ioctl.IoPacket{
		Packet:    packet.Handshake{Seq: seq, Originator: c.host, InternetHops: hops},
		GetDevice: func() (string, bool) { return deviceID, true },
	})
}

// RemoveDevice transitions deviceID to REMOVED, unregisters it from
// the routing table, and propagates whatever route-loss events that
// produces (§4.3, Scenario C).
func (c *Controller) RemoveDevice(deviceID string) {
	c.mu.Lock()
	if n, ok := c.neighbors[deviceID]; ok {
		n.state = stateRemoved
	}
	delete(c.sentIhops, deviceID)
	c.mu.Unlock()

	c.applyRoutingEvents(c.routingTable.Unregister(deviceID))
}

// HandlePacket routes a decoded inbound packet to its handler, keyed
// on wire type. It is the PacketHandler an ioctl.Controller should be
// constructed with.
func (c *Controller) HandlePacket(deviceID string, p packet.Packet) {
	switch v := p.(type) {
	case packet.Handshake:
		c.handleHandshake(deviceID, v)
	case packet.Update:
		c.handleUpdate(deviceID, v)
	case packet.Data:
		c.handleData(deviceID, v)
	case packet.Acknowledgement:
		c.handleAck(deviceID, v)
	case packet.Internet:
		c.handleInternet(deviceID, v)
	case packet.InternetResponse:
		c.handleInternetResponse(deviceID, v)
	case packet.InternetUpdate:
		c.handleInternetUpdate(deviceID, v)
	default:
		c.log.WithField("device", deviceID).Warn("unknown packet variant, dropping")
	}
}

func (c *Controller) handleHandshake(fromDevice string, p packet.Handshake) {
	if p.Originator == c.host {
		c.log.WithField("device", fromDevice).Warn("handshake names the host's own instance as originator, dropping")
		return
	}
	c.applyRoutingEvents(c.routingTable.RegisterOrUpdate(fromDevice, p.Originator, 1))
	c.routingTable.UpdateInternetHops(fromDevice, p.InternetHops)

	c.mu.Lock()
	n := c.neighborLocked(fromDevice)
	n.instance, n.hasPeer, n.state = p.Originator, true, stateNegotiated
	c.mu.Unlock()

	c.dumpRoutingTable(fromDevice)
}

// dumpRoutingTable sends the negotiated neighbor toDevice an UPDATE
// for every destination this host already knows a route to, excluding
// routes that go through toDevice itself (split horizon), subject to
// the propagation cap (§4.4).
func (c *Controller) dumpRoutingTable(toDevice string) {
	for _, link := range c.routingTable.AllBestLinks(toDevice) {
		hop := link.HopCount
		if hop >= routing.HopCountInfinity {
			continue
		}
		hop++
		if hop >= c.opts.MaximumHopCount {
			continue
		}
		c.sendUpdateTo(toDevice, link.Destination, hop)
	}
}

func (c *Controller) handleUpdate(fromDevice string, p packet.Update) {
	if p.Destination == c.host {
		c.log.WithField("device", fromDevice).Warn("update names the host's own instance as destination, dropping")
		return
	}
	c.applyRoutingEvents(c.routingTable.RegisterOrUpdate(fromDevice, p.Destination, p.HopCount))
}

func (c *Controller) handleData(fromDevice string, p packet.Data) {
	if p.Destination == c.host {
		if c.cb.OnMessageReceived != nil {
			c.cb.OnMessageReceived(p.Payload, p.Origin)
		}
		ack := packet.Acknowledgement{Seq: p.Seq, Destination: p.Origin, Origin: c.host}
		c.routeOut(ack, p.Origin, "")
		return
	}
	c.routeOut(p, p.Destination, fromDevice)
}

func (c *Controller) handleAck(fromDevice string, p packet.Acknowledgement) {
	if p.Destination == c.host {
		if c.cb.OnAcknowledgement != nil {
			c.cb.OnAcknowledgement(meshid.Ticket{Seq: p.Seq, Destination: p.Origin})
		}
		return
	}
	c.routeOut(p, p.Destination, fromDevice)
}

// routeOut dispatches pkt toward destination, excluding splitHorizon
// as a candidate next hop, without any terminal callback: forwarded
// packets are not retried and not tracked (§4.4).
func (c *Controller) routeOut(pkt packet.Packet, destination meshid.Instance, splitHorizon string) {
	c.dispatcher.Dispatch(ioctl.IoPacket{
		Packet: pkt,
		GetDevice: func() (string, bool) {
			link, ok := c.routingTable.BestLink(destination, splitHorizon)
			if !ok {
				return "", false
			}
			return link.NextHop, true
		},
	})
}

// routeInternetOut dispatches pkt toward whichever neighbor currently
// offers the best Internet uplink, excluding splitHorizon.
func (c *Controller) routeInternetOut(pkt packet.Packet, splitHorizon string) {
	c.dispatcher.Dispatch(ioctl.IoPacket{
		Packet: pkt,
		GetDevice: func() (string, bool) {
			id, _, ok := c.routingTable.BestInternetLink(splitHorizon)
			return id, ok
		},
	})
}

func (c *Controller) sendUpdateTo(deviceID string, destination meshid.Instance, hopCount uint8) {
	seq := c.seq.next()
	c.dispatcher.Dispatch(ioctl.IoPacket{
		Packet:    packet.Update{Seq: seq, Destination: destination, HopCount: hopCount},
		GetDevice: func() (string, bool) { return deviceID, true },
	})
}

func (c *Controller) broadcastUpdate(destination meshid.Instance, hopCount uint8, exclude string) {
	for _, id := range c.routingTable.Devices() {
		if id == exclude {
			continue
		}
		c.sendUpdateTo(id, destination, hopCount)
	}
}

// applyRoutingEvents translates routing-table change events into the
// upward callbacks and UPDATE propagation §4.4 describes. A HopCount
// already at HopCountInfinity marks an explicit route-poison event
// (Unregister's own doing) and is forwarded verbatim, exempt from the
// MAXIMUM_HOP_COUNT cap (P7 bounds real propagation hops, not the
// poison sentinel; Scenario C's UPDATE{·,·,255} relies on this).
func (c *Controller) applyRoutingEvents(events []routing.Event) {
	for _, e := range events {
		switch e.Kind {
		case routing.EventInstanceFound:
			if c.cb.OnInstanceFound != nil {
				c.cb.OnInstanceFound(e.Instance)
			}
		case routing.EventInstanceLost:
			if c.cb.OnInstanceLost != nil {
				c.cb.OnInstanceLost(e.Instance)
			}
			c.broadcastUpdate(e.Instance, routing.HopCountInfinity, "")
		case routing.EventLinkUpdate:
			hop := e.Link.HopCount
			if hop < routing.HopCountInfinity {
				hop++
				if hop >= c.opts.MaximumHopCount {
					continue
				}
			}
			c.broadcastUpdate(e.Instance, hop, e.Link.NextHop)
		case routing.EventSplitHorizonLinkUpdate:
			hop := e.Link.HopCount
			if hop < routing.HopCountInfinity {
				hop++
				if hop >= c.opts.MaximumHopCount {
					continue
				}
			}
			c.sendUpdateTo(e.BestDevice, e.Instance, hop)
		}
	}
}

// computeHostIHops applies I5.
func (c *Controller) computeHostIHops() uint8 {
	if c.directUplink.Load() {
		return 1
	}
	_, hops, ok := c.routingTable.BestInternetLink("")
	if !ok {
		return routing.HopCountInfinity
	}
	sum := uint16(hops) + 1
	if sum > routing.HopCountInfinity {
		return routing.HopCountInfinity
	}
	return uint8(sum)
}

// OnConnectivityChanged is the environment's push notification (§6.2)
// that the host's own direct Internet reachability changed. Only the
// first call, or a call that actually flips the cached value,
// triggers republication — per the open question on suppressing
// propagation before the first probe completes.
func (c *Controller) OnConnectivityChanged(online bool) {
	first := !c.probedOnce.Swap(true)
	changed := c.directUplink.Swap(online) != online
	if first || changed {
		c.propagateInternetReachability()
	}
}

// propagateInternetReachability recomputes host i-hops and publishes
// it to every neighbor, special-casing the neighbor that is our own
// uplink (it is told our second-best i-hops instead, so it knows our
// fallback), with per-neighbor deduplication against sentIhops.
func (c *Controller) propagateInternetReachability() {
	hops := c.computeHostIHops()
	uplinkDevice, _, hasUplink := c.routingTable.BestInternetLink("")

	for _, id := range c.routingTable.Devices() {
		send := hops
		if hasUplink && id == uplinkDevice {
			_, second, ok := c.routingTable.BestInternetLink(uplinkDevice)
			if !ok {
				send = routing.HopCountInfinity
			} else {
				sum := uint16(second) + 1
				if sum > routing.HopCountInfinity {
					sum = routing.HopCountInfinity
				}
				send = uint8(sum)
			}
		}
		c.sendInternetUpdateTo(id, send)
	}
}

func (c *Controller) sendInternetUpdateTo(deviceID string, hops uint8) {
	c.mu.Lock()
	last, known := c.sentIhops[deviceID]
	unchanged := known && last == hops
	if !unchanged {
		c.sentIhops[deviceID] = hops
	}
	c.mu.Unlock()
	if unchanged {
		return
	}

	seq := c.seq.next()
	c.dispatcher.Dispatch(ioctl.IoPacket{
		Packet:    packet.InternetUpdate{Seq: seq, HopCount: hops, Originator: c.host},
		GetDevice: func() (string, bool) { return deviceID, true },
	})
}

func (c *Controller) handleInternetUpdate(fromDevice string, p packet.InternetUpdate) {
	c.routingTable.UpdateInternetHops(fromDevice, p.HopCount)
	if !c.directUplink.Load() {
		c.propagateInternetReachability()
	}
}

// Send allocates a sequence id and dispatches a DATA packet toward
// destination, resolving the next hop at the instant of dispatch
// (§4.4's send). The returned Ticket correlates the eventual OnSent /
// OnSendFailure / OnAcknowledgement callback.
func (c *Controller) Send(destination meshid.Instance, payload []byte) meshid.Ticket {
	seq := c.seq.next()
	ticket := meshid.Ticket{Seq: seq, Destination: destination}

	c.dispatcher.Dispatch(ioctl.IoPacket{
		Packet: packet.Data{Seq: seq, Origin: c.host, Destination: destination, Payload: payload},
		GetDevice: func() (string, bool) {
			link, ok := c.routingTable.BestLink(destination, "")
			if !ok {
				return "", false
			}
			return link.NextHop, true
		},
		OnWritten: func() {
			if c.cb.OnSent != nil {
				c.cb.OnSent(ticket)
			}
		},
		OnWriteFailure: func(err error) {
			if c.cb.OnSendFailure != nil {
				c.cb.OnSendFailure(ticket, err)
			}
		},
	})
	return ticket
}

// SendInternet attempts a direct Internet request and falls back to
// mesh proxying on failure (§4.4's send_internet).
func (c *Controller) SendInternet(url string, payload []byte, test uint8) {
	seq := c.seq.next()
	c.internet.Execute(c.host, seq, url, payload, test, 0, &internetDirectCallback{
		ctrl: c, seq: seq, url: url, payload: payload, test: test,
	})
}

type internetDirectCallback struct {
	ctrl    *Controller
	seq     uint32
	url     string
	payload []byte
	test    uint8
}

func (cb *internetDirectCallback) OnInternetResponse(code uint8, body []byte) {
	if cb.ctrl.cb.OnInternetResponse != nil {
		cb.ctrl.cb.OnInternetResponse(code, body)
	}
}

func (cb *internetDirectCallback) OnInternetRequestFailure(err error) {
	deviceID, hops, ok := cb.ctrl.routingTable.BestInternetLink("")
	if ok && hops < cb.ctrl.opts.MaximumHopCount {
		cb.ctrl.dispatcher.Dispatch(ioctl.IoPacket{
			Packet: packet.Internet{
				Seq: cb.seq, Originator: cb.ctrl.host, HopCount: 0,
				TestID: cb.test, URL: cb.url, Payload: cb.payload,
			},
			GetDevice: func() (string, bool) { return deviceID, true },
		})
		return
	}
	if cb.ctrl.cb.OnInternetRequestFailure != nil {
		cb.ctrl.cb.OnInternetRequestFailure(fmt.Errorf("%w: %v", ErrNoUplink, err).Error())
	}
}

func (c *Controller) handleInternet(fromDevice string, p packet.Internet) {
	c.internet.Execute(p.Originator, p.Seq, p.URL, p.Payload, p.TestID, p.HopCount+1, &internetProxyCallback{
		ctrl: c, pkt: p, fromDevice: fromDevice,
	})
}

type internetProxyCallback struct {
	ctrl       *Controller
	pkt        packet.Internet
	fromDevice string
}

func (cb *internetProxyCallback) OnInternetResponse(code uint8, body []byte) {
	resp := packet.InternetResponse{Seq: cb.pkt.Seq, Originator: cb.pkt.Originator, StatusCode: code, Payload: body}
	cb.ctrl.routeOut(resp, cb.pkt.Originator, cb.fromDevice)
}

func (cb *internetProxyCallback) OnInternetRequestFailure(err error) {
	nextHop := cb.pkt.HopCount + 1
	if nextHop < cb.ctrl.opts.MaximumHopCount {
		forward := cb.pkt
		forward.HopCount = nextHop
		cb.ctrl.routeInternetOut(forward, cb.fromDevice)
		return
	}
	resp := packet.InternetResponse{Seq: cb.pkt.Seq, Originator: cb.pkt.Originator, StatusCode: packet.CodeIOGenericFailure}
	cb.ctrl.routeOut(resp, cb.pkt.Originator, cb.fromDevice)
}

func (c *Controller) handleInternetResponse(fromDevice string, p packet.InternetResponse) {
	if p.Originator == c.host {
		if c.cb.OnInternetResponse != nil {
			c.cb.OnInternetResponse(p.StatusCode, p.Payload)
		}
		return
	}
	c.routeOut(p, p.Originator, fromDevice)
}
