// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package meshcore

import (
	"code.hybscloud.com/meshcore/device"
	"code.hybscloud.com/meshcore/internet"
	"code.hybscloud.com/meshcore/ioctl"
	"code.hybscloud.com/meshcore/meshid"
	"code.hybscloud.com/meshcore/network"
	"code.hybscloud.com/meshcore/packet"
	"code.hybscloud.com/meshcore/routing"
	"code.hybscloud.com/meshcore/stream"
)

// Core is the mesh overlay's entry point: the object a radio discovery
// collaborator, a background process host, or an application-facing
// facade wires itself into (§1's explicitly-out-of-scope collaborators).
type Core struct {
	host         meshid.Instance
	routingTable *routing.Table
	io           *ioctl.Controller
	network      *network.Controller
	internet     *internet.Engine
}

// New constructs a Core. prober answers §6.2's is_internet_available
// probe and may be nil for a node with no Internet uplink of its own;
// cb delivers every §6.3 upward callback.
func New(prober network.Prober, cb network.Callbacks, opts ...Option) (*Core, error) {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}

	host, err := meshid.New(o.AppIdentifier)
	if err != nil {
		return nil, err
	}

	rt := routing.NewTable()
	engine := internet.NewEngine(
		internet.WithWorkers(o.InternetWorkers),
		internet.WithTimeouts(o.InternetConnectTimeout, o.InternetReadTimeout),
	)

	// netCtrl is referenced by ioCtrl's PacketHandler closure before it
	// exists; ioCtrl is in turn the Dispatcher netCtrl needs. Tie the
	// knot: construct the closure first, assign netCtrl once it's
	// built. Nothing dispatches through either before New returns.
	var netCtrl *network.Controller
	ioCtrl := ioctl.NewController(
		func(deviceID string, p packet.Packet) { netCtrl.HandlePacket(deviceID, p) },
		func(deviceID string, _ error) { netCtrl.RemoveDevice(deviceID) },
		stream.WithMTU(o.MTU),
	)
	netCtrl = network.NewController(host, rt, ioCtrl, internetExecutorAdapter{engine}, prober, cb,
		network.WithMaximumHopCount(o.MaximumHopCount))

	return &Core{
		host:         host,
		routingTable: rt,
		io:           ioCtrl,
		network:      netCtrl,
		internet:     engine,
	}, nil
}

// Instance returns the host's mesh identity.
func (c *Core) Instance() meshid.Instance { return c.host }

// AddDevice registers a neighbor whose streams are already open
// (§4.4's add_device then streams_open, collapsed into one call since
// this module's Device has no pending-without-streams state the
// caller would observe separately).
func (c *Core) AddDevice(d *device.Device) {
	c.network.AddDevice(d.ID())
	c.io.AddDevice(d)
	c.network.StreamsOpen(d.ID())
}

// RemoveDevice tears a neighbor down: its writer is closed, its routes
// are unregistered, and whatever route-loss events that produces are
// propagated (§4.3's unregister, Scenario C).
func (c *Core) RemoveDevice(deviceID string) {
	c.io.RemoveDevice(deviceID)
	c.network.RemoveDevice(deviceID)
}

// Send transmits payload to destination and returns a Ticket
// correlating the eventual OnSent/OnSendFailure/OnAcknowledgement
// callback (§4.4's send).
func (c *Core) Send(destination meshid.Instance, payload []byte) meshid.Ticket {
	return c.network.Send(destination, payload)
}

// SendInternet attempts a direct Internet request, falling back to
// mesh proxying on failure (§4.4's send_internet).
func (c *Core) SendInternet(url string, payload []byte, test uint8) {
	c.network.SendInternet(url, payload, test)
}

// OnConnectivityChanged is the environment's push notification that
// the host's own direct Internet reachability changed (§6.2).
func (c *Core) OnConnectivityChanged(online bool) {
	c.network.OnConnectivityChanged(online)
}

// Stats snapshots the routing table for observability.
func (c *Core) Stats() routing.Stats { return c.routingTable.Stats() }

// Close releases the Internet Request Engine's worker pool. The Core
// must not be used afterward.
func (c *Core) Close() { c.internet.Close() }

// internetExecutorAdapter satisfies network.InternetExecutor over a
// concrete *internet.Engine: Go's interface assignability lets any
// network.InternetCallback be passed where internet.Callback is
// expected (identical method sets), but the Execute method signatures
// themselves are distinct named interface types, so Core needs this
// one-line adapter to bridge them.
type internetExecutorAdapter struct{ engine *internet.Engine }

func (a internetExecutorAdapter) Execute(originator meshid.Instance, seq uint32, url string, data []byte, test uint8, hopCount uint8, cb network.InternetCallback) {
	a.engine.Execute(originator, seq, url, data, test, hopCount, cb)
}
