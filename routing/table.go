// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package routing

import (
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"code.hybscloud.com/meshcore/meshid"
)

// Table is the mesh distance-vector routing table (§4.3). It is safe
// for concurrent use; a mutex stands in for the "main dispatch queue"
// single-threaded-access guarantee §5 describes, since the network
// controller may call into it from its own actor goroutine as well as
// from the off-main-queue handshake probe.
type Table struct {
	mu  sync.Mutex
	log *logrus.Entry

	devices map[string]struct{}
	links   map[meshid.Instance]map[string]Link // destination -> nextHop deviceID -> Link
	ihops   map[string]*atomic.Uint32            // deviceID -> internet hop count
}

// NewTable constructs an empty Table.
func NewTable() *Table {
	return &Table{
		log:     logrus.WithField("component", "routing"),
		devices: make(map[string]struct{}),
		links:   make(map[meshid.Instance]map[string]Link),
		ihops:   make(map[string]*atomic.Uint32),
	}
}

// Register adds a device to the known set. Idempotent.
func (t *Table) Register(deviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.devices[deviceID] = struct{}{}
}

// Unregister removes a device and every link that used it as a next
// hop (§4.3). It returns an EventInstanceLost for each instance whose
// last link went away, and an EventLinkUpdate for each instance whose
// best link went through the device but which still has alternates;
// that event's Link names the new best next hop with HopCount set to
// HopCountInfinity.
func (t *Table) Unregister(deviceID string) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.devices, deviceID)
	delete(t.ihops, deviceID)

	var events []Event
	for dest, byNext := range t.links {
		if _, ok := byNext[deviceID]; !ok {
			continue
		}
		oldBest, hadBest := t.bestLocked(dest, "")
		wasBestViaDevice := hadBest && oldBest.NextHop == deviceID

		delete(byNext, deviceID)
		if len(byNext) == 0 {
			delete(t.links, dest)
			t.log.WithFields(logrus.Fields{"device": deviceID, "instance": dest}).Debug("last route to instance lost")
			events = append(events, Event{Kind: EventInstanceLost, Instance: dest})
			continue
		}

		if wasBestViaDevice {
			newBest, _ := t.bestLocked(dest, "")
			t.log.WithFields(logrus.Fields{"device": deviceID, "instance": dest, "new_next_hop": newBest.NextHop}).
				Debug("best route lost, poisoning and rerouting")
			events = append(events, Event{
				Kind:     EventLinkUpdate,
				Instance: dest,
				Link:     Link{Destination: dest, NextHop: newBest.NextHop, HopCount: HopCountInfinity},
			})
		}
	}
	t.log.WithField("device", deviceID).Debug("device unregistered")
	return events
}

// RegisterOrUpdate inserts or replaces the (instance, device) link
// (§4.3). It returns, in order: an EventInstanceFound if the instance
// was previously unknown, an EventLinkUpdate if the best link for the
// instance changed, and an EventSplitHorizonLinkUpdate if the best
// alternative excluding the instance's previous best next hop changed.
func (t *Table) RegisterOrUpdate(deviceID string, instance meshid.Instance, hopCount uint8) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.devices[deviceID] = struct{}{}

	_, known := t.links[instance]
	oldBest, hadOldBest := t.bestLocked(instance, "")
	var oldAlt Link
	var hadOldAlt bool
	if hadOldBest {
		oldAlt, hadOldAlt = t.bestLocked(instance, oldBest.NextHop)
	}

	if t.links[instance] == nil {
		t.links[instance] = make(map[string]Link)
	}
	t.links[instance][deviceID] = Link{Destination: instance, NextHop: deviceID, HopCount: hopCount}

	var events []Event
	if !known {
		t.log.WithFields(logrus.Fields{"device": deviceID, "instance": instance, "hop_count": hopCount}).Debug("instance found")
		events = append(events, Event{Kind: EventInstanceFound, Instance: instance})
	}

	newBest, _ := t.bestLocked(instance, "")
	if !hadOldBest || newBest.NextHop != oldBest.NextHop || newBest.HopCount != oldBest.HopCount {
		events = append(events, Event{Kind: EventLinkUpdate, Instance: instance, Link: newBest})
	}

	if hadOldBest {
		newAlt, hasNewAlt := t.bestLocked(instance, oldBest.NextHop)
		altChanged := hasNewAlt && (!hadOldAlt || newAlt.NextHop != oldAlt.NextHop || newAlt.HopCount != oldAlt.HopCount)
		if altChanged {
			events = append(events, Event{
				Kind:       EventSplitHorizonLinkUpdate,
				Instance:   instance,
				BestDevice: oldBest.NextHop,
				Link:       newAlt,
			})
		}
	}

	return events
}

// BestLink returns the link to instance minimizing hop count among
// those whose next hop is not splitHorizon (pass "" for none). Ties
// break per Link.Less (§4.3's determinism rule).
func (t *Table) BestLink(instance meshid.Instance, splitHorizon string) (Link, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bestLocked(instance, splitHorizon)
}

func (t *Table) bestLocked(instance meshid.Instance, splitHorizon string) (Link, bool) {
	byNext := t.links[instance]
	var best Link
	found := false
	for next, link := range byNext {
		if next == splitHorizon {
			continue
		}
		if !found || link.Less(best) {
			best = link
			found = true
		}
	}
	return best, found
}

// UpdateInternetHops replaces the internet-hop-count entry for a
// device (§4.3).
func (t *Table) UpdateInternetHops(deviceID string, hops uint8) {
	t.mu.Lock()
	c, ok := t.ihops[deviceID]
	if !ok {
		c = atomic.NewUint32(0)
		t.ihops[deviceID] = c
	}
	t.mu.Unlock()
	c.Store(uint32(hops))
}

// BestInternetLink returns the device with the lowest internet hop
// count, excluding splitHorizon.
func (t *Table) BestInternetLink(splitHorizon string) (deviceID string, hops uint8, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	best := uint32(HopCountInfinity) + 1
	for id, c := range t.ihops {
		if id == splitHorizon {
			continue
		}
		v := c.Load()
		if v < best || (v == best && id < deviceID) {
			best = v
			deviceID = id
			ok = true
		}
	}
	if !ok {
		return "", 0, false
	}
	return deviceID, uint8(best), true
}

// Devices returns every registered device identifier, in no
// particular order.
func (t *Table) Devices() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.devices))
	for id := range t.devices {
		out = append(out, id)
	}
	return out
}

// AllBestLinks returns the best link for every known destination
// instance, excluding splitHorizon as a next hop, skipping any
// instance whose only links all go through splitHorizon. Used by the
// network controller to dump the routing table to a neighbor right
// after its HANDSHAKE is negotiated (§4.4).
func (t *Table) AllBestLinks(splitHorizon string) []Link {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Link, 0, len(t.links))
	for dest := range t.links {
		if best, ok := t.bestLocked(dest, splitHorizon); ok {
			out = append(out, best)
		}
	}
	return out
}

// Stats is a small introspection snapshot (destination count, device
// count, best internet link) — there is no production use for it beyond
// observability, but operators of a mesh need the same visibility the
// original app's debug UI gave them.
type Stats struct {
	Devices             int
	Destinations        int
	BestInternetDevice  string
	BestInternetHops    uint8
	HasInternetUplink   bool
}

// Stats snapshots the table.
func (t *Table) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Stats{Devices: len(t.devices), Destinations: len(t.links)}
	best := uint32(HopCountInfinity) + 1
	for id, c := range t.ihops {
		v := c.Load()
		if v < best || (v == best && id < s.BestInternetDevice) {
			best = v
			s.BestInternetDevice = id
			s.HasInternetUplink = true
		}
	}
	if s.HasInternetUplink {
		s.BestInternetHops = uint8(best)
	}
	return s
}
