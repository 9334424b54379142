// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package routing

import "code.hybscloud.com/meshcore/meshid"

// EventKind distinguishes the four change notifications a Table
// mutation can produce (§4.3).
type EventKind uint8

const (
	// EventInstanceFound fires the first time an instance becomes
	// reachable through any link.
	EventInstanceFound EventKind = iota
	// EventInstanceLost fires when an instance's last remaining link
	// is removed.
	EventInstanceLost
	// EventLinkUpdate fires when the best link for a destination
	// changes (new next hop, or a lower hop count on the same one).
	// Link carries the new best link. The event Unregister emits
	// carries the new best next hop with HopCount set to
	// HopCountInfinity.
	EventLinkUpdate
	// EventSplitHorizonLinkUpdate fires when a split-horizon-excluded
	// peer's best alternative changes. BestDevice names the neighbor
	// that should be told about this (usually the one that taught us
	// the previous route); Link carries the new best link excluding
	// that neighbor.
	EventSplitHorizonLinkUpdate
)

// Event is one change notification emitted by a Table mutation. A
// single call (e.g. Unregister) may emit many events; callers act on
// them in order.
type Event struct {
	Kind       EventKind
	Instance   meshid.Instance
	Link       Link
	BestDevice string
}
