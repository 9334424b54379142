// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package routing implements the distance-vector routing table of
// §4.3: per-destination best-link selection with split horizon, a
// per-device Internet-reachability hop metric, and the change events
// (instance found/lost, link update, split-horizon link update) that
// drive the network controller's UPDATE propagation.
package routing

import "code.hybscloud.com/meshcore/meshid"

// HopCountInfinity is the routing-poison value (§3).
const HopCountInfinity = 255

// MaximumHopCount is the default propagation limit (§3, §6.4).
const MaximumHopCount = 4

// Link is one routing-table entry: a destination Instance reachable
// through a next-hop device at some hop count.
type Link struct {
	Destination meshid.Instance
	NextHop     string // device identifier
	HopCount    uint8
}

// Less implements the tie-break order of §4.3: lowest hop count first,
// then lexicographically smallest next-hop device identifier.
func (l Link) Less(other Link) bool {
	if l.HopCount != other.HopCount {
		return l.HopCount < other.HopCount
	}
	return l.NextHop < other.NextHop
}
