// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network

import "go.uber.org/atomic"

// sequenceMask wraps the generator at 65536 (I4): the counter is a
// 16-bit value even though the wire field is 32 bits wide.
const sequenceMask = 0xFFFF

// sequenceGenerator is a distinct-per-controller, monotonically
// wrapping 16-bit counter (§4.4), grounded the same way the routing
// table guards its hot counters: go.uber.org/atomic, no mutex.
type sequenceGenerator struct {
	n atomic.Uint32
}

// next returns the next sequence id in [0, 65535], wrapping after
// 65535 back to 0 (P3, Scenario E).
func (g *sequenceGenerator) next() uint32 {
	v := g.n.Inc()
	return (v - 1) & sequenceMask
}
