// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package meshid

import "strconv"

// Ticket identifies one outgoing DATA packet. The network controller
// hands a Ticket back to the caller at send time; the caller-side
// message facade keys its own lifecycle table off it until exactly one
// of on_send_failure / on_acknowledgement fires (§4.4).
type Ticket struct {
	Seq         uint32
	Destination Instance
}

// String renders a Ticket for logging.
func (t Ticket) String() string {
	return t.Destination.String() + "#" + strconv.FormatUint(uint64(t.Seq), 10)
}
