// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

// DefaultMTU is the floor the framer clips sends to regardless of a
// negotiated MTU, defending against off-by-one quirks in unreliable
// radio stacks (§4.2, §6.4).
const DefaultMTU = 20

// MaximumMTU is the configuration ceiling (§6.4).
const MaximumMTU = 512

// Options configures a Writer's send-side framing.
type Options struct {
	// MTU is the transport-negotiated maximum transaction size. The
	// writer clips every transport write to
	// max(DefaultMTU, floor(0.99*MTU)).
	MTU int

	// JobQueueDepth bounds how many IoPackets may be queued ahead of
	// the one currently being flushed. The upper layer (package
	// ioctl) enqueues every dispatched packet straight away; Enqueue
	// blocks while the queue is full.
	JobQueueDepth int
}

var defaultOptions = Options{
	MTU:           MaximumMTU,
	JobQueueDepth: 4,
}

// Option configures a Writer, following the functional-options idiom
// used throughout this module.
type Option func(*Options)

// WithMTU sets the negotiated transport MTU.
func WithMTU(mtu int) Option {
	return func(o *Options) { o.MTU = mtu }
}

// WithJobQueueDepth overrides the queue depth ahead of the in-flight
// write.
func WithJobQueueDepth(n int) Option {
	return func(o *Options) { o.JobQueueDepth = n }
}

// clipMTU applies §4.2's clipping rule.
func clipMTU(mtu int) int {
	chunk := int(float64(mtu) * 0.99)
	if chunk < DefaultMTU {
		chunk = DefaultMTU
	}
	return chunk
}
