// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"errors"
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/meshcore/device"
	"code.hybscloud.com/meshcore/packet"
)

// job is one queued IoPacket: its encoded bytes and the pair of
// terminal callbacks that must fire exactly once (§3's IoPacket,
// §4.2's single-flight rule).
type job struct {
	data      []byte
	offset    int
	onWritten func()
	onFailure func(error)
}

// Writer serializes outbound packets onto one device.Stream, clipping
// every transport write to the negotiated MTU and honoring
// back-pressure (iox.ErrWouldBlock) by waiting for the transport's
// OnSpaceAvailable signal before resuming.
//
// Per the design notes (§9), Writer is a small actor: a single
// goroutine owns all of its mutable state and receives work over a
// channel, so no callback from the transport ever re-enters Writer
// under a lock.
type Writer struct {
	out   device.Stream
	chunk int

	jobs  chan *job
	space chan struct{}
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex // guards closeErr only
}

// NewWriter constructs a Writer over out and starts its pump
// goroutine. Close must be called when the owning device is removed.
func NewWriter(out device.Stream, opts ...Option) *Writer {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	w := &Writer{
		out:   out,
		chunk: clipMTU(o.MTU),
		jobs:  make(chan *job, o.JobQueueDepth),
		space: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	out.OnSpaceAvailable(func() {
		select {
		case w.space <- struct{}{}:
		default:
		}
	})
	go w.run()
	return w
}

// Enqueue encodes pkt and schedules it for transmission. onWritten
// fires once the full encoded frame has been handed to the transport;
// onFailure fires instead, exactly once, if the transport rejects the
// write or the stream is already closed. Never both.
func (w *Writer) Enqueue(pkt packet.Packet, onWritten func(), onFailure func(error)) error {
	b, err := packet.Encode(pkt)
	if err != nil {
		return err
	}
	j := &job{data: b, onWritten: onWritten, onFailure: onFailure}
	select {
	case w.jobs <- j:
		// A job queued after the pump has already drained and exited
		// would otherwise never see a callback; fail it here instead.
		select {
		case <-w.done:
			w.failQueued()
		default:
		}
		return nil
	case <-w.done:
		if onFailure != nil {
			onFailure(w.err())
		}
		return ErrClosed
	}
}

// Close tears the writer down without reporting a transport error; any
// jobs still queued, and a job stalled waiting for transport space, are
// failed with ErrClosed.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		w.setErr(ErrClosed)
		close(w.done)
	})
	return nil
}

func (w *Writer) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closeErr == nil {
		return ErrClosed
	}
	return w.closeErr
}

func (w *Writer) setErr(err error) {
	w.mu.Lock()
	if w.closeErr == nil {
		w.closeErr = err
	}
	w.mu.Unlock()
}

// run is the actor loop: exactly one in-flight transport write at a
// time, per stream (§4.2's single-flight rule). The I/O controller
// above it does not gate Dispatch itself; it relies on this loop.
func (w *Writer) run() {
	var current *job
	for {
		if current == nil {
			select {
			case current = <-w.jobs:
			case <-w.done:
				w.failQueued()
				return
			}
		}

		end := current.offset + w.chunk
		if end > len(current.data) {
			end = len(current.data)
		}
		n, err := w.out.Write(current.data[current.offset:end])
		if err != nil {
			if errors.Is(err, iox.ErrWouldBlock) || errors.Is(err, iox.ErrMore) {
				current.offset += n
				select {
				case <-w.space:
					continue
				case <-w.done:
					if current.onFailure != nil {
						current.onFailure(w.err())
					}
					w.failQueued()
					return
				}
			}
			// write_failed (§7): drop remaining buffered data for
			// this stream and transition to closed-with-error.
			if current.onFailure != nil {
				current.onFailure(err)
			}
			w.setErr(err)
			w.closeOnce.Do(func() { close(w.done) })
			w.failQueued()
			return
		}

		current.offset += n
		if current.offset >= len(current.data) {
			if current.onWritten != nil {
				current.onWritten()
			}
			current = nil
		}
	}
}

// failQueued drains any jobs left in the channel after a close,
// reporting ErrClosed (or the write error that caused the close) to
// each one's onFailure.
func (w *Writer) failQueued() {
	err := w.err()
	for {
		select {
		case j := <-w.jobs:
			if j.onFailure != nil {
				j.onFailure(err)
			}
		default:
			return
		}
	}
}
