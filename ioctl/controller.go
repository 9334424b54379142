// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ioctl

import (
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"code.hybscloud.com/meshcore/device"
	"code.hybscloud.com/meshcore/packet"
	"code.hybscloud.com/meshcore/stream"
)

// PacketHandler receives a decoded packet from a registered device's
// input stream.
type PacketHandler func(deviceID string, p packet.Packet)

// StreamErrorHandler is invoked when a device's input stream ends,
// either cleanly (err == nil, io.EOF) or because the accumulation
// buffer could not be matched by any decoder (err ==
// stream.ErrProtocolViolation, §7's protocol_violation) or the
// transport itself failed (any other err, §7's stream_closed).
type StreamErrorHandler func(deviceID string, err error)

// Controller multiplexes packet-oriented traffic over this device's
// duplex streams.
type Controller struct {
	mu      sync.Mutex
	streams map[string]*stream.ReadWriter
	handles map[string]*device.Handle
	log     *logrus.Entry

	onPacket PacketHandler
	onError  StreamErrorHandler

	writerOpts []stream.Option
}

// NewController constructs a Controller. onPacket is called for every
// decoded inbound packet; onError is called once per device when its
// input stream ends for any reason.
func NewController(onPacket PacketHandler, onError StreamErrorHandler, opts ...stream.Option) *Controller {
	return &Controller{
		streams:    make(map[string]*stream.ReadWriter),
		handles:    make(map[string]*device.Handle),
		log:        logrus.WithField("component", "ioctl"),
		onPacket:   onPacket,
		onError:    onError,
		writerOpts: opts,
	}
}

// AddDevice pairs d's input/output streams with a fresh framer and
// starts the device's dedicated read loop. It must be called once per
// device, after the device's streams are open (§4.4's streams_open).
// The controller never keeps d itself, only a weak, revocable Handle
// (§3): once RemoveDevice revokes it, both the read loop and any
// in-flight Dispatch resolve the device as gone rather than racing a
// stale *device.Device.
func (c *Controller) AddDevice(d *device.Device) {
	h := device.NewHandle(d)
	rw := stream.NewReadWriter(d.In, d.Out, c.writerOpts...)
	c.mu.Lock()
	c.handles[d.ID()] = h
	c.streams[d.ID()] = rw
	c.mu.Unlock()

	go c.readLoop(d.ID(), h, rw.Reader)
}

// RemoveDevice revokes a device's Handle and tears down its writer.
// The read loop exits on its own, at the latest on its next iteration,
// once the handle no longer resolves.
func (c *Controller) RemoveDevice(deviceID string) {
	c.mu.Lock()
	if h := c.handles[deviceID]; h != nil {
		h.Revoke()
	}
	delete(c.handles, deviceID)
	rw := c.streams[deviceID]
	delete(c.streams, deviceID)
	c.mu.Unlock()
	if rw != nil {
		_ = rw.Close()
	}
}

func (c *Controller) readLoop(deviceID string, h *device.Handle, r *stream.Reader) {
	buf := make([]byte, 4096)
	for {
		d, ok := h.Get()
		if !ok {
			return
		}
		n, err := d.In.Read(buf)
		if n > 0 {
			pkts, ferr := r.Ingest(buf[:n])
			for _, p := range pkts {
				c.onPacket(deviceID, p)
			}
			if ferr != nil {
				c.log.WithField("device", deviceID).WithError(ferr).Warn("stream corrupted, tearing down")
				c.onError(deviceID, ferr)
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.onError(deviceID, nil)
				return
			}
			c.log.WithField("device", deviceID).WithError(err).Warn("stream read failed, tearing down")
			c.onError(deviceID, err)
			return
		}
	}
}

// Dispatch resolves p's destination device at this instant and hands
// it to that device's writer. If no route exists, or the resolved
// device's Handle has since been revoked, OnWriteFailure is invoked
// synchronously (§7's unreachable_destination) and no stream is
// touched.
func (c *Controller) Dispatch(p IoPacket) {
	deviceID, ok := p.GetDevice()
	if !ok {
		if p.OnWriteFailure != nil {
			p.OnWriteFailure(ErrUnreachable)
		}
		return
	}

	c.mu.Lock()
	h := c.handles[deviceID]
	rw := c.streams[deviceID]
	c.mu.Unlock()
	if h == nil || rw == nil {
		if p.OnWriteFailure != nil {
			p.OnWriteFailure(ErrUnknownDevice)
		}
		return
	}
	if _, ok := h.Get(); !ok {
		if p.OnWriteFailure != nil {
			p.OnWriteFailure(ErrUnreachable)
		}
		return
	}

	if err := rw.Enqueue(p.Packet, p.OnWritten, p.OnWriteFailure); err != nil && p.OnWriteFailure == nil {
		c.log.WithField("device", deviceID).WithError(err).Warn("enqueue failed with no failure callback")
	}
}
