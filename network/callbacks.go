// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network

import (
	"code.hybscloud.com/meshcore/ioctl"
	"code.hybscloud.com/meshcore/meshid"
)

// Callbacks are the upward notifications of §6.3, delivered by the
// controller as it processes routing-table events and inbound
// packets. Any nil field is simply not called.
type Callbacks struct {
	OnInstanceFound func(instance meshid.Instance)
	OnInstanceLost  func(instance meshid.Instance)

	OnMessageReceived func(data []byte, origin meshid.Instance)
	OnSent            func(ticket meshid.Ticket)
	OnSendFailure     func(ticket meshid.Ticket, err error)
	OnAcknowledgement func(ticket meshid.Ticket)

	OnInternetResponse       func(code uint8, body []byte)
	OnInternetRequestFailure func(message string)
}

// Dispatcher is the subset of ioctl.Controller the network controller
// depends on: handing an outbound IoPacket to the right device's
// writer, resolved at the instant of dispatch.
type Dispatcher interface {
	Dispatch(p ioctl.IoPacket)
}

// InternetCallback is the two-terminal-method contract §4.5 requires
// from the Internet Request Engine: exactly one of these two methods
// is invoked per Execute call.
type InternetCallback interface {
	OnInternetResponse(code uint8, body []byte)
	OnInternetRequestFailure(err error)
}

// InternetExecutor is the subset of internet.Engine the network
// controller depends on.
type InternetExecutor interface {
	Execute(originator meshid.Instance, seq uint32, url string, data []byte, test uint8, hopCount uint8, cb InternetCallback)
}

// Prober answers "is the host online right now?" (§6.2's
// is_internet_available), possibly blocking — the handshake computes
// host i-hops off the main dispatch queue specifically to
// accommodate this (§4.4).
type Prober interface {
	IsInternetAvailable() bool
}

// ProberFunc adapts a plain function to Prober.
type ProberFunc func() bool

func (f ProberFunc) IsInternetAvailable() bool { return f() }
