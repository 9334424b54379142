// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network

import "errors"

// ErrUnreachable names the "no route to destination" condition at the
// network layer. Controller does not return it itself: a Send with no
// route at dispatch time reports the Dispatcher's own error through
// OnSendFailure (ioctl.ErrUnreachable when the Dispatcher is an
// ioctl.Controller).
var ErrUnreachable = errors.New("network: no route to destination")

// ErrNoUplink prefixes the message SendInternet hands to
// OnInternetRequestFailure when the direct attempt failed and no mesh
// neighbor advertises an Internet uplink within the hop limit (§4.4's
// send_internet else-branch).
var ErrNoUplink = errors.New("network: no internet uplink reachable")

// ErrUnknownDevice names a packet or lifecycle call for a device the
// controller never registered. Controller does not return it: such
// calls are processed without a registration check.
var ErrUnknownDevice = errors.New("network: unknown device")
