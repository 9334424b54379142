// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ioctl

import "errors"

// ErrUnreachable reports that an IoPacket's GetDevice selector found
// no usable next hop at the instant of dispatch (§7:
// unreachable_destination).
var ErrUnreachable = errors.New("ioctl: no route to destination")

// ErrUnknownDevice reports a Dispatch call naming a device that is not
// (or is no longer) registered with this controller.
var ErrUnknownDevice = errors.New("ioctl: unknown device")
