// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package device

import "go.uber.org/atomic"

// Handle is a weak, revocable reference to a Device. The discovery
// collaborator owns the Device; the core only ever holds a Handle so
// that a device lost mid-dispatch resolves to "gone" rather than a
// dangling pointer (§3: "the core holds a weak, revocable handle").
type Handle struct {
	device *Device
	valid  atomic.Bool
}

// NewHandle wraps d in a live Handle.
func NewHandle(d *Device) *Handle {
	h := &Handle{device: d}
	h.valid.Store(true)
	return h
}

// Get resolves the handle. ok is false once Revoke has been called,
// even if the caller still holds a reference to the Handle itself.
func (h *Handle) Get() (*Device, bool) {
	if h == nil || !h.valid.Load() {
		return nil, false
	}
	return h.device, true
}

// Revoke invalidates the handle. Subsequent Get calls return
// (nil, false). Called by the registry on unregister.
func (h *Handle) Revoke() {
	if h == nil {
		return
	}
	h.valid.Store(false)
}
