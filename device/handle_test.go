// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package device_test

import (
	"testing"

	"code.hybscloud.com/meshcore/device"
)

func TestHandleResolvesUntilRevoked(t *testing.T) {
	d := device.New("A")
	h := device.NewHandle(d)

	got, ok := h.Get()
	if !ok || got != d {
		t.Fatalf("Get() = %v, %v before Revoke, want %v, true", got, ok, d)
	}

	h.Revoke()

	if got, ok := h.Get(); ok || got != nil {
		t.Fatalf("Get() = %v, %v after Revoke, want nil, false", got, ok)
	}
}

func TestHandleRevokeIsIdempotent(t *testing.T) {
	h := device.NewHandle(device.New("A"))
	h.Revoke()
	h.Revoke()

	if _, ok := h.Get(); ok {
		t.Fatal("Get() succeeded after two Revoke calls")
	}
}

func TestNilHandleGetReturnsNotOK(t *testing.T) {
	var h *device.Handle
	if _, ok := h.Get(); ok {
		t.Fatal("Get() on a nil *Handle returned ok=true")
	}
}
