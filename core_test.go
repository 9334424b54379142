// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package meshcore_test

import (
	"testing"
	"time"

	meshcore "code.hybscloud.com/meshcore"
	"code.hybscloud.com/meshcore/device"
	"code.hybscloud.com/meshcore/internal/meshtest"
	"code.hybscloud.com/meshcore/meshid"
	"code.hybscloud.com/meshcore/network"
)

func TestNewRejectsInvalidAppIdentifier(t *testing.T) {
	_, err := meshcore.New(nil, network.Callbacks{}, meshcore.WithAppIdentifier("not-hex!"))
	if err != meshid.ErrInvalidAppIdentifier {
		t.Fatalf("err = %v, want ErrInvalidAppIdentifier", err)
	}
}

func TestCoreAssignsDistinctInstances(t *testing.T) {
	a, err := meshcore.New(nil, network.Callbacks{}, meshcore.WithAppIdentifier("0000000a"))
	if err != nil {
		t.Fatalf("new core A: %v", err)
	}
	defer a.Close()
	b, err := meshcore.New(nil, network.Callbacks{}, meshcore.WithAppIdentifier("0000000b"))
	if err != nil {
		t.Fatalf("new core B: %v", err)
	}
	defer b.Close()

	if a.Instance() == b.Instance() {
		t.Fatal("two independently constructed cores minted the same instance")
	}
	if a.Instance().AppTag() != [4]byte{0x00, 0x00, 0x00, 0x0a} {
		t.Fatalf("app tag = %x, want 0000000a", a.Instance().AppTag())
	}
}

// TestAddDeviceNegotiatesAndRegistersInstance exercises the full
// wiring (ioctl + network + routing) through the public facade: once
// two Cores are connected over an in-memory pipe, each should learn
// the other's Instance via the handshake.
func TestAddDeviceNegotiatesAndRegistersInstance(t *testing.T) {
	sideA, sideB := meshtest.NewPipePair("b", "a")

	foundOnA := make(chan meshid.Instance, 1)
	a, err := meshcore.New(nil, network.Callbacks{
		OnInstanceFound: func(i meshid.Instance) { foundOnA <- i },
	}, meshcore.WithAppIdentifier("0000000a"))
	if err != nil {
		t.Fatalf("new core A: %v", err)
	}
	defer a.Close()

	b, err := meshcore.New(nil, network.Callbacks{}, meshcore.WithAppIdentifier("0000000b"))
	if err != nil {
		t.Fatalf("new core B: %v", err)
	}
	defer b.Close()

	devB := device.New("b")
	devB.Open(sideA, sideA)
	a.AddDevice(devB)

	devA := device.New("a")
	devA.Open(sideB, sideB)
	b.AddDevice(devA)

	select {
	case got := <-foundOnA:
		if got != b.Instance() {
			t.Fatalf("A learned instance %v, want %v", got, b.Instance())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for A to learn B's instance via handshake")
	}
}
