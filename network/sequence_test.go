// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network

import "testing"

// TestSequenceGeneratorWrapsAt65536 is Scenario E: the 65537th call
// returns the same value as the first.
func TestSequenceGeneratorWrapsAt65536(t *testing.T) {
	var g sequenceGenerator

	first := g.next()
	if first != 0 {
		t.Fatalf("first sequence = %d, want 0", first)
	}

	var last uint32
	for i := 0; i < 65535; i++ {
		last = g.next()
	}
	if last != 65535 {
		t.Fatalf("65536th sequence = %d, want 65535", last)
	}

	wrapped := g.next()
	if wrapped != first {
		t.Fatalf("sequence after wrap = %d, want %d", wrapped, first)
	}
}
