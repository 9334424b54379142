// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import "code.hybscloud.com/meshcore/device"

// ReadWriter pairs a Reader and Writer for one device.Device; the I/O
// controller builds one per neighbor, whether the device's input and
// output are separate streams or one device.Stream serving both
// directions.
type ReadWriter struct {
	*Reader
	*Writer
}

// NewReadWriter constructs a Writer over out and an empty Reader. The
// Reader does not read from in: the caller reads in and hands each
// chunk to Ingest.
func NewReadWriter(in, out device.Stream, opts ...Option) *ReadWriter {
	return &ReadWriter{Reader: NewReader(), Writer: NewWriter(out, opts...)}
}
