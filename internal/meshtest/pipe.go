// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package meshtest provides small, reusable test doubles shared across
// the mesh core's package tests: an in-memory device.Stream backed by
// net.Pipe, a deterministic stand-in for a flaky real transport.
package meshtest

import "net"

// PipeStream adapts one side of a net.Pipe (a boundary-free, fully
// synchronous in-memory connection) to the device.Stream interface.
// It never returns iox.ErrWouldBlock: net.Pipe's Write blocks until a
// reader is ready, which is sufficient for exercising the mesh core's
// logic end to end without a real transport.
type PipeStream struct {
	conn net.Conn
	id   string
}

// NewPipePair returns two connected PipeStreams, as if they were the
// single duplex stream two directly-wired devices would share.
func NewPipePair(idA, idB string) (a, b *PipeStream) {
	c1, c2 := net.Pipe()
	return &PipeStream{conn: c1, id: idA}, &PipeStream{conn: c2, id: idB}
}

func (p *PipeStream) Read(b []byte) (int, error)  { return p.conn.Read(b) }
func (p *PipeStream) Write(b []byte) (int, error) { return p.conn.Write(b) }
func (p *PipeStream) OnSpaceAvailable(func())     {} // net.Pipe never signals back-pressure
func (p *PipeStream) Close(error) error           { return p.conn.Close() }
func (p *PipeStream) Identifier() string          { return p.id }
