// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package internet implements the Internet Request Engine of §4.5: a
// small bounded worker pool that performs outbound HTTP POST requests
// on behalf of the network controller, never on its caller's
// goroutine, and reports results through the two-terminal-method
// Callback contract.
package internet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"code.hybscloud.com/meshcore/meshid"
)

// Engine is the bounded worker pool. Construct one per Core; Close it
// when the Core is torn down.
type Engine struct {
	client *http.Client
	jobs   chan job
	opts   Options
	log    *logrus.Entry
}

type job struct {
	originator meshid.Instance
	seq        uint32
	url        string
	data       []byte
	test       uint8
	hopCount   uint8
	cb         Callback
}

// NewEngine constructs an Engine and starts its fixed worker pool.
func NewEngine(opts ...Option) *Engine {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	e := &Engine{
		// DialContext bounds the connect phase and ResponseHeaderTimeout
		// bounds the read phase independently, per §5's separate "connect
		// ≤10s, read ≤10s" caps — a single combined http.Client.Timeout
		// would let a slow connect borrow budget from a slow read.
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: o.ConnectTimeout}).DialContext,
				ResponseHeaderTimeout: o.ReadTimeout,
			},
		},
		jobs: make(chan job, o.Workers*4),
		opts: o,
		log:  logrus.WithField("component", "internet"),
	}
	for i := 0; i < o.Workers; i++ {
		go e.worker()
	}
	return e
}

// Execute enqueues an outbound Internet request and returns once it is
// queued, blocking while the queue is full; cb is called from a worker
// goroutine once the request settles (§4.5).
func (e *Engine) Execute(originator meshid.Instance, seq uint32, url string, data []byte, test uint8, hopCount uint8, cb Callback) {
	e.jobs <- job{originator: originator, seq: seq, url: url, data: data, test: test, hopCount: hopCount, cb: cb}
}

// Close stops accepting new work. Workers drain whatever is already
// queued before exiting.
func (e *Engine) Close() {
	close(e.jobs)
}

func (e *Engine) worker() {
	for j := range e.jobs {
		e.run(j)
	}
}

func (e *Engine) run(j job) {
	// The request context's deadline is only an outer backstop for the
	// full exchange, including the body read after headers arrive; the
	// connect and response-header phases are already independently
	// capped by the client's Transport above.
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.ConnectTimeout+e.opts.ReadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.url, bytes.NewReader(j.data))
	if err != nil {
		j.cb.OnInternetRequestFailure(fmt.Errorf("%w: %v", ErrHTTPIO, err))
		return
	}
	req.Header.Set("X-Sequence", strconv.FormatUint(uint64(j.seq), 10))
	req.Header.Set("X-Hops", strconv.FormatUint(uint64(j.hopCount), 10))
	req.Header.Set("X-Proxy", strconv.FormatBool(j.hopCount > 0))
	req.Header.Set("X-Originator", j.originator.String())
	req.Header.Set("X-Test", strconv.FormatUint(uint64(j.test), 10))

	resp, err := e.client.Do(req)
	if err != nil {
		var netErr net.Error
		timedOut := ctx.Err() == context.DeadlineExceeded || (errors.As(err, &netErr) && netErr.Timeout())
		if timedOut {
			j.cb.OnInternetRequestFailure(ErrHTTPTimeout)
			return
		}
		j.cb.OnInternetRequestFailure(fmt.Errorf("%w: %v", ErrHTTPIO, err))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		j.cb.OnInternetRequestFailure(fmt.Errorf("%w: %v", ErrHTTPIO, err))
		return
	}
	e.log.WithField("seq", j.seq).Debug("internet request complete")
	j.cb.OnInternetResponse(uint8(resp.StatusCode), body)
}
