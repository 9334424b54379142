// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package internet

import "time"

// ConnectTimeout and ReadTimeout are the §6.4 defaults.
const (
	ConnectTimeout = 10 * time.Second
	ReadTimeout    = 10 * time.Second
)

// DefaultWorkers is the size of the bounded pool when WithWorkers is
// not given: small and fixed, per §4.5's "dedicated executor, never
// the main queue" language.
const DefaultWorkers = 4

// Options configures an Engine.
type Options struct {
	Workers        int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

var defaultOptions = Options{
	Workers:        DefaultWorkers,
	ConnectTimeout: ConnectTimeout,
	ReadTimeout:    ReadTimeout,
}

// Option configures an Engine.
type Option func(*Options)

// WithWorkers overrides the worker pool size.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithTimeouts overrides the connect/read timeouts.
func WithTimeouts(connect, read time.Duration) Option {
	return func(o *Options) { o.ConnectTimeout, o.ReadTimeout = connect, read }
}
