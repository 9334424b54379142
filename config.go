// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package meshcore

import (
	"time"

	"code.hybscloud.com/meshcore/internet"
	"code.hybscloud.com/meshcore/routing"
	"code.hybscloud.com/meshcore/stream"
)

// Options configures a Core, following the functional-options idiom
// used throughout this module (§6.4's enumerated configuration).
type Options struct {
	// AppIdentifier is the 4-byte application tag, given as an
	// 8-character hex string, prefixed onto the host's random
	// Instance.
	AppIdentifier string

	// MaximumHopCount bounds UPDATE and INTERNET propagation.
	MaximumHopCount uint8

	// MTU is the per-link transport MTU the framer clips sends to.
	MTU int

	InternetConnectTimeout time.Duration
	InternetReadTimeout    time.Duration
	InternetWorkers        int
}

var defaultOptions = Options{
	AppIdentifier:          "00000000",
	MaximumHopCount:        routing.MaximumHopCount,
	MTU:                    stream.MaximumMTU,
	InternetConnectTimeout: internet.ConnectTimeout,
	InternetReadTimeout:    internet.ReadTimeout,
	InternetWorkers:        internet.DefaultWorkers,
}

// Option configures a Core.
type Option func(*Options)

// WithAppIdentifier sets the 4-byte application tag (as 8 hex
// characters) prefixed onto the host's Instance.
func WithAppIdentifier(appTag string) Option {
	return func(o *Options) { o.AppIdentifier = appTag }
}

// WithMaximumHopCount overrides the UPDATE/INTERNET propagation cap.
func WithMaximumHopCount(n uint8) Option {
	return func(o *Options) { o.MaximumHopCount = n }
}

// WithMTU overrides the per-link transport MTU.
func WithMTU(mtu int) Option {
	return func(o *Options) { o.MTU = mtu }
}

// WithInternetTimeouts overrides the connect/read timeouts the
// Internet Request Engine applies to every outbound HTTP request.
func WithInternetTimeouts(connect, read time.Duration) Option {
	return func(o *Options) { o.InternetConnectTimeout, o.InternetReadTimeout = connect, read }
}

// WithInternetWorkers overrides the Internet Request Engine's worker
// pool size.
func WithInternetWorkers(n int) Option {
	return func(o *Options) { o.InternetWorkers = n }
}
