// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package network

import "code.hybscloud.com/meshcore/routing"

// Options configures a Controller, following the module's functional-
// options idiom.
type Options struct {
	// MaximumHopCount bounds propagation of UPDATE and INTERNET
	// packets (§3, §6.4). Defaults to routing.MaximumHopCount.
	MaximumHopCount uint8
}

var defaultOptions = Options{
	MaximumHopCount: routing.MaximumHopCount,
}

// Option configures a Controller.
type Option func(*Options)

// WithMaximumHopCount overrides the propagation limit.
func WithMaximumHopCount(n uint8) Option {
	return func(o *Options) { o.MaximumHopCount = n }
}
